// Package dice provides the randomness abstraction and per-face tallies used
// by the unique-dice game and its expected-value solver.
package dice

import "fmt"

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Roll rolls a single die with the given number of sides.
//
// Precondition: sides >= 1; src must be non-nil.
// Postcondition: 1 <= result <= sides.
func Roll(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// Label returns the conventional "NdS" label for count dice of the given sides,
// e.g. "6d6".
func Label(count, sides int) string {
	return fmt.Sprintf("%dd%d", count, sides)
}
