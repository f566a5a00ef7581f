package dice

import "fmt"

// Tally counts how many dice currently show each face of an N-sided die.
//
// Invariant: len(counts) == sides+1; counts[0] is unused.
type Tally struct {
	sides  int
	counts []int
}

// NewTally returns an empty tally for dice with the given number of sides.
//
// Precondition: sides >= 1.
func NewTally(sides int) *Tally {
	if sides < 1 {
		panic(fmt.Sprintf("dice: NewTally called with sides=%d", sides))
	}
	return &Tally{sides: sides, counts: make([]int, sides+1)}
}

// Sides returns the number of faces tracked.
func (t *Tally) Sides() int { return t.sides }

// Add records one die showing face.
//
// Precondition: 1 <= face <= Sides().
func (t *Tally) Add(face int) {
	if face < 1 || face > t.sides {
		panic(fmt.Sprintf("dice: face %d out of range [1, %d]", face, t.sides))
	}
	t.counts[face]++
}

// Count returns how many dice show face. Out-of-range faces report 0.
func (t *Tally) Count(face int) int {
	if face < 1 || face > t.sides {
		return 0
	}
	return t.counts[face]
}

// Locked returns the number of faces shown by exactly one die.
func (t *Tally) Locked() int {
	n := 0
	for _, c := range t.counts[1:] {
		if c == 1 {
			n++
		}
	}
	return n
}

// Distinct returns the number of faces shown by at least one die.
func (t *Tally) Distinct() int {
	n := 0
	for _, c := range t.counts[1:] {
		if c > 0 {
			n++
		}
	}
	return n
}

// Dice returns the total number of dice tallied.
func (t *Tally) Dice() int {
	n := 0
	for _, c := range t.counts[1:] {
		n += c
	}
	return n
}

// KeepLocked clears every face whose count is not exactly one and returns the
// number of dice removed.
//
// Postcondition: Dice() == Locked().
func (t *Tally) KeepLocked() int {
	removed := 0
	for f, c := range t.counts {
		if c != 1 {
			removed += c
			t.counts[f] = 0
		}
	}
	return removed
}

// Complete reports whether every face 1..Sides() is shown by exactly one die.
func (t *Tally) Complete() bool {
	for _, c := range t.counts[1:] {
		if c != 1 {
			return false
		}
	}
	return true
}

// Faces returns the faces with a non-zero count in ascending order.
func (t *Tally) Faces() []int {
	faces := make([]int, 0, t.sides)
	for f := 1; f <= t.sides; f++ {
		if t.counts[f] > 0 {
			faces = append(faces, f)
		}
	}
	return faces
}

// String renders the tally as "{face:count ...}" for non-zero faces.
func (t *Tally) String() string {
	s := "{"
	sep := ""
	for _, f := range t.Faces() {
		s += fmt.Sprintf("%s%d:%d", sep, f, t.counts[f])
		sep = " "
	}
	return s + "}"
}

// CountUnique returns how many values in values appear exactly once.
//
// Precondition: every value is in [1, sides].
func CountUnique(values []int, sides int) int {
	counts := make([]int, sides+1)
	for _, v := range values {
		counts[v]++
	}
	n := 0
	for _, c := range counts[1:] {
		if c == 1 {
			n++
		}
	}
	return n
}
