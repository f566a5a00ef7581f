package ev

import "github.com/cory-johannsen/reroll/internal/game/dice"

// forEachOutcome calls fn with every roll of n n-sided dice in which the
// first fixed dice show 1..fixed and the remaining n-fixed dice take every
// combination of faces, varying the last die fastest.
//
// The slice passed to fn is reused between calls.
func forEachOutcome(n, fixed int, fn func(outcome []int)) {
	outcome := make([]int, n)
	for i := 0; i < fixed; i++ {
		outcome[i] = i + 1
	}
	for i := fixed; i < n; i++ {
		outcome[i] = 1
	}
	for {
		fn(outcome)
		i := n - 1
		for ; i >= fixed; i-- {
			if outcome[i] < n {
				outcome[i]++
				break
			}
			outcome[i] = 1
		}
		if i < fixed {
			return
		}
	}
}

// Outcomes returns every roll considered for a state with fixed locked dice.
//
// Precondition: 0 <= fixed <= n.
// Postcondition: len(result) == n^(n-fixed); each outcome has length n and
// starts with 1..fixed.
func Outcomes(n, fixed int) [][]int {
	var out [][]int
	forEachOutcome(n, fixed, func(o []int) {
		out = append(out, append([]int(nil), o...))
	})
	return out
}

// Coefficients tallies, over Outcomes(n, fixed), how many outcomes leave each
// possible number of locked dice.
//
// Postcondition: len(result) == n+1; result[k] counts outcomes with exactly k
// unique faces; sum(result) == n^(n-fixed).
func Coefficients(n, fixed int) []int {
	coeffs := make([]int, n+1)
	forEachOutcome(n, fixed, func(o []int) {
		coeffs[dice.CountUnique(o, n)]++
	})
	return coeffs
}

// OutcomeCount returns n^(n-fixed).
func OutcomeCount(n, fixed int) int {
	total := 1
	for i := fixed; i < n; i++ {
		total *= n
	}
	return total
}
