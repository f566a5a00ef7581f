// Package ev computes the exact expected number of rounds of the unique-dice
// game by solving the linear system of its absorbing Markov chain, whose
// states are the number of locked dice.
package ev

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/mat"

	"github.com/cory-johannsen/reroll/internal/game/unique"
)

// ErrSingular is returned when the system has no unique solution.
var ErrSingular = errors.New("linear system is singular")

// System is the linear system Rows * X = Consts over the unknowns X_0..X_{n-2}.
//
// Invariant: len(Rows) == len(Consts) == Dice-1; every row has Dice-1 entries.
type System struct {
	Dice   int     `json:"dice" yaml:"dice"`
	Rows   [][]int `json:"rows" yaml:"rows"`
	Consts []int   `json:"consts" yaml:"consts"`
}

// BuildSystem derives one equation for each state with 0..n-2 locked dice.
//
// The zero-locked state is enumerated as if one die were locked; both states
// share the same reroll structure. Transitions into the absorbing state and
// into the zero-locked state contribute to the constant term.
//
// Precondition: n >= 2.
// Postcondition: Returns a System with n-1 equations or ErrTooFewDice.
func BuildSystem(n int) (System, error) {
	if n < unique.MinDice {
		return System{}, fmt.Errorf("%w: got %d", unique.ErrTooFewDice, n)
	}
	sys := System{
		Dice:   n,
		Rows:   make([][]int, 0, n-1),
		Consts: make([]int, 0, n-1),
	}
	for fixed := 0; fixed < n-1; fixed++ {
		coeffs := Coefficients(n, max(1, fixed))
		total := 0
		for _, c := range coeffs {
			total += c
		}
		c := coeffs[0] + coeffs[n]
		if fixed > 0 {
			c += total
		}
		coeffs[fixed] -= total
		sys.Rows = append(sys.Rows, coeffs[:n-1])
		sys.Consts = append(sys.Consts, -c)
	}
	return sys, nil
}

// Size returns the number of equations.
func (s System) Size() int { return len(s.Rows) }

// Solve solves the system in floating point and returns X_0, the expected
// number of rounds for a fresh game.
//
// Postcondition: As with gonum, a mat.Condition error is returned alongside a
// usable value when the matrix is poorly conditioned. Any other failure wraps
// ErrSingular.
func (s System) Solve() (float64, error) {
	m := s.Size()
	if m == 0 {
		return 0, fmt.Errorf("empty system: %w", ErrSingular)
	}
	data := make([]float64, 0, m*m)
	for _, row := range s.Rows {
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	b := make([]float64, m)
	for i, v := range s.Consts {
		b[i] = float64(v)
	}

	var x mat.VecDense
	if err := x.SolveVec(mat.NewDense(m, m, data), mat.NewVecDense(m, b)); err != nil {
		var c mat.Condition
		if !errors.As(err, &c) || math.IsInf(float64(c), 1) {
			return 0, fmt.Errorf("solving %dx%d system: %w", m, m, errors.Join(ErrSingular, err))
		}
		return x.AtVec(0), err
	}
	return x.AtVec(0), nil
}

// SolveExact solves the system over the rationals by Gauss-Jordan elimination
// and returns X_0 exactly.
func (s System) SolveExact() (*big.Rat, error) {
	m := s.Size()
	if m == 0 {
		return nil, fmt.Errorf("empty system: %w", ErrSingular)
	}
	a := make([][]*big.Rat, m)
	for i, row := range s.Rows {
		a[i] = make([]*big.Rat, m+1)
		for j, v := range row {
			a[i][j] = big.NewRat(int64(v), 1)
		}
		a[i][m] = big.NewRat(int64(s.Consts[i]), 1)
	}

	for col := 0; col < m; col++ {
		pivot := -1
		for r := col; r < m; r++ {
			if a[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return nil, fmt.Errorf("column %d has no pivot: %w", col, ErrSingular)
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := new(big.Rat).Inv(a[col][col])
		for j := col; j <= m; j++ {
			a[col][j].Mul(a[col][j], inv)
		}
		for r := 0; r < m; r++ {
			if r == col || a[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(a[r][col])
			for j := col; j <= m; j++ {
				a[r][j].Sub(a[r][j], new(big.Rat).Mul(f, a[col][j]))
			}
		}
	}
	return a[0][m], nil
}
