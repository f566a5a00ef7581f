package ev_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/reroll/internal/ev"
	"github.com/cory-johannsen/reroll/internal/game/unique"
)

func TestOutcomes_Order(t *testing.T) {
	out := ev.Outcomes(3, 1)
	require.Len(t, out, 9)
	assert.Equal(t, []int{1, 1, 1}, out[0])
	assert.Equal(t, []int{1, 1, 2}, out[1])
	assert.Equal(t, []int{1, 2, 1}, out[3])
	assert.Equal(t, []int{1, 3, 3}, out[8])
}

func TestOutcomes_AllFixed(t *testing.T) {
	out := ev.Outcomes(4, 4)
	assert.Equal(t, [][]int{{1, 2, 3, 4}}, out)
}

func TestCoefficients_Known(t *testing.T) {
	assert.Equal(t, []int{1, 0, 1}, ev.Coefficients(2, 1))
	assert.Equal(t, []int{1, 6, 0, 2}, ev.Coefficients(3, 1))
	assert.Equal(t, []int{10, 12, 36, 0, 6}, ev.Coefficients(4, 1))
	assert.Equal(t, []int{2, 2, 10, 0, 2}, ev.Coefficients(4, 2))
	assert.Equal(t, []int{0, 6, 3, 14, 0, 2}, ev.Coefficients(5, 3))
}

// TestCoefficients_Property verifies the coefficient vector covers every
// outcome and that exactly n-1 unique faces is impossible.
func TestCoefficients_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 5).Draw(rt, "dice")
		fixed := rapid.IntRange(0, n).Draw(rt, "fixed")

		coeffs := ev.Coefficients(n, fixed)
		require.Len(rt, coeffs, n+1)
		sum := 0
		for _, c := range coeffs {
			require.GreaterOrEqual(rt, c, 0)
			sum += c
		}
		require.Equal(rt, ev.OutcomeCount(n, fixed), sum)
		require.Equal(rt, 0, coeffs[n-1], "n-1 unique faces cannot occur")
	})
}

func TestOutcomeCount(t *testing.T) {
	assert.Equal(t, 1, ev.OutcomeCount(6, 6))
	assert.Equal(t, 7776, ev.OutcomeCount(6, 1))
	assert.Equal(t, 27, ev.OutcomeCount(3, 0))
}

func TestBuildSystem_Known(t *testing.T) {
	sys, err := ev.BuildSystem(2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{-1}}, sys.Rows)
	assert.Equal(t, []int{-2}, sys.Consts)

	sys, err = ev.BuildSystem(3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{-8, 6}, {1, -3}}, sys.Rows)
	assert.Equal(t, []int{-3, -12}, sys.Consts)

	sys, err = ev.BuildSystem(4)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{-54, 12, 36}, {10, -52, 36}, {2, 2, -6}}, sys.Rows)
	assert.Equal(t, []int{-16, -80, -20}, sys.Consts)
	assert.Equal(t, 3, sys.Size())
}

func TestBuildSystem_TooFewDice(t *testing.T) {
	_, err := ev.BuildSystem(1)
	assert.True(t, errors.Is(err, unique.ErrTooFewDice))
}

func TestSolve_Known(t *testing.T) {
	cases := []struct {
		dice  int
		exact string
	}{
		{2, "2"},
		{3, "9/2"},
		{4, "80/9"},
		{5, "827375/49344"},
		{6, "1692288/54575"},
	}
	for _, tc := range cases {
		sys, err := ev.BuildSystem(tc.dice)
		require.NoError(t, err)

		exact, err := sys.SolveExact()
		require.NoError(t, err)
		assert.Equal(t, tc.exact, exact.RatString(), "dice=%d", tc.dice)

		value, err := sys.Solve()
		require.NoError(t, err)
		want, _ := exact.Float64()
		assert.InDelta(t, want, value, 1e-9, "dice=%d", tc.dice)
	}
}

func TestSolve_Singular(t *testing.T) {
	sys := ev.System{Dice: 3, Rows: [][]int{{1, 2}, {2, 4}}, Consts: []int{1, 2}}
	_, err := sys.SolveExact()
	assert.True(t, errors.Is(err, ev.ErrSingular))
	_, err = sys.Solve()
	assert.True(t, errors.Is(err, ev.ErrSingular))

	_, err = ev.System{}.SolveExact()
	assert.True(t, errors.Is(err, ev.ErrSingular))
	_, err = ev.System{}.Solve()
	assert.True(t, errors.Is(err, ev.ErrSingular))
}

func TestSolver_Expected(t *testing.T) {
	s := ev.NewSolver(zap.NewNop(), 0)

	e, err := s.Expected(2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, e.Value, 1e-12)
	assert.Equal(t, 0, e.Exact.Cmp(big.NewRat(2, 1)))

	e, err = s.Expected(3)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, e.Value, 1e-12)
	assert.Equal(t, 0, e.Exact.Cmp(big.NewRat(18, 4)))
	assert.Equal(t, 3, e.Dice)
	assert.Equal(t, 2, e.System.Size())

	_, err = s.Expected(1)
	assert.True(t, errors.Is(err, unique.ErrTooFewDice))
}

// TestSolver_WarnsAboveMaxDice exercises the size warning path with a low cap.
func TestSolver_WarnsAboveMaxDice(t *testing.T) {
	s := ev.NewSolver(zap.NewNop(), 2)
	e, err := s.Expected(4)
	require.NoError(t, err)
	assert.Equal(t, "80/9", e.Exact.RatString())
}
