package ev

import (
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/cory-johannsen/reroll/internal/game/dice"
)

// DefaultMaxDice is the largest die count solved without a size warning.
const DefaultMaxDice = 7

// Expectation is the exact expected game length for one die count.
type Expectation struct {
	Dice    int           `json:"dice" yaml:"dice"`
	System  System        `json:"system" yaml:"system"`
	Value   float64       `json:"value" yaml:"value"`
	Exact   *big.Rat      `json:"exact" yaml:"exact"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Solver builds and solves expected-value systems.
type Solver struct {
	logger  *zap.Logger
	maxDice int
}

// NewSolver creates a Solver that warns when asked for more than maxDice dice.
// A maxDice <= 0 selects DefaultMaxDice.
//
// Precondition: logger must be non-nil.
func NewSolver(logger *zap.Logger, maxDice int) *Solver {
	if maxDice <= 0 {
		maxDice = DefaultMaxDice
	}
	return &Solver{logger: logger, maxDice: maxDice}
}

// Expected computes the exact expected number of rounds for n n-sided dice.
//
// Precondition: n >= 2.
// Postcondition: Returns an Expectation whose Value is the floating-point
// solution and Exact the rational one, or a non-nil error.
func (s *Solver) Expected(n int) (Expectation, error) {
	start := time.Now()
	if n > s.maxDice {
		outcomes := 0
		for fixed := 0; fixed < n-1; fixed++ {
			outcomes += OutcomeCount(n, max(1, fixed))
		}
		s.logger.Warn("exact expectation enumerates every reroll; this may take a long time",
			zap.String("game", dice.Label(n, n)),
			zap.Int("max_dice", s.maxDice),
			zap.Int("outcomes", outcomes),
		)
	}

	sys, err := BuildSystem(n)
	if err != nil {
		return Expectation{}, err
	}
	s.logger.Debug("built expectation system",
		zap.String("game", dice.Label(n, n)),
		zap.Int("equations", sys.Size()),
		zap.Duration("elapsed", time.Since(start)),
	)

	value, err := sys.Solve()
	if err != nil {
		var cond mat.Condition
		if errors.Is(err, ErrSingular) || !errors.As(err, &cond) {
			return Expectation{}, err
		}
		s.logger.Warn("expectation system is poorly conditioned", zap.Error(err))
	}
	exact, err := sys.SolveExact()
	if err != nil {
		return Expectation{}, err
	}

	e := Expectation{
		Dice:    n,
		System:  sys,
		Value:   value,
		Exact:   exact,
		Elapsed: time.Since(start),
	}
	s.logger.Info("expectation solved",
		zap.String("game", dice.Label(n, n)),
		zap.Float64("ev", e.Value),
		zap.String("exact", e.Exact.RatString()),
		zap.Duration("elapsed", e.Elapsed),
	)
	return e, nil
}
