// Package montecarlo repeatedly plays the unique-dice game and aggregates the
// number of rounds each game took.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/reroll/internal/game/dice"
	"github.com/cory-johannsen/reroll/internal/game/unique"
)

// ErrInvalidTrials is returned when a negative trial count is requested.
var ErrInvalidTrials = errors.New("trial count must not be negative")

// cancelCheckEvery is how many trials run between context checks.
const cancelCheckEvery = 1024

// DefaultProgressEvery is the default number of trials between progress logs.
const DefaultProgressEvery = 250000

// Simulation is the complete record of one Monte Carlo run.
type Simulation struct {
	ID      uuid.UUID     `json:"id" yaml:"id"`
	Dice    int           `json:"dice" yaml:"dice"`
	Trials  int           `json:"trials" yaml:"trials"`
	Seed    *uint64       `json:"seed,omitempty" yaml:"seed,omitempty"`
	Summary Summary       `json:"summary" yaml:"summary"`
	Buckets []Bucket      `json:"buckets" yaml:"buckets"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Histogram rebuilds the simulation's histogram from its buckets.
func (s Simulation) Histogram() *Histogram {
	h, err := FromBuckets(s.Buckets)
	if err != nil {
		return NewHistogram()
	}
	return h
}

// Runner plays independent games from a single randomness source.
// A Runner is not safe for concurrent use when its Source is not.
type Runner struct {
	game          unique.Game
	src           dice.Source
	logger        *zap.Logger
	progressEvery int
}

// NewRunner creates a Runner for game drawing from src and logging to logger.
//
// Precondition: game came from unique.New; src and logger must be non-nil.
func NewRunner(game unique.Game, src dice.Source, logger *zap.Logger) *Runner {
	return &Runner{
		game:          game,
		src:           src,
		logger:        logger,
		progressEvery: DefaultProgressEvery,
	}
}

// WithProgressEvery sets how many trials pass between debug progress logs.
// Values <= 0 disable progress logging.
func (r *Runner) WithProgressEvery(n int) *Runner {
	r.progressEvery = n
	return r
}

// Game returns the game this runner plays.
func (r *Runner) Game() unique.Game { return r.game }

// Samples plays trials games and returns each game's round count in play order.
//
// Postcondition: len(result) == trials on success.
func (r *Runner) Samples(ctx context.Context, trials int) ([]int, error) {
	if trials < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrials, trials)
	}
	samples := make([]int, 0, trials)
	err := r.run(ctx, trials, func(rounds int) {
		samples = append(samples, rounds)
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Histogram plays trials games and returns the frequency of each round count.
//
// Postcondition: result.Total() == trials on success.
func (r *Runner) Histogram(ctx context.Context, trials int) (*Histogram, error) {
	if trials < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrials, trials)
	}
	h := NewHistogram()
	if err := r.run(ctx, trials, h.Add); err != nil {
		return nil, err
	}
	return h, nil
}

// Mean plays trials games and returns the average number of rounds.
//
// Precondition: trials > 0.
func (r *Runner) Mean(ctx context.Context, trials int) (float64, error) {
	if trials <= 0 {
		return 0, fmt.Errorf("%w: mean needs at least one trial, got %d", ErrInvalidTrials, trials)
	}
	total := 0
	if err := r.run(ctx, trials, func(rounds int) { total += rounds }); err != nil {
		return 0, err
	}
	return float64(total) / float64(trials), nil
}

// Simulate plays trials games and returns a fully summarised Simulation with a
// fresh ID.
func (r *Runner) Simulate(ctx context.Context, trials int) (Simulation, error) {
	start := time.Now()
	h, err := r.Histogram(ctx, trials)
	if err != nil {
		return Simulation{}, err
	}
	sim := Simulation{
		ID:      uuid.New(),
		Dice:    r.game.Dice,
		Trials:  trials,
		Summary: Summarize(h),
		Buckets: h.Buckets(),
		Elapsed: time.Since(start),
	}
	r.logger.Info("simulation complete",
		zap.String("id", sim.ID.String()),
		zap.String("game", dice.Label(sim.Dice, sim.Dice)),
		zap.Int("trials", trials),
		zap.Float64("mean", sim.Summary.Mean),
		zap.Float64("std_err", sim.Summary.StdErr),
		zap.Duration("elapsed", sim.Elapsed),
	)
	return sim, nil
}

func (r *Runner) run(ctx context.Context, trials int, record func(rounds int)) error {
	start := time.Now()
	for i := 0; i < trials; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("monte carlo stopped after %d of %d trials: %w", i, trials, err)
			}
		}
		rounds, err := r.game.Rounds(r.src)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i+1, err)
		}
		record(rounds)
		if r.progressEvery > 0 && (i+1)%r.progressEvery == 0 {
			r.logger.Debug("monte carlo progress",
				zap.Int("done", i+1),
				zap.Int("trials", trials),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}
	return nil
}
