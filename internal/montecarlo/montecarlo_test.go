package montecarlo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/reroll/internal/game/dice"
	"github.com/cory-johannsen/reroll/internal/game/unique"
	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

func newRunner(t require.TestingT, n int, seed uint64) *montecarlo.Runner {
	g, err := unique.New(n, 0)
	require.NoError(t, err)
	return montecarlo.NewRunner(g, dice.NewSeededSource(seed), zap.NewNop())
}

func TestHistogram_Ordering(t *testing.T) {
	h := montecarlo.FromSamples([]int{5, 1, 3, 3, 1, 1})
	assert.Equal(t, []int{1, 3, 5}, h.Keys())
	assert.Equal(t, 6, h.Total())
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 1, h.Min())
	assert.Equal(t, 5, h.Max())
	assert.Equal(t, 3, h.Count(1))
	assert.Equal(t, 0, h.Count(2))
	assert.InDelta(t, 0.5, h.Fraction(1), 1e-12)
	assert.Equal(t, []montecarlo.Bucket{{Rounds: 1, Count: 3}, {Rounds: 3, Count: 2}, {Rounds: 5, Count: 1}}, h.Buckets())
}

func TestHistogram_Empty(t *testing.T) {
	h := montecarlo.NewHistogram()
	assert.Equal(t, 0, h.Min())
	assert.Equal(t, 0, h.Max())
	assert.Equal(t, 0.0, h.Fraction(1))
	assert.Empty(t, h.Buckets())
	assert.Equal(t, montecarlo.Summary{}, montecarlo.Summarize(h))
}

func TestFromBuckets(t *testing.T) {
	h, err := montecarlo.FromBuckets([]montecarlo.Bucket{{Rounds: 2, Count: 4}, {Rounds: 1, Count: 0}, {Rounds: 7, Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, h.Keys())
	assert.Equal(t, 5, h.Total())

	_, err = montecarlo.FromBuckets([]montecarlo.Bucket{{Rounds: 2, Count: -1}})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	h := montecarlo.FromSamples([]int{1, 2, 3, 4})
	s := montecarlo.Summarize(h)
	assert.Equal(t, 4, s.Trials)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.Equal(t, 1, s.Min)
	assert.Equal(t, 4, s.Max)
	assert.Greater(t, s.StdDev, 0.0)
	assert.InDelta(t, s.StdDev/2, s.StdErr, 1e-12)
	assert.GreaterOrEqual(t, s.P99, s.P90)
	assert.GreaterOrEqual(t, s.P90, s.Median)
}

func TestRunner_Samples(t *testing.T) {
	samples, err := newRunner(t, 6, 1).Samples(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, samples, 500)
	for _, s := range samples {
		assert.GreaterOrEqual(t, s, 1)
	}
}

func TestRunner_SamplesMatchHistogram(t *testing.T) {
	samples, err := newRunner(t, 4, 99).Samples(context.Background(), 2000)
	require.NoError(t, err)
	h, err := newRunner(t, 4, 99).Histogram(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, montecarlo.FromSamples(samples).Buckets(), h.Buckets(),
		"same seed must produce the same outcomes")
}

func TestRunner_InvalidTrials(t *testing.T) {
	r := newRunner(t, 3, 1)
	_, err := r.Samples(context.Background(), -1)
	assert.True(t, errors.Is(err, montecarlo.ErrInvalidTrials))
	_, err = r.Histogram(context.Background(), -1)
	assert.True(t, errors.Is(err, montecarlo.ErrInvalidTrials))
	_, err = r.Mean(context.Background(), 0)
	assert.True(t, errors.Is(err, montecarlo.ErrInvalidTrials))
}

func TestRunner_ZeroTrials(t *testing.T) {
	h, err := newRunner(t, 3, 1).Histogram(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Total())
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(t, 6, 1).Histogram(ctx, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_RoundLimitPropagates(t *testing.T) {
	g, err := unique.New(6, 1)
	require.NoError(t, err)
	r := montecarlo.NewRunner(g, dice.NewSeededSource(3), zap.NewNop())
	_, err = r.Histogram(context.Background(), 10000)
	assert.True(t, errors.Is(err, unique.ErrRoundLimit))
}

// TestRunner_MeanConverges checks the Monte Carlo estimate against the exact
// expectations 2 (2d2) and 9/2 (3d3).
func TestRunner_MeanConverges(t *testing.T) {
	mean2, err := newRunner(t, 2, 7).WithProgressEvery(10000).Mean(context.Background(), 50000)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mean2, 0.05)

	mean3, err := newRunner(t, 3, 11).Mean(context.Background(), 50000)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, mean3, 0.1)
}

func TestRunner_Simulate(t *testing.T) {
	sim, err := newRunner(t, 3, 5).Simulate(context.Background(), 1000)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sim.ID)
	assert.Equal(t, 3, sim.Dice)
	assert.Equal(t, 1000, sim.Trials)
	assert.Equal(t, 1000, sim.Summary.Trials)
	assert.Equal(t, 1000, sim.Histogram().Total())
}

// TestHistogram_Property verifies the histogram accounts for every trial and
// only holds positive round counts.
func TestHistogram_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 5).Draw(rt, "dice")
		trials := rapid.IntRange(0, 200).Draw(rt, "trials")
		seed := rapid.Uint64().Draw(rt, "seed")

		h, err := newRunner(rt, n, seed).Histogram(context.Background(), trials)
		require.NoError(rt, err)

		sum := 0
		for _, b := range h.Buckets() {
			require.GreaterOrEqual(rt, b.Rounds, 1)
			sum += b.Count
		}
		require.Equal(rt, trials, sum)
		require.Equal(rt, trials, h.Total())
	})
}
