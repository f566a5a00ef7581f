package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/reroll/internal/config"
	"github.com/cory-johannsen/reroll/internal/ev"
	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

type fakeStore struct {
	sims []montecarlo.Simulation
	evs  []ev.Expectation
	err  error
}

func (f *fakeStore) SaveSimulation(_ context.Context, sim montecarlo.Simulation) error {
	if f.err != nil {
		return f.err
	}
	f.sims = append(f.sims, sim)
	return nil
}

func (f *fakeStore) SaveExpectation(_ context.Context, e ev.Expectation) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.evs = append(f.evs, e)
	return uuid.New(), nil
}

func testConfig(t *testing.T, dice, trials int) config.Config {
	t.Helper()
	v := config.NewViper()
	v.Set("game.dice", dice)
	v.Set("game.trials", trials)
	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestExpectation_Text(t *testing.T) {
	var out bytes.Buffer
	a := &app{cfg: testConfig(t, 4, 1), logger: zap.NewNop(), out: &out}

	require.NoError(t, a.expectation(context.Background()))
	assert.Contains(t, out.String(), "Running for 4d4.\n")
	assert.Contains(t, out.String(), "Solving 3 linear equations:\n")
	assert.Contains(t, out.String(), "(80/9)")
}

func TestExpectation_JSONStored(t *testing.T) {
	cfg := testConfig(t, 3, 1)
	cfg.Report.Format = "json"
	store := &fakeStore{}
	var out bytes.Buffer
	a := &app{cfg: cfg, logger: zap.NewNop(), out: &out, runs: store}

	require.NoError(t, a.expectation(context.Background()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "9/2", doc["exact"])
	require.Len(t, store.evs, 1)
	assert.Equal(t, 3, store.evs[0].Dice)
}

func TestSimulation_SeededIsReproducible(t *testing.T) {
	cfg := testConfig(t, 4, 2000)
	cfg.Game.Seed = 99

	run := func() string {
		var out bytes.Buffer
		a := &app{cfg: cfg, logger: zap.NewNop(), out: &out}
		require.NoError(t, a.simulation(context.Background()))
		return out.String()
	}
	first := run()
	assert.Contains(t, first, "Distribution with 4D4 (2,000 trials)\n")
	assert.Equal(t, first, run())
}

func TestSimulation_WritesArtifactsAndStores(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, 3, 500)
	cfg.Game.Seed = 7
	cfg.Report.Format = "yaml"
	cfg.Report.PlotPath = filepath.Join(dir, "hist.png")
	cfg.Report.WorkbookPath = filepath.Join(dir, "hist.xlsx")
	store := &fakeStore{}
	a := &app{cfg: cfg, logger: zap.NewNop(), out: &bytes.Buffer{}, runs: store}

	require.NoError(t, a.simulation(context.Background()))
	assert.FileExists(t, cfg.Report.PlotPath)
	assert.FileExists(t, cfg.Report.WorkbookPath)

	require.Len(t, store.sims, 1)
	sim := store.sims[0]
	assert.Equal(t, 500, sim.Trials)
	require.NotNil(t, sim.Seed)
	assert.Equal(t, uint64(7), *sim.Seed)
}

func TestSimulation_StoreError(t *testing.T) {
	cfg := testConfig(t, 2, 10)
	cfg.Store.Timeout = time.Second
	a := &app{cfg: cfg, logger: zap.NewNop(), out: &bytes.Buffer{}, runs: &fakeStore{err: errors.New("down")}}

	err := a.simulation(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing simulation")
}

func TestSimulation_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &app{cfg: testConfig(t, 6, 1000000), logger: zap.NewNop(), out: &bytes.Buffer{}}

	err := a.simulation(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
