package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/reroll/internal/config"
	"github.com/cory-johannsen/reroll/internal/ev"
	"github.com/cory-johannsen/reroll/internal/game/dice"
	"github.com/cory-johannsen/reroll/internal/game/unique"
	"github.com/cory-johannsen/reroll/internal/montecarlo"
	"github.com/cory-johannsen/reroll/internal/report"
)

// runStore persists finished runs.
type runStore interface {
	SaveSimulation(ctx context.Context, sim montecarlo.Simulation) error
	SaveExpectation(ctx context.Context, e ev.Expectation) (uuid.UUID, error)
}

// app runs one analysis and writes its report to out.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
	// runs is nil when the store is disabled.
	runs runStore
}

// expectation solves the exact expected game length and reports it.
func (a *app) expectation(ctx context.Context) error {
	solver := ev.NewSolver(a.logger, a.cfg.Game.MaxExactDice)
	e, err := solver.Expected(a.cfg.Game.Dice)
	if err != nil {
		return fmt.Errorf("solving expectation: %w", err)
	}

	if a.cfg.Report.Format == "text" {
		err = report.WriteExpectation(a.out, e)
	} else {
		err = report.Encode(a.out, a.cfg.Report.Format, e)
	}
	if err != nil {
		return fmt.Errorf("writing expectation: %w", err)
	}

	if a.runs != nil {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Store.Timeout)
		defer cancel()
		id, err := a.runs.SaveExpectation(ctx, e)
		if err != nil {
			return fmt.Errorf("storing expectation: %w", err)
		}
		a.logger.Info("expectation stored", zap.String("id", id.String()))
	}
	return nil
}

// simulation plays the configured number of games and reports the histogram.
func (a *app) simulation(ctx context.Context) error {
	g, err := unique.New(a.cfg.Game.Dice, a.cfg.Game.MaxRounds)
	if err != nil {
		return err
	}

	src := dice.NewCryptoSource()
	var seed *uint64
	if a.cfg.Game.Seed != 0 {
		s := a.cfg.Game.Seed
		seed = &s
		src = dice.NewSeededSource(s)
	}

	sim, err := montecarlo.NewRunner(g, src, a.logger).Simulate(ctx, a.cfg.Game.Trials)
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}
	sim.Seed = seed

	if a.cfg.Report.Format == "text" {
		err = report.WriteSimulation(a.out, sim, a.cfg.Report.BarWidth)
	} else {
		err = report.Encode(a.out, a.cfg.Report.Format, sim)
	}
	if err != nil {
		return fmt.Errorf("writing simulation: %w", err)
	}

	if path := a.cfg.Report.PlotPath; path != "" {
		start := time.Now()
		if err := report.WritePlot(path, sim); err != nil {
			return err
		}
		a.logger.Info("plot written", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
	}
	if path := a.cfg.Report.WorkbookPath; path != "" {
		start := time.Now()
		if err := report.WriteWorkbook(path, sim); err != nil {
			return err
		}
		a.logger.Info("workbook written", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
	}

	if a.runs != nil {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Store.Timeout)
		defer cancel()
		if err := a.runs.SaveSimulation(ctx, sim); err != nil {
			return fmt.Errorf("storing simulation: %w", err)
		}
		a.logger.Info("simulation stored", zap.String("id", sim.ID.String()))
	}
	return nil
}
