// Package main provides the reroll CLI, which analyses the unique-dice game:
// roll N N-sided dice, keep the uniquely valued ones, reroll the rest, and
// repeat until every face shows once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/reroll/internal/config"
	"github.com/cory-johannsen/reroll/internal/observability"
	"github.com/cory-johannsen/reroll/internal/storage/postgres"
)

// flagKeys maps command-line flags onto configuration keys. A flag only
// overrides the configuration when it is given explicitly.
var flagKeys = map[string]string{
	"t":          "game.trials",
	"d":          "game.dice",
	"seed":       "game.seed",
	"max-rounds": "game.max_rounds",
	"format":     "report.format",
	"plot":       "report.plot_path",
	"xlsx":       "report.workbook_path",
	"store":      "store.enabled",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to an optional YAML configuration file")
	flag.Int("t", 1000000, "Num of trials to run")
	flag.Int("d", 6, "Sides of dice in game")
	exact := flag.Bool("ev", false, "Calculate the exact expected value and exit")
	flag.Uint64("seed", 0, "seed for a reproducible simulation (0 = crypto/rand)")
	flag.Int("max-rounds", 0, "abort a game after this many rounds (0 = unbounded)")
	flag.String("format", "text", "output format: text, json or yaml")
	flag.String("plot", "", "write a histogram image to this path (.png, .svg, .pdf)")
	flag.String("xlsx", "", "write the histogram to this XLSX workbook")
	flag.Bool("store", false, "save the run to the configured database")
	flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.String("log-format", "console", "log format: console or json")
	flag.Parse()

	v := config.NewViper()
	if *configPath != "" {
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("reading config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reroll: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger(cfg.Logging, "reroll")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger, out: os.Stdout}

	if cfg.Store.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		observability.Stage(logger, "database connected", dbStart,
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
		)
		a.runs = postgres.NewRunRepository(pool.DB())
	}

	if *exact {
		err = a.expectation(ctx)
	} else {
		err = a.simulation(ctx)
	}
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	observability.Stage(logger, "done", start)
}
