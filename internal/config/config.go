// Package config provides Viper-based configuration loading for the reroll tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GameConfig holds the parameters of the unique-dice game and its analysis.
type GameConfig struct {
	// Dice is the number of dice rolled, which is also the number of sides per die.
	Dice int `mapstructure:"dice"`
	// Trials is the number of Monte Carlo games to play.
	Trials int `mapstructure:"trials"`
	// Seed makes Monte Carlo runs reproducible; 0 selects crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// MaxRounds caps a single game; 0 means unbounded.
	MaxRounds int `mapstructure:"max_rounds"`
	// MaxExactDice is the largest die count solved exactly without a warning.
	MaxExactDice int `mapstructure:"max_exact_dice"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StoreConfig controls persistence of run results.
type StoreConfig struct {
	// Enabled saves every simulation and expectation to the database.
	Enabled bool `mapstructure:"enabled"`
	// Timeout bounds each store operation.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig controls how results are rendered.
type ReportConfig struct {
	// Format is the stdout format: "text", "json" or "yaml".
	Format string `mapstructure:"format"`
	// PlotPath, when set, receives a PNG histogram of the simulation.
	PlotPath string `mapstructure:"plot_path"`
	// WorkbookPath, when set, receives an XLSX export of the simulation.
	WorkbookPath string `mapstructure:"workbook_path"`
	// BarWidth is the width in characters of the longest text histogram bar.
	BarWidth int `mapstructure:"bar_width"`
}

// Config is the top-level application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Report   ReportConfig   `mapstructure:"report"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the store is enabled.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateReport(c.Report); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Store.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
		if c.Store.Timeout <= 0 {
			errs = append(errs, fmt.Sprintf("store.timeout must be positive, got %s", c.Store.Timeout))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.Dice < 2 {
		errs = append(errs, fmt.Sprintf("game.dice must be >= 2, got %d", g.Dice))
	}
	if g.Trials < 1 {
		errs = append(errs, fmt.Sprintf("game.trials must be >= 1, got %d", g.Trials))
	}
	if g.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("game.max_rounds must be >= 0, got %d", g.MaxRounds))
	}
	if g.MaxExactDice < 2 {
		errs = append(errs, fmt.Sprintf("game.max_exact_dice must be >= 2, got %d", g.MaxExactDice))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateReport(r ReportConfig) error {
	validFormats := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validFormats[r.Format] {
		return fmt.Errorf("report.format must be one of [text, json, yaml], got %q", r.Format)
	}
	if r.BarWidth < 1 {
		return errors.New("report.bar_width must be >= 1")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path loads defaults
// and environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and REROLL_ environment
// overrides applied, ready for flag bindings or a config file.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with REROLL_ prefix
	v.SetEnvPrefix("REROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.dice", 6)
	v.SetDefault("game.trials", 1000000)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.max_rounds", 0)
	v.SetDefault("game.max_exact_dice", 7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "reroll")
	v.SetDefault("database.password", "reroll")
	v.SetDefault("database.name", "reroll")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.timeout", "30s")

	v.SetDefault("report.format", "text")
	v.SetDefault("report.plot_path", "")
	v.SetDefault("report.workbook_path", "")
	v.SetDefault("report.bar_width", 60)
}
