// SPDX-License-Identifier: MIT

// Package config resolves settings for the mathtoys commands.
// Environment variables (MATHTOYS_*) supply defaults; flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katalvlaran/mathtoys/descent"
	"github.com/katalvlaran/mathtoys/quiver"
)

// Store backends.
const (
	StoreNone   = "none"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

const (
	defaultDBFile    = "mathtoys.db"
	defaultRedisAddr = "127.0.0.1:6379"
)

// Config holds the resolved settings.
type Config struct {
	StepSize      float64
	StepsPerFrame int
	Threshold     float64
	MergeTol      float64
	Store         string
	DBPath        string
	RedisAddr     string
	MetricsAddr   string
}

// Load reads the environment, then parses args (without the program name).
func Load(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	stepSize, err := envFloat("MATHTOYS_STEP_SIZE", descent.DefaultStepSize)
	if err != nil {
		return Config{}, err
	}
	stepsPerFrame, err := envInt("MATHTOYS_STEPS_PER_FRAME", quiver.DefaultStepsPerFrame)
	if err != nil {
		return Config{}, err
	}
	threshold, err := envFloat("MATHTOYS_THRESHOLD", quiver.DefaultThreshold)
	if err != nil {
		return Config{}, err
	}
	mergeTol, err := envFloat("MATHTOYS_MERGE_TOL", quiver.DefaultMergeTolerance)
	if err != nil {
		return Config{}, err
	}

	flagSet := flag.NewFlagSet("mathtoys", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagStep := flagSet.Float64("step-size", stepSize, "gradient-descent step size")
	flagFrame := flagSet.Int("steps-per-frame", stepsPerFrame, "relaxation steps per tick")
	flagThreshold := flagSet.Float64("threshold", threshold, "total error below which the sheet counts as settled")
	flagMerge := flagSet.Float64("merge-tol", mergeTol, "distance under which arrows merge")
	flagStore := flagSet.String("store", envOrDefault("MATHTOYS_STORE", StoreNone), "snapshot store: sqlite|redis|none")
	flagDB := flagSet.String("db", envOrDefault("MATHTOYS_DB_PATH", filepath.Join(cwd, defaultDBFile)), "path to SQLite database")
	flagRedis := flagSet.String("redis-addr", envOrDefault("MATHTOYS_REDIS_ADDR", defaultRedisAddr), "Redis address")
	flagMetrics := flagSet.String("metrics-addr", os.Getenv("MATHTOYS_METRICS_ADDR"), "listen address for /metrics (empty disables)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
		}
		return Config{}, err
	}

	cfg := Config{
		StepSize:      *flagStep,
		StepsPerFrame: *flagFrame,
		Threshold:     *flagThreshold,
		MergeTol:      *flagMerge,
		Store:         normalizeStore(*flagStore),
		DBPath:        resolvePath(*flagDB, cwd),
		RedisAddr:     strings.TrimSpace(*flagRedis),
		MetricsAddr:   strings.TrimSpace(*flagMetrics),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case !(c.StepSize > 0):
		return fmt.Errorf("step size must be positive, got %g", c.StepSize)
	case c.StepsPerFrame < 1:
		return fmt.Errorf("steps per frame must be at least 1, got %d", c.StepsPerFrame)
	case !(c.Threshold >= 0):
		return fmt.Errorf("threshold must be non-negative, got %g", c.Threshold)
	case !(c.MergeTol >= 0):
		return fmt.Errorf("merge tolerance must be non-negative, got %g", c.MergeTol)
	}
	switch c.Store {
	case StoreNone:
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("store=sqlite requires db")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("store=redis requires redis-addr")
		}
	default:
		return fmt.Errorf("unsupported store: %s", c.Store)
	}
	return nil
}

// QuiverOptions turns the numeric settings into quiver options.
func (c Config) QuiverOptions(netOpts ...descent.NetworkOption) []quiver.Option {
	netOpts = append([]descent.NetworkOption{descent.WithStepSize(c.StepSize)}, netOpts...)
	return []quiver.Option{
		quiver.WithNetworkOptions(netOpts...),
		quiver.WithStepsPerFrame(c.StepsPerFrame),
		quiver.WithThreshold(c.Threshold),
		quiver.WithMergeTolerance(c.MergeTol),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}

func normalizeStore(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none", "off", "memory":
		return StoreNone
	case "sqlite", "sqlite3":
		return StoreSQLite
	case "redis":
		return StoreRedis
	default:
		return kind
	}
}
