package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings. Values are layered: defaults, then an
// optional YAML file named by PLANBOARD_CONFIG, then environment variables.
type Config struct {
	DBPath          string        `yaml:"db"`
	Listen          string        `yaml:"listen"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Scheduler       Scheduler     `yaml:"scheduler"`
}

// Scheduler tunes the availability window and the allocator's day cap.
type Scheduler struct {
	WindowMultiplier float64 `yaml:"window_multiplier"`
	WindowFloorDays  int     `yaml:"window_floor_days"`
	MaxDays          int     `yaml:"max_days"`
}

// Default returns a Config with the built-in defaults. DBPath is left empty
// and resolved against the home directory by Load.
func Default() Config {
	return Config{
		Listen:          ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		Scheduler: Scheduler{
			WindowMultiplier: 3,
			WindowFloorDays:  180,
			MaxDays:          1825,
		},
	}
}

// Load builds the effective configuration.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PLANBOARD_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".planboard", "planboard.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. Malformed numbers are ignored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PLANBOARD_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANBOARD_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PLANBOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PLANBOARD_WINDOW_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Scheduler.WindowMultiplier = f
		}
	}
	if v := os.Getenv("PLANBOARD_WINDOW_FLOOR_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scheduler.WindowFloorDays = n
		}
	}
	if v := os.Getenv("PLANBOARD_MAX_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scheduler.MaxDays = n
		}
	}
	if v := os.Getenv("PLANBOARD_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		}
	}
}

// Validate rejects settings the scheduler cannot work with.
func (c Config) Validate() error {
	if c.Scheduler.WindowMultiplier < 1 {
		return fmt.Errorf("scheduler.window_multiplier must be >= 1, got %v", c.Scheduler.WindowMultiplier)
	}
	if c.Scheduler.WindowFloorDays <= 0 {
		return fmt.Errorf("scheduler.window_floor_days must be > 0, got %d", c.Scheduler.WindowFloorDays)
	}
	if c.Scheduler.MaxDays <= 0 {
		return fmt.Errorf("scheduler.max_days must be > 0, got %d", c.Scheduler.MaxDays)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", s)
}

// Logger builds the process logger writing text records to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
