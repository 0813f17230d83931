// Package config loads the settings of the wakesim program.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/b97tsk/wake"
)

// Config holds every setting of the program.
type Config struct {
	Executor Executor `toml:"executor" yaml:"executor"`
	Heap     Heap     `toml:"heap" yaml:"heap"`
	SysTick  SysTick  `toml:"systick" yaml:"systick"`
	Log      Log      `toml:"log" yaml:"log"`
	Trace    Trace    `toml:"trace" yaml:"trace"`
}

// Executor configures the task executor.
type Executor struct {
	TaskCapacity  int `toml:"task_capacity" yaml:"task_capacity"`
	QueueCapacity int `toml:"queue_capacity" yaml:"queue_capacity"`
	TaskSize      int `toml:"task_size" yaml:"task_size"`
}

// Heap configures the heap tasks are charged against.
type Heap struct {
	Size int `toml:"size" yaml:"size"`
}

// SysTick configures the simulated timer interrupt.
type SysTick struct {
	Period string `toml:"period" yaml:"period"`
	Ticks  int    `toml:"ticks" yaml:"ticks"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Trace configures span export.
type Trace struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Output  string `toml:"output" yaml:"output"`
}

// Default returns the settings used when no file is given: a 2 KiB heap,
// as small targets commonly have, and a 100ms tick.
func Default() Config {
	return Config{
		Executor: Executor{
			TaskCapacity: wake.DefaultTaskCapacity,
			TaskSize:     wake.DefaultTaskSize,
		},
		Heap:    Heap{Size: 2048},
		SysTick: SysTick{Period: "100ms", Ticks: 10},
		Log:     Log{Level: "info"},
	}
}

// Load reads the file at path on top of [Default].
// The format is chosen by extension: .toml, .yaml or .yml.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q (expected: .toml|.yaml|.yml)", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting in c.
func (c Config) Validate() error {
	if c.Executor.TaskCapacity <= 0 {
		return fmt.Errorf("executor.task_capacity must be positive, got %d", c.Executor.TaskCapacity)
	}
	if _, err := safecast.Conv[uint32](c.Executor.TaskCapacity); err != nil {
		return fmt.Errorf("executor.task_capacity: %w", err)
	}
	if c.Executor.TaskCapacity > wake.MaxTaskCapacity {
		return fmt.Errorf("executor.task_capacity must not exceed %d, got %d", wake.MaxTaskCapacity, c.Executor.TaskCapacity)
	}
	if c.Executor.QueueCapacity < 0 {
		return fmt.Errorf("executor.queue_capacity must not be negative, got %d", c.Executor.QueueCapacity)
	}
	if c.Executor.TaskSize <= 0 {
		return fmt.Errorf("executor.task_size must be positive, got %d", c.Executor.TaskSize)
	}
	if c.Heap.Size < 0 {
		return fmt.Errorf("heap.size must not be negative, got %d", c.Heap.Size)
	}
	if _, err := c.Period(); err != nil {
		return err
	}
	if _, err := safecast.Conv[uint64](c.SysTick.Ticks); err != nil {
		return fmt.Errorf("systick.ticks: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Period returns the parsed systick period.
func (c Config) Period() (time.Duration, error) {
	d, err := time.ParseDuration(c.SysTick.Period)
	if err != nil {
		return 0, fmt.Errorf("systick.period: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("systick.period must be positive, got %s", d)
	}
	return d, nil
}

// Ticks returns the number of ticks to run for.
func (c Config) Ticks() uint64 {
	n, err := safecast.Conv[uint64](c.SysTick.Ticks)
	if err != nil {
		return 0
	}
	return n
}

// Level returns the parsed log level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// ExecutorConfig returns the [wake.Config] described by c.
// Allocator, Logger and Observer are left for the caller to fill in.
func (c Config) ExecutorConfig() wake.Config {
	return wake.Config{
		TaskCapacity:  c.Executor.TaskCapacity,
		QueueCapacity: c.Executor.QueueCapacity,
		TaskSize:      c.Executor.TaskSize,
	}
}
