// Package config provides configuration management for the MapReduce runtime.
package config

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the runtime-wide configuration.
type Config struct {
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Log     LogConfig     `mapstructure:"log"`
}

// RuntimeConfig holds the knobs the driver and worker pool read at
// construction time.
type RuntimeConfig struct {
	// NumThreads is the worker lane count. Zero means "use the platform's
	// CPU count", the same default the original MR_NUMTHREADS logic falls
	// back to.
	NumThreads int `mapstructure:"num_threads"`
	// SchedPolicy selects lane-to-CPU assignment: "strand-fill" (default),
	// "core-fill", or "chip-fill".
	SchedPolicy string `mapstructure:"sched_policy"`
	// TaskMultiplier controls map-task fan-out: num_map_tasks =
	// min(len(data), NumThreads) * TaskMultiplier.
	TaskMultiplier int `mapstructure:"task_multiplier"`
	// LoadFactor is an advisory hash-container resize threshold. It is
	// loaded and validated, but no container reads it: the hash table
	// always resizes at 50% load.
	LoadFactor float64 `mapstructure:"load_factor"`
	// InitialCapacity is an advisory starting bucket count for hash
	// containers. It is loaded and validated, but no container reads it:
	// every hash table starts with 256 slots.
	InitialCapacity int `mapstructure:"initial_capacity"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" (only format currently supported)
}

// Load reads configuration from the specified file path, falling back to
// defaults plus environment overrides when no file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("phoenix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/phoenix-go")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnv(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Runtime.NumThreads <= 0 {
		cfg.Runtime.NumThreads = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw bytes, useful for tests.
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Runtime.NumThreads <= 0 {
		cfg.Runtime.NumThreads = runtime.NumCPU()
	}
	return &cfg, nil
}

// bindEnv wires MR_NUMTHREADS and friends onto their mapstructure keys so
// AutomaticEnv's default upper-snake-case guess (RUNTIME_NUM_THREADS)
// doesn't silently miss the historical Phoenix environment variable name.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("runtime.num_threads", "MR_NUMTHREADS")
	_ = v.BindEnv("runtime.load_factor", "MR_LOADFACTOR")
	_ = v.BindEnv("runtime.initial_capacity", "MR_INITCAP")
	_ = v.BindEnv("runtime.task_multiplier", "MR_TASKMULTIPLIER")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("runtime.num_threads", 0)
	v.SetDefault("runtime.sched_policy", "strand-fill")
	v.SetDefault("runtime.task_multiplier", 16)
	v.SetDefault("runtime.load_factor", 0.5)
	v.SetDefault("runtime.initial_capacity", 64)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Runtime.NumThreads < 1 {
		return fmt.Errorf("num_threads must be at least 1")
	}
	switch c.Runtime.SchedPolicy {
	case "strand-fill", "core-fill", "chip-fill":
	default:
		return fmt.Errorf("unsupported scheduling policy: %s", c.Runtime.SchedPolicy)
	}
	if c.Runtime.TaskMultiplier < 1 {
		return fmt.Errorf("task_multiplier must be at least 1")
	}
	if c.Runtime.LoadFactor <= 0 || c.Runtime.LoadFactor >= 1 {
		return fmt.Errorf("load_factor must be in (0, 1)")
	}
	if c.Runtime.InitialCapacity < 1 {
		return fmt.Errorf("initial_capacity must be at least 1")
	}
	return nil
}
