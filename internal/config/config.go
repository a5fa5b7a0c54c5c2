// Package config loads timer-todos settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// EnvPrefix prefixes environment overrides, e.g. TIMERTODO_STORAGE_DSN.
const EnvPrefix = "TIMERTODO"

// Config is the full configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Timer   TimerConfig   `mapstructure:"timer" yaml:"timer"`
}

// StorageConfig selects where the task collection lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Key     string `mapstructure:"key" yaml:"key"`
	Path    string `mapstructure:"path" yaml:"path"` // directory for file, database file for sqlite
	DSN     string `mapstructure:"dsn" yaml:"dsn"`   // postgres connection string
}

// TimerConfig tunes the countdown.
type TimerConfig struct {
	Interval  time.Duration `mapstructure:"interval" yaml:"interval"`
	AutoStart bool          `mapstructure:"auto_start" yaml:"auto_start"`
	Chime     bool          `mapstructure:"chime" yaml:"chime"`
}

// HomeDir returns ~/.timer-todos, or .timer-todos when there is no home.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timer-todos"
	}
	return filepath.Join(home, ".timer-todos")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.key", "timer-todos")
	v.SetDefault("storage.path", HomeDir())
	v.SetDefault("storage.dsn", "")
	v.SetDefault("timer.interval", time.Second)
	v.SetDefault("timer.auto_start", true)
	v.SetDefault("timer.chime", true)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := load("")
	return cfg
}

// Load reads path, or DefaultPath when path is empty, then applies
// TIMERTODO_* environment overrides. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the backend choice and its required settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Storage.DSN == "" && os.Getenv("DATABASE_URL") == "" {
			return fmt.Errorf("storage.dsn or DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Timer.Interval <= 0 {
		return fmt.Errorf("timer.interval must be positive, got %s", c.Timer.Interval)
	}
	return nil
}
