package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Demo     DemoConfig     `yaml:"demo"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path        string        `yaml:"path"         env:"SHOPLIST_DB_PATH"         env-default:"shopping_list.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"SHOPLIST_DB_BUSY_TIMEOUT" env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"tint"`
}

// DemoConfig controls the startup demo.
type DemoConfig struct {
	Enabled bool `yaml:"enabled" env:"SHOPLIST_DEMO"        env-default:"true"`
	Sample  bool `yaml:"sample"  env:"SHOPLIST_DEMO_SAMPLE" env-default:"false"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"tint", "text", "json"}
)

// Load reads configuration from environment variables and, when CONFIG_PATH
// is set, a YAML file. Environment values override the file.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that the struct tags cannot express. It lowercases
// the log settings in place.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout must be >= 0 (got %s)", c.Database.BusyTimeout)
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if !slices.Contains(validLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s (got %q)", strings.Join(validLevels, ", "), c.Log.Level)
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if !slices.Contains(validFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %s (got %q)", strings.Join(validFormats, ", "), c.Log.Format)
	}
	return nil
}
