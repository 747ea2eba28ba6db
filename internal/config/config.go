// Package config loads hivesim settings from a YAML file, HIVE_ environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/engine"
	"github.com/talgya/hive-economy/internal/world"
)

// EnvPrefix prefixes every environment override, e.g. HIVE_API_PORT.
const EnvPrefix = "HIVE"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	World     WorldConfig     `mapstructure:"world"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	API       APIConfig       `mapstructure:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Debug     bool            `mapstructure:"debug"`
}

// SchedulerConfig holds the cycle timing and per-frame budgets.
type SchedulerConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval" validate:"gt=0"`
	FrameRate     int           `mapstructure:"frame_rate" validate:"min=1,max=240"`
	NeedsBatch    int           `mapstructure:"needs_batch" validate:"min=1"`
	ScanBatch     int           `mapstructure:"scan_batch" validate:"min=1"`
	UpgradeCap    int           `mapstructure:"upgrade_cap" validate:"min=0"` // 0 = unlimited
	NoiseRadius   int           `mapstructure:"noise_radius" validate:"min=0,max=16"`
	WaterRadius   int           `mapstructure:"water_radius" validate:"min=0,max=16"`
}

// WorldConfig holds terrain generation settings.
type WorldConfig struct {
	Width      int     `mapstructure:"width" validate:"min=8,max=1024"`
	Height     int     `mapstructure:"height" validate:"min=8,max=1024"`
	Seed       int64   `mapstructure:"seed"`
	WaterLevel float64 `mapstructure:"water_level" validate:"gte=0,lte=1"`
}

// EconomyConfig holds the starting ledger and research.
type EconomyConfig struct {
	Start    map[string]float64 `mapstructure:"start" validate:"dive,keys,required,endkeys,gte=0"`
	Research []string           `mapstructure:"research"`
}

// CatalogConfig points at optional YAML building overrides.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds the history store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Port          int    `mapstructure:"port" validate:"min=1,max=65535"`
	AdminKey      string `mapstructure:"admin_key"`
	RatePerMinute int    `mapstructure:"rate_per_minute" validate:"min=1"`
	Burst         int    `mapstructure:"burst" validate:"min=1"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, text
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (hivesim.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hivesim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// FrameInterval returns the host frame period.
func (c SchedulerConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return engine.DefaultFrameInterval
	}
	return time.Second / time.Duration(c.FrameRate)
}

// SimulationOptions maps the configuration onto engine options.
func (c *Config) SimulationOptions() engine.Options {
	return engine.Options{
		Scheduler: engine.SchedulerConfig{
			CheckInterval: c.Scheduler.CheckInterval,
			NeedsBatch:    c.Scheduler.NeedsBatch,
			ScanBatch:     c.Scheduler.ScanBatch,
			UpgradeCap:    c.Scheduler.UpgradeCap,
		},
		NoiseRadius: c.Scheduler.NoiseRadius,
		WaterRadius: c.Scheduler.WaterRadius,
		Debug:       c.Debug,
	}
}

// GenConfig maps the world section onto terrain generation settings.
func (c *Config) GenConfig() world.GenConfig {
	gen := world.DefaultGenConfig()
	gen.Width = c.World.Width
	gen.Height = c.World.Height
	gen.Seed = c.World.Seed
	gen.WaterLevel = c.World.WaterLevel
	return gen
}

// StartingStock returns the configured starting ledger.
func (c *Config) StartingStock() economy.Bundle {
	out := make(economy.Bundle, len(c.Economy.Start))
	for r, q := range c.Economy.Start {
		out[economy.Resource(r)] = q
	}
	return out
}
