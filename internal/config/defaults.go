package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so environment overrides apply even when
// no config file is present.
func setDefaults(v *viper.Viper) {
	// Scheduler defaults
	v.SetDefault("scheduler.check_interval", 2*time.Second)
	v.SetDefault("scheduler.frame_rate", 30)
	v.SetDefault("scheduler.needs_batch", 16)
	v.SetDefault("scheduler.scan_batch", 32)
	v.SetDefault("scheduler.upgrade_cap", 4)
	v.SetDefault("scheduler.noise_radius", 2)
	v.SetDefault("scheduler.water_radius", 2)

	// World defaults
	v.SetDefault("world.width", 64)
	v.SetDefault("world.height", 64)
	v.SetDefault("world.seed", 0)
	v.SetDefault("world.water_level", 0.28)

	// Economy defaults: enough to lay the first roads, huts and a beekeeper.
	v.SetDefault("economy.start", map[string]float64{
		"wood":  60,
		"stone": 40,
		"clay":  10,
		"tools": 20,
		"honey": 30,
		"water": 20,
	})
	v.SetDefault("economy.research", []string{})

	v.SetDefault("catalog.path", "")
	v.SetDefault("database.path", "hive.db")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.admin_key", "")
	v.SetDefault("api.rate_per_minute", 120)
	v.SetDefault("api.burst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("debug", false)
}
