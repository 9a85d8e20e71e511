package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is loaded once at process
// start and passed into the components that need it; nothing mutates it
// afterwards.
type Config struct {
	Defaults struct {
		Symbol   string `yaml:"symbol"`
		Range    string `yaml:"range"`
		Interval string `yaml:"interval"`
	} `yaml:"defaults"`
	Cache struct {
		TTLMinutes int    `yaml:"ttl_minutes"`
		MaxEntries int    `yaml:"max_entries"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		PurgeCron  string `yaml:"purge_cron"` // empty disables the janitor
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables the recorder
	} `yaml:"database"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Proxy string `yaml:"proxy"`
	Theme string `yaml:"theme"` // presentation-only, ignored by the core
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MARKETLENS_SYMBOL"); v != "" {
		cfg.Defaults.Symbol = v
	}
	if v := os.Getenv("MARKETLENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MARKETLENS_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLMinutes = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Defaults.Symbol == "" {
		cfg.Defaults.Symbol = "NVDA"
	}
	if cfg.Defaults.Range == "" {
		cfg.Defaults.Range = "6mo"
	}
	if cfg.Defaults.Interval == "" {
		cfg.Defaults.Interval = "1d"
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 15
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 100
	}
	if cfg.Cache.MaxSizeMB == 0 {
		cfg.Cache.MaxSizeMB = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8390"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "exports"
	}
	if cfg.Theme == "" {
		cfg.Theme = "light"
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Cache.TTLMinutes < 0 {
		return fmt.Errorf("cache.ttl_minutes must not be negative")
	}
	if c.Cache.MaxEntries < 0 || c.Cache.MaxSizeMB < 0 {
		return fmt.Errorf("cache bounds must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
