package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Poller     PollerConfig     `yaml:"poller"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Notes      NotesConfig      `yaml:"notes"`
	LocalInfo  LocalInfoConfig  `yaml:"local_info"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// UpstreamConfig points at the remote scheduling API.
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PollerConfig holds the live-view polling configuration.
type PollerConfig struct {
	DisplayIntervalSeconds   int           `yaml:"display_interval_seconds"`
	DashboardIntervalSeconds int           `yaml:"dashboard_interval_seconds"`
	DashboardIdleSeconds     int           `yaml:"dashboard_idle_seconds"`
	HistoryCap               int           `yaml:"history_cap"`
	DisplaySlots             int           `yaml:"display_slots"`
	DisplayInterval          time.Duration `yaml:"-"`
	DashboardInterval        time.Duration `yaml:"-"`
	DashboardIdleTTL         time.Duration `yaml:"-"`
}

// RedisConfig holds the session store connection configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// NotesConfig bounds the per-session note list.
type NotesConfig struct {
	MaxNotes int `yaml:"max_notes"`
}

// LocalInfoConfig configures the best-effort city/temperature footer data.
type LocalInfoConfig struct {
	Enabled                bool          `yaml:"enabled"`
	Latitude               float64       `yaml:"latitude"`
	Longitude              float64       `yaml:"longitude"`
	RefreshIntervalSeconds int           `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	if cfg.Poller.DisplayIntervalSeconds <= 0 {
		cfg.Poller.DisplayIntervalSeconds = 5
	}
	if cfg.Poller.DashboardIntervalSeconds <= 0 {
		cfg.Poller.DashboardIntervalSeconds = 15
	}
	if cfg.Poller.DashboardIdleSeconds <= 0 {
		cfg.Poller.DashboardIdleSeconds = 120
	}
	if cfg.Poller.HistoryCap <= 0 {
		cfg.Poller.HistoryCap = 4
	}
	if cfg.Poller.DisplaySlots <= 0 {
		cfg.Poller.DisplaySlots = 4
	}
	cfg.Poller.DisplayInterval = time.Duration(cfg.Poller.DisplayIntervalSeconds) * time.Second
	cfg.Poller.DashboardInterval = time.Duration(cfg.Poller.DashboardIntervalSeconds) * time.Second
	cfg.Poller.DashboardIdleTTL = time.Duration(cfg.Poller.DashboardIdleSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Notes.MaxNotes <= 0 {
		cfg.Notes.MaxNotes = 200
	}

	if cfg.LocalInfo.RefreshIntervalSeconds <= 0 {
		cfg.LocalInfo.RefreshIntervalSeconds = 180
	}
	cfg.LocalInfo.RefreshInterval = time.Duration(cfg.LocalInfo.RefreshIntervalSeconds) * time.Second

	return &cfg, nil
}
