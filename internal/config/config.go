package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/park285/xo-arena/internal/obslog"
)

type AppConfig struct {
	APIURL   string `env:"API_URL"`
	StoreURL string `env:"STORE_URL" envDefault:"sqlite://data/xo-arena.db"`

	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"8s"`
	HTTPRetry        int           `env:"HTTP_RETRY" envDefault:"3"`
	HealthInterval   time.Duration `env:"HEALTH_INTERVAL" envDefault:"30s"`
	SessionsInterval time.Duration `env:"SESSIONS_INTERVAL" envDefault:"15s"`
	BeaconGrace      time.Duration `env:"BEACON_GRACE" envDefault:"1s"`

	SnapshotDir string `env:"SNAPSHOT_DIR" envDefault:"snapshots"`
	MessagesDir string `env:"MESSAGES_DIR"`

	Log LogConfig `envPrefix:"LOG_"`
}

type LogConfig struct {
	Level   string `env:"LEVEL" envDefault:"info"`
	Console bool   `env:"TO_CONSOLE" envDefault:"false"`
	ToFile  bool   `env:"TO_FILE" envDefault:"true"`
	File    string `env:"FILE" envDefault:"logs/xo-arena.log"`
	Format  string `env:"FORMAT" envDefault:"legacy"`
	Caller  bool   `env:"CALLER" envDefault:"false"`
}

// Load reads the process environment.
func Load() (*AppConfig, error) {
	return parse(env.Options{})
}

// LoadFrom reads vars instead of the process environment.
func LoadFrom(vars map[string]string) (*AppConfig, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.StoreURL = strings.TrimSpace(cfg.StoreURL)
	cfg.SnapshotDir = strings.TrimSpace(cfg.SnapshotDir)
	cfg.MessagesDir = strings.TrimSpace(cfg.MessagesDir)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.File = strings.TrimSpace(cfg.Log.File)

	if cfg.APIURL == "" {
		return nil, errors.New("API_URL is required")
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("API_URL must be an http(s) url: %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 8 * time.Second
	}
	if cfg.HTTPRetry < 1 {
		cfg.HTTPRetry = 1
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = 30 * time.Second
	}
	if cfg.SessionsInterval <= 0 {
		cfg.SessionsInterval = 15 * time.Second
	}
	if cfg.BeaconGrace < 0 {
		cfg.BeaconGrace = 0
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "snapshots"
	}
	return cfg, nil
}

// LogOptions maps the LOG_* settings onto obslog.
func (c *AppConfig) LogOptions() obslog.Options {
	return obslog.Options{
		Level:   c.Log.Level,
		Console: c.Log.Console,
		ToFile:  c.Log.ToFile,
		File:    c.Log.File,
		Format:  c.Log.Format,
		Caller:  c.Log.Caller,
	}
}
