// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/warp/breakeven-engine/logging"
)

// Config is the full server configuration. Every field can be set through
// an environment variable; see the env tags.
type Config struct {
	Server struct {
		Port            int           `env:"PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
		CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	} `envPrefix:"SERVER_"`

	Database struct {
		Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite|memory
		Path   string `env:"PATH" envDefault:"breakeven.db"`
	} `envPrefix:"DATABASE_"`

	Log struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"text"`
	} `envPrefix:"LOG_"`

	// Quiet period before billable settings edits are written.
	Persist struct {
		Debounce time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
	} `envPrefix:"PERSIST_"`

	CalcCache struct {
		Size int           `env:"SIZE" envDefault:"256"`
		TTL  time.Duration `env:"TTL" envDefault:"10m"`
		// How often expired results are swept; 0 disables the sweep.
		SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	} `envPrefix:"CALC_CACHE_"`

	Redis struct {
		Addr      string        `env:"ADDR"`
		Password  string        `env:"PASSWORD"`
		DB        int           `env:"DB" envDefault:"0"`
		KeyPrefix string        `env:"KEY_PREFIX" envDefault:"breakeven:hourly_cost"`
		TTL       time.Duration `env:"TTL" envDefault:"0s"`
	} `envPrefix:"REDIS_"`

	AMQP struct {
		URL        string `env:"URL"`
		Exchange   string `env:"EXCHANGE" envDefault:"breakeven"`
		RoutingKey string `env:"ROUTING_KEY" envDefault:"hourly_cost.updated"`
	} `envPrefix:"AMQP_"`

	Locale struct {
		Default  string `env:"DEFAULT" envDefault:"en"`
		Currency string `env:"CURRENCY" envDefault:"USD"`
	} `envPrefix:"LOCALE_"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap parses configuration from the given variables only.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database path cannot be empty when using sqlite")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver %q: must be sqlite or memory", c.Database.Driver))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.Log.Format))
	}

	if c.Persist.Debounce < 0 {
		problems = append(problems, "persist debounce must not be negative")
	}
	if c.CalcCache.Size < 1 {
		problems = append(problems, fmt.Sprintf("invalid calculation cache size %d: must be at least 1", c.CalcCache.Size))
	}

	if c.AMQP.URL != "" {
		u, err := url.Parse(c.AMQP.URL)
		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		case u.Scheme != "amqp" && u.Scheme != "amqps":
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
