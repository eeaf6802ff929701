// Package config loads process configuration from the environment.
//
// Configuration is read once at startup and passed by value into
// constructors; nothing mutates it afterwards. The signing key and
// token TTL in particular are treated as immutable for the lifetime
// of the process.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// Config holds every tunable the service reads at boot.
type Config struct {
	HTTPAddr    string        `env:"TICKETD_HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string        `env:"TICKETD_DB_DSN" envDefault:"file:ticketd.db?_pragma=foreign_keys(1)"`
	SigningKey  string        `env:"TICKETD_SIGNING_KEY,required"`
	TokenTTL    time.Duration `env:"TICKETD_TOKEN_TTL" envDefault:"24h"`
	Issuer      string        `env:"TICKETD_ISSUER" envDefault:"ticketd"`
	BcryptCost  int           `env:"TICKETD_BCRYPT_COST" envDefault:"12"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment configuration")
	}

	if len(cfg.SigningKey) < 16 {
		return Config{}, errors.New("signing key must be at least 16 bytes", errors.CategoryBadInput).
			WithTextCode("WEAK_SIGNING_KEY")
	}

	return cfg, nil
}
