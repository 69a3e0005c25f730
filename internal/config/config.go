package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Backend string `yaml:"backend" validate:"oneof=file redis postgres sqlite"`
		Path    string `yaml:"path" validate:"required_if=Backend file"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		Key      string `yaml:"key"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Bank struct {
		Source string `yaml:"source" validate:"oneof=fixture file postgres"`
		Path   string `yaml:"path" validate:"required_if=Source file"`
	} `yaml:"bank"`
	Auth struct {
		BcryptCost int `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Leaderboard struct {
		Size int `yaml:"size" validate:"gt=0"`
	} `yaml:"leaderboard"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Store.Backend = "file"
	cfg.Store.Path = "users.json"
	cfg.SQLite.Path = "trivia.db"
	cfg.Bank.Source = "fixture"
	cfg.Auth.BcryptCost = bcrypt.DefaultCost
	cfg.Leaderboard.Size = 20
	return cfg
}

// Load reads YAML config from path over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks backend-specific requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("invalid config: redis.addr required for redis store")
	}
	if (c.Store.Backend == "postgres" || c.Bank.Source == "postgres") && c.Postgres.URL == "" {
		return errors.New("invalid config: postgres.url required")
	}
	if c.Store.Backend == "sqlite" && c.SQLite.Path == "" {
		return errors.New("invalid config: sqlite.path required for sqlite store")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid config: auth.bcrypt_cost must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
