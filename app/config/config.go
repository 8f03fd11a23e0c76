package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "POSTFEED_"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Remote      RemoteConfig      `yaml:"remote"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type RemoteConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	Retries int           `yaml:"retries" validate:"gte=0,lte=5"`
}

type AggregationConfig struct {
	AuthorWorkers  int `yaml:"author_workers" validate:"gte=1,lte=100"`
	CommentWorkers int `yaml:"comment_workers" validate:"gte=1,lte=100"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend" validate:"oneof=memory badger redis"`
	TTL        time.Duration `yaml:"ttl" validate:"gte=0"`
	BadgerPath string        `yaml:"badger_path" validate:"required_if=Backend badger"`
	RedisAddr  string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB    int           `yaml:"redis_db" validate:"gte=0"`
}

type LogConfig struct {
	Mode  string `yaml:"mode" validate:"oneof=development production"`
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Remote: RemoteConfig{
			BaseURL: "https://jsonplaceholder.typicode.com",
			Timeout: 5 * time.Second,
		},
		Aggregation: AggregationConfig{
			AuthorWorkers:  10,
			CommentWorkers: 10,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			BadgerPath: "data/badger",
		},
		Log: LogConfig{
			Mode:  "development",
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and POSTFEED_* environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, name, err)
		}
		*dst = i
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_ADDR", &cfg.Server.Addr)
	str("REMOTE_BASE_URL", &cfg.Remote.BaseURL)
	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("CACHE_BADGER_PATH", &cfg.Cache.BadgerPath)
	str("CACHE_REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("LOG_MODE", &cfg.Log.Mode)
	str("LOG_LEVEL", &cfg.Log.Level)

	for _, f := range []func() error{
		func() error { return dur("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout) },
		func() error { return dur("REMOTE_TIMEOUT", &cfg.Remote.Timeout) },
		func() error { return num("REMOTE_RETRIES", &cfg.Remote.Retries) },
		func() error { return num("AGGREGATION_AUTHOR_WORKERS", &cfg.Aggregation.AuthorWorkers) },
		func() error { return num("AGGREGATION_COMMENT_WORKERS", &cfg.Aggregation.CommentWorkers) },
		func() error { return dur("CACHE_TTL", &cfg.Cache.TTL) },
		func() error { return num("CACHE_REDIS_DB", &cfg.Cache.RedisDB) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}
