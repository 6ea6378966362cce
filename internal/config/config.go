// config — источник загрузки конфигурации клиента skilltrack.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Типы хранилища сессии.
const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// ErrInvalid — конфигурация прочитана, но содержит недопустимые значения.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig     `yaml:"api"`
	Session  SessionConfig `yaml:"session"`
	Cache    CacheConfig   `yaml:"cache"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// APIConfig — адрес бэкенда и параметры исходящих запросов.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000/api/v1"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"skilltrack-cli"`
}

// SessionConfig — где хранится пара токенов.
type SessionConfig struct {
	Backend  string `yaml:"backend"   env:"SESSION_BACKEND"   env-default:"file"`
	Path     string `yaml:"path"      env:"SESSION_PATH"`
	RedisURL string `yaml:"redis_url" env:"SESSION_REDIS_URL"`
	RedisKey string `yaml:"redis_key" env:"SESSION_REDIS_KEY" env-default:"skilltrack:session"`
}

// CacheConfig — кэш ответов query-эндпойнтов.
// Кэш включён по умолчанию; Disabled выключает его целиком.
type CacheConfig struct {
	Disabled bool          `yaml:"disabled" env:"CACHE_DISABLED"`
	TTL      time.Duration `yaml:"ttl"      env:"CACHE_TTL"      env-default:"60s"`
}

// TimeoutConfig — таймауты исходящих вызовов.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Refresh time.Duration `yaml:"refresh" env:"REFRESH_TIMEOUT" env-default:"10s"`
}

// Validate проверяет значения, которые cleanenv не может проверить тегами.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", ErrInvalid, c.API.BaseURL)
	}

	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("%w: session.redis_url is required for redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown session.backend %q", ErrInvalid, c.Session.Backend)
	}

	if !c.Cache.Disabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalid)
	}

	return nil
}

// Load читает YAML (если найден) и накладывает переменные окружения.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}
		return nil
	}

	switch {
	// 1) --config
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	// 2) CONFIG_PATH
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		// 3) ./local.yaml
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
			break
		}
		// 4) только ENV
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
