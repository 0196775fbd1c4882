package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
)

// Config holds service configuration loaded from YAML, then overridden by env.
// Every field can be overridden through the variable named in its envconfig tag.
type Config struct {
	ServerPort string `envconfig:"PORT" validate:"required,numeric"`
	LogLevel   string `envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	GeocodeURL      string        `envconfig:"GEOCODE_URL" validate:"required,url"`
	ForecastURL     string        `envconfig:"FORECAST_URL" validate:"required,url"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`

	CircuitBreakerEnabled          bool          `envconfig:"CIRCUIT_BREAKER_ENABLED"`
	CircuitBreakerFailureThreshold uint32        `envconfig:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" validate:"gte=1"`
	CircuitBreakerTimeout          time.Duration `envconfig:"CIRCUIT_BREAKER_TIMEOUT" validate:"gt=0"`

	// RateLimitRPS 0 disables rate limiting of /actions.
	RateLimitRPS   int `envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int `envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`

	SessionBackend        string        `envconfig:"SESSION_BACKEND" validate:"oneof=in_memory memcached redis"`
	SessionTTL            time.Duration `envconfig:"SESSION_TTL" validate:"gt=0"`
	MemcachedAddrs        string        `envconfig:"MEMCACHED_ADDRS" validate:"required_if=SessionBackend memcached"`
	MemcachedTimeout      time.Duration `envconfig:"MEMCACHED_TIMEOUT" validate:"gte=0"`
	MemcachedMaxIdleConns int           `envconfig:"MEMCACHED_MAX_IDLE_CONNS" validate:"gte=0"`
	RedisAddr             string        `envconfig:"REDIS_ADDR" validate:"required_if=SessionBackend redis"`
	RedisPassword         string        `envconfig:"REDIS_PASSWORD"`
	RedisDB               int           `envconfig:"REDIS_DB" validate:"gte=0"`

	CityMaxLength int `envconfig:"CITY_MAX_LENGTH" validate:"gte=1,lte=1000"`

	ShutdownTimeout               time.Duration `envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	ShutdownInFlightTimeout       time.Duration `envconfig:"SHUTDOWN_IN_FLIGHT_TIMEOUT" validate:"gt=0"`
	ShutdownInFlightCheckInterval time.Duration `envconfig:"SHUTDOWN_IN_FLIGHT_CHECK_INTERVAL" validate:"gt=0"`
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	OpenMeteo struct {
		GeocodeURL  string `yaml:"geocode_url"`
		ForecastURL string `yaml:"forecast_url"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"open_meteo"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		CircuitBreakerEnabled          bool   `yaml:"circuit_breaker_enabled"`
		CircuitBreakerFailureThreshold uint32 `yaml:"circuit_breaker_failure_threshold"`
		CircuitBreakerTimeout          string `yaml:"circuit_breaker_timeout"`
		RateLimitRPS                   *int   `yaml:"rate_limit_rps"`
		RateLimitBurst                 int    `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Session struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"session"`

	Validation struct {
		CityMaxLength int `yaml:"city_max_length"`
	} `yaml:"validation"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

// Load reads config/{ENV_NAME}.yaml (default dev) relative to the working
// directory, loads .env if present, then applies env overrides. Call from
// project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	// A missing .env is normal; it never overrides variables already set.
	_ = godotenv.Load()

	return LoadFile(filepath.Join(cwd, "config", env+".yaml"))
}

// LoadFile builds a Config from the YAML file at path plus env overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := fromFile(fc)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env overrides: %w", err)
	}
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fromFile maps the YAML layer onto Config, applying defaults for absent keys.
func fromFile(fc fileConfig) *Config {
	cfg := &Config{
		ServerPort:  orDefault(fc.Server.Port, "8080"),
		LogLevel:    orDefault(fc.Log.Level, "info"),
		GeocodeURL:  orDefault(fc.OpenMeteo.GeocodeURL, "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL: orDefault(fc.OpenMeteo.ForecastURL, "https://api.open-meteo.com/v1/forecast"),

		UpstreamTimeout: parseDuration(fc.OpenMeteo.Timeout, 5*time.Second),
		RequestTimeout:  parseDuration(fc.Request.Timeout, 12*time.Second),

		CircuitBreakerEnabled:          fc.Reliability.CircuitBreakerEnabled,
		CircuitBreakerFailureThreshold: fc.Reliability.CircuitBreakerFailureThreshold,
		CircuitBreakerTimeout:          parseDuration(fc.Reliability.CircuitBreakerTimeout, 30*time.Second),
		RateLimitRPS:                   20,
		RateLimitBurst:                 fc.Reliability.RateLimitBurst,

		SessionBackend:        orDefault(fc.Session.Backend, BackendInMemory),
		SessionTTL:            parseDuration(fc.Session.TTL, 30*time.Minute),
		MemcachedAddrs:        orDefault(fc.Session.Memcached.Addrs, "localhost:11211"),
		MemcachedTimeout:      parseDuration(fc.Session.Memcached.Timeout, 500*time.Millisecond),
		MemcachedMaxIdleConns: fc.Session.Memcached.MaxIdleConns,
		RedisAddr:             orDefault(fc.Session.Redis.Addr, "localhost:6379"),
		RedisPassword:         fc.Session.Redis.Password,
		RedisDB:               fc.Session.Redis.DB,

		CityMaxLength: fc.Validation.CityMaxLength,

		ShutdownTimeout:               parseDuration(fc.Shutdown.Timeout, 30*time.Second),
		ShutdownInFlightTimeout:       parseDuration(fc.Shutdown.InFlightTimeout, 15*time.Second),
		ShutdownInFlightCheckInterval: parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond),
	}
	if fc.Reliability.RateLimitRPS != nil {
		cfg.RateLimitRPS = *fc.Reliability.RateLimitRPS
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 2 * cfg.RateLimitRPS
	}
	if cfg.CircuitBreakerFailureThreshold == 0 {
		cfg.CircuitBreakerFailureThreshold = 5
	}
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 100
	}
	return cfg
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate checks struct tags, then widens RequestTimeout so one action's two
// sequential upstream calls fit inside it.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if minimum := 2*cfg.UpstreamTimeout + time.Second; cfg.RequestTimeout < minimum {
		cfg.RequestTimeout = minimum
	}
	return nil
}
