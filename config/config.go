package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for flightcast
type Config struct {
	Backend      BackendConfig
	Amadeus      AmadeusConfig
	Weather      WeatherConfig
	Exchange     ExchangeConfig
	Autocomplete AutocompleteConfig
	Store        StoreConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Log          LogConfig
	Locale       string // en, es
}

// BackendConfig points at the flight-search web backend (token, save, delete).
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// AmadeusConfig holds the location and flight-offer API settings.
// ClientID/ClientSecret are only needed when no backend URL is set.
type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RPS          float64 // outbound requests per second
	Timeout      time.Duration
}

type WeatherConfig struct {
	BaseURL string
	APIKey  string // used only with the direct Amadeus token source
}

type ExchangeConfig struct {
	URL string
}

// AutocompleteConfig holds the input timing.
type AutocompleteConfig struct {
	Debounce  time.Duration
	BlurGrace time.Duration
}

// StoreConfig selects the durable cache backend.
type StoreConfig struct {
	Driver     string // memory, redis, postgres
	QuotaBytes int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type PostgresConfig struct {
	DSN string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json, logfmt
}

// Load reads configuration from .env, an optional config file and environment variables.
// An empty path searches ./config.yaml, ./config/config.yaml and $HOME/.flightcast.
func Load(path string) (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.flightcast")
	}

	setDefaults(v)

	v.SetEnvPrefix("FLIGHTCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("amadeus.baseurl", "https://test.api.amadeus.com")
	v.SetDefault("amadeus.clientid", "")
	v.SetDefault("amadeus.clientsecret", "")
	v.SetDefault("amadeus.rps", 10.0)
	v.SetDefault("amadeus.timeout", 30*time.Second)
	v.SetDefault("weather.baseurl", "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline")
	v.SetDefault("weather.apikey", "")
	v.SetDefault("exchange.url", "https://api.exchangerate-api.com/v4/latest/EUR")
	v.SetDefault("autocomplete.debounce", 700*time.Millisecond)
	v.SetDefault("autocomplete.blurgrace", 200*time.Millisecond)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.quotabytes", int64(5*1024*1024))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "flightcast:")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("locale", "en")
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Postgres.DSN == "" {
		return errors.New("store driver postgres needs postgres.dsn")
	}
	if c.Autocomplete.Debounce <= 0 || c.Autocomplete.BlurGrace <= 0 {
		return errors.New("autocomplete timings must be positive")
	}
	return nil
}

// UsesBackendTokens reports whether tokens come from the backend's /token endpoint
// rather than straight from Amadeus.
func (c *Config) UsesBackendTokens() bool {
	return c.Backend.URL != ""
}
