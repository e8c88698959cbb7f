package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Geolocation provider names accepted by GEO_PROVIDER.
const (
	ProviderIPAPI = "ip-api"
	ProviderMMDB  = "mmdb"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into Config.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when a parsed Config fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the service settings read from the environment.
type Config struct {
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	GeoProvider string        `env:"GEO_PROVIDER" envDefault:"ip-api"`
	GeoAPIURL   string        `env:"GEO_API_URL" envDefault:"http://ip-api.com/json"`
	GeoTimeout  time.Duration `env:"GEO_TIMEOUT" envDefault:"3s"`

	MMDBPath    string `env:"MMDB_PATH"`
	MMDBASNPath string `env:"MMDB_ASN_PATH"`
	MMDBWatch   bool   `env:"MMDB_WATCH" envDefault:"true"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	GRPCPort       string `env:"GRPC_PORT"`
}

// Load reads the optional .env files and parses the environment into a Config.
// Missing .env files are ignored; malformed ones are an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrParsingConfig, fmt.Errorf("load %s: %w", f, err))
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	switch c.GeoProvider {
	case ProviderIPAPI:
		if c.GeoAPIURL == "" {
			return fmt.Errorf("%w: GEO_API_URL is required for provider %q", ErrInvalidConfig, c.GeoProvider)
		}
	case ProviderMMDB:
		if c.MMDBPath == "" {
			return fmt.Errorf("%w: MMDB_PATH is required for provider %q", ErrInvalidConfig, c.GeoProvider)
		}
	default:
		return fmt.Errorf("%w: unknown GEO_PROVIDER %q", ErrInvalidConfig, c.GeoProvider)
	}
	if c.GeoTimeout <= 0 {
		return fmt.Errorf("%w: GEO_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: PORT is required", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// GRPCAddr returns the gRPC health listen address, or "" when disabled.
func (c Config) GRPCAddr() string {
	if c.GRPCPort == "" {
		return ""
	}
	return net.JoinHostPort(c.Host, c.GRPCPort)
}

// SlogLevel converts LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
