package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Seed     SeedConfig     `toml:"seed"`
	Activity ActivityConfig `toml:"activity"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Client   ClientConfig   `toml:"client"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string  `toml:"host"`
	Port            int     `toml:"port"`
	Resource        string  `toml:"resource"`         // Path segment the catalog is mounted under
	BodyLimit       int64   `toml:"body_limit"`       // Max request body size in bytes
	RateLimit       float64 `toml:"rate_limit"`       // Requests per second, 0 disables limiting
	Burst           int     `toml:"burst"`            // Limiter bucket size
	ShutdownTimeout int     `toml:"shutdown_timeout"` // Seconds to drain connections on shutdown
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// SeedConfig points at an optional file of entities loaded at startup.
type SeedConfig struct {
	Path string `toml:"path"`
}

// ActivityConfig selects where per-client request activity is recorded.
type ActivityConfig struct {
	Backend    string `toml:"backend"` // memory, sqlite, redis or none
	MaxEntries int    `toml:"max_entries"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains redis connection settings.
type RedisConfig struct {
	Addr string `toml:"addr"`
	DB   int    `toml:"db"`
}

// ClientConfig contains settings used by the CLI when talking to a running server.
type ClientConfig struct {
	ServerURL string `toml:"server_url"`
	ClientID  string `toml:"client_id"`
}

// reservedResources are path segments already mounted by the server.
var reservedResources = []string{"health", "activity"}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Shutdown returns the shutdown grace period as a [time.Duration].
func (s ServerConfig) Shutdown() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if strings.Trim(c.Server.Resource, "/") == "" {
		return fmt.Errorf("%w: server resource must not be empty", ErrInvalidConfig)
	}
	resource := strings.Trim(c.Server.Resource, "/")
	if strings.Contains(resource, "/") {
		return fmt.Errorf("%w: server resource %q must be a single path segment", ErrInvalidConfig, c.Server.Resource)
	}
	if strings.ContainsAny(resource, "{}$ ") {
		return fmt.Errorf("%w: server resource %q contains a reserved character", ErrInvalidConfig, c.Server.Resource)
	}
	if slices.Contains(reservedResources, resource) {
		return fmt.Errorf("%w: server resource %q collides with a built-in route", ErrInvalidConfig, c.Server.Resource)
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("%w: body_limit must be positive", ErrInvalidConfig)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}

	switch c.Activity.Backend {
	case "", "none", "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Activity.Backend)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
