package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultAddress         = "127.0.0.1"
	DefaultHTTPPort        = 3000
	DefaultGRPCPort        = 50051
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPageLimit       = 10
	DefaultStreamInterval  = 5 * time.Second
	DefaultMetricsPath     = "/metrics"
	DefaultServiceName     = "pokedex-server"
)

// Config holds the server configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// Address is the interface the HTTP listener binds to (default 127.0.0.1).
	Address string `yaml:"address" env:"POKEDEX_ADDRESS"`

	// HTTPPort is the port the REST API, stream and metrics listen on (default 3000).
	HTTPPort int `yaml:"http_port" env:"POKEDEX_HTTP_PORT"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level" env:"POKEDEX_LOG_LEVEL"`

	// Seed loads the two fixture records before the listener starts.
	Seed bool `yaml:"seed" env:"POKEDEX_SEED"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"POKEDEX_SHUTDOWN_TIMEOUT"`

	Pagination PaginationConfig `yaml:"pagination"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Stream     StreamConfig     `yaml:"stream"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// PaginationConfig controls GET /pokemon paging.
type PaginationConfig struct {
	// DefaultLimit applies when the request has no limit parameter (default 10).
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the limit parameter. Zero means unbounded.
	MaxLimit int `yaml:"max_limit"`
}

// GRPCConfig controls the optional gRPC listener. It binds to Address.
type GRPCConfig struct {
	Enabled bool `yaml:"enabled" env:"POKEDEX_GRPC_ENABLED"`
	Port    int  `yaml:"port" env:"POKEDEX_GRPC_PORT"`
}

// StreamConfig controls the WebSocket snapshot stream.
type StreamConfig struct {
	Enabled  bool          `yaml:"enabled" env:"POKEDEX_STREAM_ENABLED"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"POKEDEX_METRICS_ENABLED"`
	Path    string `yaml:"path"`
}

// TracingConfig controls OTLP trace export. An empty Endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" env:"POKEDEX_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.HTTPPort))
}

// GRPCAddr returns the host:port the gRPC server listens on.
func (s ServerConfig) GRPCAddr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.GRPC.Port))
}

// Level returns LogLevel as a slog.Level. Unknown values map to Info;
// validate rejects them before they get here.
func (s ServerConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("server config: parse env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			HTTPPort:        DefaultHTTPPort,
			LogLevel:        DefaultLogLevel,
			Seed:            true,
			ShutdownTimeout: DefaultShutdownTimeout,
			Pagination: PaginationConfig{
				DefaultLimit: DefaultPageLimit,
			},
			GRPC: GRPCConfig{
				Port: DefaultGRPCPort,
			},
			Stream: StreamConfig{
				Enabled:  true,
				Interval: DefaultStreamInterval,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				ServiceName: DefaultServiceName,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if s.Pagination.DefaultLimit < 0 {
		return fmt.Errorf("server.pagination.default_limit must not be negative")
	}
	if s.Pagination.MaxLimit < 0 {
		return fmt.Errorf("server.pagination.max_limit must not be negative")
	}
	if s.GRPC.Enabled {
		if s.GRPC.Port <= 0 || s.GRPC.Port > 65535 {
			return fmt.Errorf("server.grpc.port %d is out of range [1, 65535]", s.GRPC.Port)
		}
		if s.GRPC.Port == s.HTTPPort {
			return fmt.Errorf("server.grpc.port %d collides with server.http_port", s.GRPC.Port)
		}
	}
	if s.Stream.Enabled && s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive when the stream is enabled")
	}
	if s.Metrics.Enabled && (s.Metrics.Path == "" || s.Metrics.Path[0] != '/') {
		return fmt.Errorf("server.metrics.path %q must start with /", s.Metrics.Path)
	}
	return nil
}
