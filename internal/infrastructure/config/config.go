package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/kelseyhightower/envconfig"
)

// Reply policies for requests that fail validation.
const (
	PolicySentinel = "sentinel"
	PolicyStatus   = "status"
)

// DefaultMaxMatrixElements caps each MatMul operand and product at 4Mi
// elements (32MiB of float64), half the default message size.
const DefaultMaxMatrixElements = 4 << 20

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Engine    EngineConfig    `yaml:"engine" toml:"engine"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	Host           string `envconfig:"GRPC_HOST" yaml:"host" toml:"host"`
	Port           string `envconfig:"GRPC_PORT" yaml:"port" toml:"port"`
	HTTPPort       string `envconfig:"HTTP_PORT" yaml:"http_port" toml:"http_port"`
	HTTPEnabled    bool   `envconfig:"HTTP_ENABLED" yaml:"http_enabled" toml:"http_enabled"`
	MaxConnections int    `envconfig:"MAX_CONNECTIONS" yaml:"max_connections" toml:"max_connections"` // 0 = unlimited
	MaxMessageMB   int    `envconfig:"MAX_MSG_MB" yaml:"max_msg_mb" toml:"max_msg_mb"`
}

// GRPCAddr is the gRPC listen address.
func (s ServerConfig) GRPCAddr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// HTTPAddr is the gateway listen address.
func (s ServerConfig) HTTPAddr() string {
	return net.JoinHostPort(s.Host, s.HTTPPort)
}

// MaxMessageBytes converts MaxMessageMB to bytes.
func (s ServerConfig) MaxMessageBytes() int {
	return s.MaxMessageMB << 20
}

// EngineConfig holds request handling configuration.
type EngineConfig struct {
	ReplyPolicy       string `envconfig:"ENGINE_REPLY_POLICY" yaml:"reply_policy" toml:"reply_policy"`
	MaxSamples        int64  `envconfig:"ENGINE_MAX_SAMPLES" yaml:"max_samples" toml:"max_samples"`                         // 0 = unbounded
	MaxMatrixElements int64  `envconfig:"ENGINE_MAX_MATRIX_ELEMENTS" yaml:"max_matrix_elements" toml:"max_matrix_elements"` // 0 = allocation cap only
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// Load loads configuration from environment variables over Default().
func Load() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "9101",
			HTTPPort:       "8080",
			HTTPEnabled:    true,
			MaxConnections: 0,
			MaxMessageMB:   64,
		},
		Engine: EngineConfig{
			ReplyPolicy:       PolicySentinel,
			MaxSamples:        0,
			MaxMatrixElements: DefaultMaxMatrixElements,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate reports the first setting the server cannot run with.
func (c *Config) Validate() error {
	switch c.Engine.ReplyPolicy {
	case PolicySentinel, PolicyStatus:
	default:
		return fmt.Errorf("%w: engine reply policy %q (want %q or %q)",
			ErrInvalid, c.Engine.ReplyPolicy, PolicySentinel, PolicyStatus)
	}

	switch {
	case c.Server.Port == "":
		return fmt.Errorf("%w: grpc port is empty", ErrInvalid)
	case c.Server.HTTPEnabled && c.Server.HTTPPort == "":
		return fmt.Errorf("%w: http port is empty", ErrInvalid)
	case c.Server.MaxConnections < 0:
		return fmt.Errorf("%w: max connections %d is negative", ErrInvalid, c.Server.MaxConnections)
	case c.Server.MaxMessageMB <= 0:
		return fmt.Errorf("%w: max message size %dMB must be positive", ErrInvalid, c.Server.MaxMessageMB)
	case c.Engine.MaxSamples < 0:
		return fmt.Errorf("%w: max samples %d is negative", ErrInvalid, c.Engine.MaxSamples)
	case c.Engine.MaxMatrixElements < 0:
		return fmt.Errorf("%w: max matrix elements %d is negative", ErrInvalid, c.Engine.MaxMatrixElements)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate limit needs positive rps and burst, got %d/%d",
			ErrInvalid, c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	return nil
}

// applyEnv overrides cfg with every variable that is set. Fields carry no
// default tags, so unset variables leave earlier layers untouched.
func applyEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}
