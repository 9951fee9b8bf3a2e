package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/tracing"
	"github.com/metaschema/registry/internal/version"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "METAREGISTRY_"

// Config represents the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `envPrefix:"SERVER_" yaml:"server"`

	// Logging configuration
	Logging LoggingConfig `envPrefix:"LOG_" yaml:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `envPrefix:"METRICS_" yaml:"metrics"`

	// Tracing configuration
	Tracing TracingConfig `envPrefix:"TRACING_" yaml:"tracing"`

	// Registry configuration
	Registry RegistryConfig `envPrefix:"REGISTRY_" yaml:"registry"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	// HTTP server address
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080" yaml:"http_addr"`

	// gRPC health server address; empty disables it
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051" yaml:"grpc_addr"`

	// Maximum accepted request body in bytes
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576" yaml:"max_body_bytes"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Log level: "debug", "info", "warn", "error"
	Level string `env:"LEVEL" envDefault:"info" yaml:"level"`

	// Log format: "json", "text"
	Format string `env:"FORMAT" envDefault:"json" yaml:"format"`

	// Log output: "stdout", "stderr" or a file path
	Output string `env:"OUTPUT" envDefault:"stdout" yaml:"output"`

	// Enable log rotation for file output
	Rotation bool `env:"ROTATION" envDefault:"true" yaml:"rotation"`

	// Max log file size in MB
	MaxSize int `env:"MAX_SIZE" envDefault:"100" yaml:"max_size"`

	// Number of backup files to keep
	MaxBackups int `env:"MAX_BACKUPS" envDefault:"7" yaml:"max_backups"`

	// Max age in days
	MaxAge int `env:"MAX_AGE" envDefault:"30" yaml:"max_age"`
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	// Enable Prometheus metrics
	Enabled bool `env:"ENABLED" envDefault:"true" yaml:"enabled"`

	// Metrics server address
	Addr string `env:"ADDR" envDefault:":9090" yaml:"addr"`

	// Metrics path
	Path string `env:"PATH" envDefault:"/metrics" yaml:"path"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled       bool              `env:"ENABLED" envDefault:"false" yaml:"enabled"`
	Endpoint      string            `env:"ENDPOINT" yaml:"endpoint"`
	Exporter      string            `env:"EXPORTER" envDefault:"grpc" yaml:"exporter"`
	Insecure      bool              `env:"INSECURE" envDefault:"true" yaml:"insecure"`
	Headers       map[string]string `env:"HEADERS" yaml:"headers"`
	Sampling      string            `env:"SAMPLING" envDefault:"always" yaml:"sampling"`
	SamplingRatio float64           `env:"SAMPLING_RATIO" envDefault:"1" yaml:"sampling_ratio"`
}

// RegistryConfig controls how the registry is populated at startup
type RegistryConfig struct {
	// Load the built-in encoding schemes, vocabularies and Dublin Core schema
	SeedDefaults bool `env:"SEED_DEFAULTS" envDefault:"true" yaml:"seed_defaults"`

	// Additional seed file in YAML or JSON, loaded after the defaults
	SeedFile string `env:"SEED_FILE" yaml:"seed_file"`
}

// Options selects the files Load reads
type Options struct {
	// ConfigFile is an optional YAML file overlaid on environment values
	ConfigFile string

	// EnvFile is loaded into the environment before parsing. A missing
	// file is ignored.
	EnvFile string
}

// Load loads configuration from multiple sources:
// 1. Default values
// 2. .env file
// 3. Environment variables
// 4. Configuration file (YAML)
// Command line flags are applied by the caller after Load returns.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := loadFromFile(cfg, opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file; keys absent from the file keep their
// current values
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("http server address cannot be empty")
	}
	if err := checkAddr("http server", c.Server.HTTPAddr); err != nil {
		return err
	}
	if c.Server.GRPCAddr != "" {
		if err := checkAddr("grpc server", c.Server.GRPCAddr); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if err := checkAddr("metrics server", c.Metrics.Addr); err != nil {
			return err
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics path must start with /: %s", c.Metrics.Path)
		}
	}

	if err := c.TracingConfig().Validate(); err != nil {
		return err
	}

	if c.Registry.SeedFile != "" {
		if _, err := os.Stat(c.Registry.SeedFile); err != nil {
			return fmt.Errorf("seed file: %w", err)
		}
	}

	return nil
}

func checkAddr(name, addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid %s address %q: %w", name, addr, err)
	}
	return nil
}

// LoggerConfig converts the logging section for logger.Init
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		Rotation:   c.Logging.Rotation,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

// TracingConfig converts the tracing section for tracing.NewProvider
func (c *Config) TracingConfig() tracing.TracingConfig {
	tc := tracing.DefaultTracingConfig()
	tc.Enabled = c.Tracing.Enabled
	tc.ServiceVersion = version.Get().Version
	tc.Endpoint = c.Tracing.Endpoint
	tc.ExporterType = c.Tracing.Exporter
	tc.Insecure = c.Tracing.Insecure
	tc.SamplingStrategy = c.Tracing.Sampling
	tc.SamplingRatio = c.Tracing.SamplingRatio
	for k, v := range c.Tracing.Headers {
		tc.Headers[k] = v
	}
	return tc
}
