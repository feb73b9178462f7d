// Package config provides configuration file support for simplify.
// It handles loading, validation, and environment variable interpolation
// for simplify.yaml configuration files.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Siddhant-K-code/simplify/pkg/logging"
	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

// Config represents the full simplify configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Simplifier SimplifierConfig `mapstructure:"simplifier"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    logging.Config   `mapstructure:"logging"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBatchSize int           `mapstructure:"max_batch_size"`
}

// SimplifierConfig holds the default level and an optional rule-table
// override file.
type SimplifierConfig struct {
	Level     int    `mapstructure:"level"`
	RulesFile string `mapstructure:"rules_file"`
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers int    `mapstructure:"workers"`
	Format  string `mapstructure:"format"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	MaxSize int           `mapstructure:"max_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Exporter   string  `mapstructure:"exporter"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
	Insecure   bool    `mapstructure:"insecure"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBatchSize: 1000,
		},
		Simplifier: SimplifierConfig{
			Level: rules.LevelMinimal,
		},
		Batch: BatchConfig{
			Workers: 4,
			Format:  "lines",
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 10000,
			TTL:     time.Hour,
		},
		Logging: logging.DefaultConfig(),
		Auth: AuthConfig{
			APIKeys: []string{},
		},
		Telemetry: TelemetryConfig{
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "otlp",
				Endpoint:   "localhost:4317",
				SampleRate: 1.0,
				Insecure:   true,
			},
		},
	}
}

// Load reads configuration from the given viper instance and returns
// a validated Config. Environment variables in string values are
// interpolated using ${VAR} syntax.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	interpolateConfig(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads a specific config file and returns a validated Config.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Load(v)
}

// Validate checks the configuration for errors and returns a descriptive
// error listing every invalid field.
func Validate(cfg *Config) error {
	var errs []string

	// Server
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 0 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Server.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout: must be non-negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout: must be non-negative")
	}
	if cfg.Server.MaxBatchSize < 0 {
		errs = append(errs, "server.max_batch_size: must be non-negative")
	}

	// Simplifier. A rules file may define its own level set, which is
	// checked when the file is loaded.
	if cfg.Simplifier.RulesFile == "" {
		defaults := rules.Default()
		if !defaults.HasLevel(cfg.Simplifier.Level) {
			errs = append(errs, fmt.Sprintf("simplifier.level: must be between %d and %d, got %d",
				defaults.MinLevel(), defaults.MaxLevel(), cfg.Simplifier.Level))
		}
	} else if cfg.Simplifier.Level <= 0 {
		errs = append(errs, fmt.Sprintf("simplifier.level: must be positive, got %d", cfg.Simplifier.Level))
	}

	// Batch
	if cfg.Batch.Workers < 0 {
		errs = append(errs, "batch.workers: must be non-negative")
	}
	validFormats := map[string]bool{"lines": true, "jsonl": true, "": true}
	if !validFormats[cfg.Batch.Format] {
		errs = append(errs, fmt.Sprintf("batch.format: unsupported format %q (supported: lines, jsonl)", cfg.Batch.Format))
	}

	// Cache
	if cfg.Cache.MaxSize < 0 {
		errs = append(errs, "cache.max_size: must be non-negative")
	}
	if cfg.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl: must be non-negative")
	}

	// Logging
	if cfg.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
			errs = append(errs, fmt.Sprintf("logging.level: unknown level %q", cfg.Logging.Level))
		}
	}
	validLogFormats := map[string]bool{"json": true, "console": true, "": true}
	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format: unsupported format %q (supported: json, console)", cfg.Logging.Format))
	}

	// Telemetry
	validExporters := map[string]bool{"otlp": true, "stdout": true, "none": true, "": true}
	if !validExporters[cfg.Telemetry.Tracing.Exporter] {
		errs = append(errs, fmt.Sprintf("telemetry.tracing.exporter: unsupported exporter %q (supported: otlp, stdout, none)", cfg.Telemetry.Tracing.Exporter))
	}
	if cfg.Telemetry.Tracing.SampleRate < 0 || cfg.Telemetry.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("telemetry.tracing.sample_rate: must be between 0 and 1, got %f", cfg.Telemetry.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnv replaces ${VAR} and ${VAR:-default} patterns in a string
// with the corresponding environment variable values. Unset variables
// without a default are left as written.
func InterpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		if val, ok := os.LookupEnv(parts[1]); ok {
			return val
		}
		if len(parts) >= 3 && parts[2] != "" {
			return parts[2]
		}
		return match
	})
}

func interpolateConfig(cfg *Config) {
	cfg.Server.Host = InterpolateEnv(cfg.Server.Host)
	cfg.Simplifier.RulesFile = InterpolateEnv(cfg.Simplifier.RulesFile)
	cfg.Logging.Output = InterpolateEnv(cfg.Logging.Output)

	for i, key := range cfg.Auth.APIKeys {
		cfg.Auth.APIKeys[i] = InterpolateEnv(key)
	}

	cfg.Telemetry.Tracing.Exporter = InterpolateEnv(cfg.Telemetry.Tracing.Exporter)
	cfg.Telemetry.Tracing.Endpoint = InterpolateEnv(cfg.Telemetry.Tracing.Endpoint)
}

// GenerateTemplate returns a YAML template with every option and its
// default, suitable for writing to simplify.yaml.
func GenerateTemplate() string {
	return `# simplify configuration
# See: https://github.com/Siddhant-K-code/simplify

server:
  port: 8080
  host: 0.0.0.0
  read_timeout: 30s
  write_timeout: 60s
  max_batch_size: 1000

simplifier:
  level: 1             # 1 minimal, 2 moderate, 3 aggressive, 4 maximum
  rules_file: ""       # optional YAML rule-table overrides

batch:
  workers: 4
  format: lines        # lines or jsonl

cache:
  enabled: true
  max_size: 10000
  ttl: 1h

logging:
  level: warn          # trace, debug, info, warn, error
  format: console      # console or json
  output: stderr       # stdout, stderr, or a file path

auth:
  api_keys:
    # - ${SIMPLIFY_API_KEY}

telemetry:
  tracing:
    enabled: false
    exporter: otlp       # otlp, stdout, or none
    endpoint: localhost:4317
    sample_rate: 1.0     # 0.0 to 1.0
    insecure: true
`
}
