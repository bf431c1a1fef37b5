// Package config loads server configuration from defaults, an optional
// config file, FASTWEB_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/searchktools/fastweb/core"
	"github.com/searchktools/fastweb/logging"
)

// EnvPrefix prefixes every environment variable, e.g. FASTWEB_LOG_LEVEL
const EnvPrefix = "FASTWEB"

// ErrInvalidConfig is wrapped by every ValidationError
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	MaxRequestSize int           `mapstructure:"max_request_size"`
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	NotFoundPage   string        `mapstructure:"not_found_page"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReusePort      bool          `mapstructure:"reuse_port"`

	Log       logging.Config  `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles handled requests server-wide, disabled when RPS
// is zero
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadBufferSize: 4096,
		MaxRequestSize: 1 << 20,
		Workers:        runtime.NumCPU(),
		QueueSize:      1024,
		NotFoundPage:   "public/404.html",
		Log:            logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"host":             "host",
	"port":             "port",
	"read-buffer-size": "read_buffer_size",
	"max-request-size": "max_request_size",
	"workers":          "workers",
	"queue-size":       "queue_size",
	"not-found-page":   "not_found_page",
	"read-timeout":     "read_timeout",
	"write-timeout":    "write_timeout",
	"max-connections":  "max_connections",
	"reuse-port":       "reuse_port",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"log-output":       "log.output",
	"metrics":          "metrics.enabled",
	"metrics-path":     "metrics.path",
	"rate-limit":       "rate_limit.rps",
	"rate-limit-burst": "rate_limit.burst",
}

// RegisterFlags defines the flags Load understands on fs
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("host", d.Host, "bind host")
	fs.Int("port", d.Port, "bind port")
	fs.Int("read-buffer-size", d.ReadBufferSize, "initial connection read buffer in bytes")
	fs.Int("max-request-size", d.MaxRequestSize, "largest accepted request in bytes")
	fs.Int("workers", d.Workers, "number of worker goroutines")
	fs.Int("queue-size", d.QueueSize, "pending connection queue capacity")
	fs.String("not-found-page", d.NotFoundPage, "HTML file served for unmatched requests")
	fs.Duration("read-timeout", d.ReadTimeout, "socket read deadline, 0 disables")
	fs.Duration("write-timeout", d.WriteTimeout, "socket write deadline, 0 disables")
	fs.Int("max-connections", d.MaxConnections, "open connection limit, 0 is unlimited")
	fs.Bool("reuse-port", d.ReusePort, "set SO_REUSEPORT on the listener")
	fs.String("log-level", string(d.Log.Level), "log level (debug, info, warn, error)")
	fs.String("log-format", string(d.Log.Format), "log format (json, console)")
	fs.String("log-output", d.Log.Output, "log output (stdout, stderr or a file path)")
	fs.Bool("metrics", d.Metrics.Enabled, "serve Prometheus metrics")
	fs.String("metrics-path", d.Metrics.Path, "metrics route")
	fs.Float64("rate-limit", d.RateLimit.RPS, "requests per second across all routes, 0 disables")
	fs.Int("rate-limit-burst", d.RateLimit.Burst, "rate limiter burst size")
}

// Load builds the configuration. path names a config file (yaml, json or
// toml by extension); when empty, fastweb.* is looked up in the working
// directory and /etc/fastweb and skipped if absent. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("fastweb")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fastweb")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("read_buffer_size", d.ReadBufferSize)
	v.SetDefault("max_request_size", d.MaxRequestSize)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("queue_size", d.QueueSize)
	v.SetDefault("not_found_page", d.NotFoundPage)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("write_timeout", d.WriteTimeout)
	v.SetDefault("max_connections", d.MaxConnections)
	v.SetDefault("reuse_port", d.ReusePort)
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", string(d.Log.Format))
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Port < 0 || c.Port > 65535 {
		invalid("port", "must be between 0 and 65535, got %d", c.Port)
	}
	if c.Workers <= 0 {
		invalid("workers", "must be positive, got %d", c.Workers)
	}
	if c.QueueSize <= 0 {
		invalid("queue_size", "must be positive, got %d", c.QueueSize)
	}
	if c.ReadBufferSize <= 0 {
		invalid("read_buffer_size", "must be positive, got %d", c.ReadBufferSize)
	}
	if c.MaxRequestSize < c.ReadBufferSize {
		invalid("max_request_size", "must be at least read_buffer_size (%d), got %d", c.ReadBufferSize, c.MaxRequestSize)
	}
	if c.NotFoundPage == "" {
		invalid("not_found_page", "must not be empty")
	}
	if c.ReadTimeout < 0 {
		invalid("read_timeout", "must not be negative")
	}
	if c.WriteTimeout < 0 {
		invalid("write_timeout", "must not be negative")
	}
	if c.MaxConnections < 0 {
		invalid("max_connections", "must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		invalid("metrics.path", "must start with /, got %q", c.Metrics.Path)
	}
	if c.RateLimit.RPS < 0 {
		invalid("rate_limit.rps", "must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		invalid("rate_limit.burst", "must be positive when rate limiting, got %d", c.RateLimit.Burst)
	}
	if err := c.Log.Validate(); err != nil {
		invalid("log", "%v", err)
	}

	return errors.Join(errs...)
}

// Engine returns the engine options of c
func (c *Config) Engine() core.Options {
	return core.Options{
		Host:           c.Host,
		Port:           c.Port,
		ReadBufferSize: c.ReadBufferSize,
		MaxRequestSize: c.MaxRequestSize,
		Workers:        c.Workers,
		QueueSize:      c.QueueSize,
		NotFoundPage:   c.NotFoundPage,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		MaxConnections: c.MaxConnections,
		ReusePort:      c.ReusePort,
	}
}

// ValidationError represents a configuration error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}
