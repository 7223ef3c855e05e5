package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/escape"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "escaper.json"

	// DefaultAddress is the default listen address of the HTTP service.
	DefaultAddress = ":8080"

	// DefaultNamespace prefixes every Prometheus metric.
	DefaultNamespace = "escaper"

	// DefaultMetricsPath is where metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultTracerName names the OpenTelemetry tracer.
	DefaultTracerName = "github.com/vango-dev/escaper"

	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultInitialBufferSize is the starting capacity of output buffers.
	DefaultInitialBufferSize = 256
)

// fileNames are searched in order by Load.
var fileNames = []string{ConfigFileName, "escaper.yaml", "escaper.yml"}

// Config represents escaper.json or escaper.yaml.
type Config struct {
	// AllowedSchemes is the URL scheme allow-list. Empty means the default
	// list (http, https, ftp, mailto).
	AllowedSchemes []string `json:"allowedSchemes,omitempty" yaml:"allowedSchemes,omitempty"`

	// Server configures the HTTP service.
	Server ServerConfig `json:"server" yaml:"server"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Log configures the slog logger.
	Log LogConfig `json:"log" yaml:"log"`

	// Buffer sizes the output buffers used per request.
	Buffer BufferConfig `json:"buffer" yaml:"buffer"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP service settings.
type ServerConfig struct {
	Address      string   `json:"address,omitempty" yaml:"address,omitempty"`
	ReadTimeout  Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// MaxBodyBytes is the largest accepted request body.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// BufferConfig sizes output buffers.
type BufferConfig struct {
	InitialSize int `json:"initialSize,omitempty" yaml:"initialSize,omitempty"`

	// MaxSize caps buffer growth; 0 means no cap.
	MaxSize int `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		AllowedSchemes: escape.DefaultPolicy().Schemes(),
		Server: ServerConfig{
			Address:      DefaultAddress,
			ReadTimeout:  Duration(5 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Buffer: BufferConfig{
			InitialSize: DefaultInitialBufferSize,
		},
	}
}

// Find returns the config file in dir, trying escaper.json, escaper.yaml
// and escaper.yml in that order.
func Find(dir string) (string, bool) {
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Exists checks if a config file exists in the directory.
func Exists(dir string) bool {
	_, ok := Find(dir)
	return ok
}

// Load reads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return nil, errors.New(errors.CodeConfigLoad).
			WithDetail("No escaper.json or escaper.yaml found in " + dir).
			WithSuggestion("Create escaper.json, or run without --config to use the defaults")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigLoad).
				WithDetail("No config file at " + path).
				WithSuggestion("Check the --config path")
		}
		return nil, errors.New(errors.CodeConfigLoad).Wrap(err)
	}

	cfg := New()
	// Lists replace the defaults instead of merging into them.
	cfg.AllowedSchemes = nil
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigLoad).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigLoad).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigLoad).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if len(c.AllowedSchemes) == 0 {
		c.AllowedSchemes = d.AllowedSchemes
	}

	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = d.Tracing.TracerName
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}

	if c.Buffer.InitialSize == 0 {
		c.Buffer.InitialSize = d.Buffer.InitialSize
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Server.Address == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("server.address must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("server timeouts must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("server.maxBodyBytes is %d, must not be negative", c.Server.MaxBodyBytes)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("metrics.path %q must start with /", c.Metrics.Path)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("log.format %q must be text or json", c.Log.Format)
	}
	if c.Buffer.InitialSize < 0 || c.Buffer.MaxSize < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("buffer sizes must not be negative")
	}
	if c.Buffer.MaxSize > 0 && c.Buffer.InitialSize > c.Buffer.MaxSize {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("buffer.initialSize %d exceeds buffer.maxSize %d", c.Buffer.InitialSize, c.Buffer.MaxSize)
	}
	return nil
}

// Policy builds the URL scheme policy from AllowedSchemes.
func (c *Config) Policy() (*escape.Policy, error) {
	if len(c.AllowedSchemes) == 0 {
		return escape.DefaultPolicy(), nil
	}
	p, err := escape.NewPolicy(c.AllowedSchemes...)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("allowedSchemes: " + err.Error())
	}
	return p, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New(errors.CodeConfigInvalid).
		WithDetailf("log.level %q must be debug, info, warn or error", s)
}
