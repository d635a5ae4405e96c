package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths     []string `yaml:"paths"`      // .hcl/.json documents or directories
	OutputDir string   `yaml:"output_dir"` // generated shaders; empty disables writing

	Watch  bool `yaml:"watch"`
	Strict bool `yaml:"strict"`

	LogFormat       string       `yaml:"log_format"`
	LogLevel        string       `yaml:"log_level"`
	HealthcheckPort int          `yaml:"healthcheck_port"`
	WorkerCount     int          `yaml:"workers"`
	Samplers        int          `yaml:"samplers"`
	Notify          NotifyConfig `yaml:"notify"`
}

// NotifyConfig describes the socket.io endpoint compile events go to. An
// empty URL logs events instead.
type NotifyConfig struct {
	URL                string        `yaml:"url"`
	Namespace          string        `yaml:"namespace"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogFormat: "json",
		LogLevel:  "info",
		Samplers:  2,
	}
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one document path is required")
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid worker count %d", cfg.WorkerCount)
	}
	if cfg.Samplers < 1 {
		return nil, fmt.Errorf("invalid sampler count %d: at least one is required", cfg.Samplers)
	}
	if cfg.Notify.Timeout < 0 {
		return nil, fmt.Errorf("invalid notify timeout %s", cfg.Notify.Timeout)
	}
	cfg.Paths = append([]string(nil), cfg.Paths...)
	return &cfg, nil
}
