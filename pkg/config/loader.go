package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "PROBELET"

// Loader handles loading configuration from various sources
type Loader struct {
	// ConfigFile is the path to the YAML configuration file
	ConfigFile string

	// EnvPrefix is the prefix for environment variables
	EnvPrefix string

	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		EnvPrefix: DefaultEnvPrefix,
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigFile sets the configuration file path
func (l *Loader) WithConfigFile(path string) *Loader {
	l.ConfigFile = path
	return l
}

// Load loads configuration in priority order: defaults, then the file when
// set, then environment variables. The result is validated.
func (l *Loader) Load() (*Configuration, error) {
	cfg := DefaultConfig()

	if l.ConfigFile != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Configuration) error {
	data, err := os.ReadFile(l.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config file: %w", err)
	}
	return nil
}

// loadFromEnv applies environment overrides. A malformed value is an
// error.
func (l *Loader) loadFromEnv(cfg *Configuration) error {
	if val, ok := l.getEnv("MAX_CONCURRENT_RECONCILES"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s_MAX_CONCURRENT_RECONCILES: %w", l.EnvPrefix, err)
		}
		cfg.Controller.MaxConcurrentReconciles = n
	}
	if val, ok := l.getEnv("ERROR_REQUEUE"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s_ERROR_REQUEUE: %w", l.EnvPrefix, err)
		}
		cfg.Controller.ErrorRequeue = d
	}
	if val, ok := l.getEnv("REPORTING_INSTANCE"); ok {
		cfg.Controller.ReportingInstance = val
	}
	if val, ok := l.getEnv("BIND_ADDRESS"); ok {
		cfg.Server.BindAddress = val
	}
	if val, ok := l.getEnv("LEADER_ELECT"); ok {
		b, err := parseBool(val)
		if err != nil {
			return fmt.Errorf("%s_LEADER_ELECT: %w", l.EnvPrefix, err)
		}
		cfg.LeaderElection.Enabled = b
	}
	if val, ok := l.getEnv("LEADER_ELECTION_NAMESPACE"); ok {
		cfg.LeaderElection.Namespace = val
	}
	if val, ok := l.getEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = val
	}
	if val, ok := l.getEnv("LOG_DEVELOPMENT"); ok {
		b, err := parseBool(val)
		if err != nil {
			return fmt.Errorf("%s_LOG_DEVELOPMENT: %w", l.EnvPrefix, err)
		}
		cfg.Logging.Development = b
	}
	return nil
}

// getEnv gets a non-empty environment variable with the configured prefix.
func (l *Loader) getEnv(key string) (string, bool) {
	val, ok := l.lookupEnv(l.EnvPrefix + "_" + key)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", val)
	}
}
