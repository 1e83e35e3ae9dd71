// Package config holds the operator configuration: defaults, an optional
// YAML file and PROBELET_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Configuration is the complete operator configuration.
type Configuration struct {
	Controller     ControllerConfig     `yaml:"controller"`
	Server         ServerConfig         `yaml:"server"`
	LeaderElection LeaderElectionConfig `yaml:"leaderElection"`
	Logging        LoggingConfig        `yaml:"logging"`
	Tracing        TracingConfig        `yaml:"tracing"`
}

// ControllerConfig configures the WorkerGroup controller loop.
type ControllerConfig struct {
	MaxConcurrentReconciles int           `yaml:"maxConcurrentReconciles"`
	ErrorRequeue            time.Duration `yaml:"errorRequeue"`
	// ReportingInstance identifies this replica in published events.
	ReportingInstance string `yaml:"reportingInstance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	BindAddress     string        `yaml:"bindAddress"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LeaderElectionConfig configures leader election of the manager.
type LeaderElectionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ID        string `yaml:"id"`
	Namespace string `yaml:"namespace"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TracingConfig configures OpenTelemetry. Exporters are configured through
// the standard OTEL_* variables.
type TracingConfig struct {
	ServiceName string `yaml:"serviceName"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Configuration {
	return &Configuration{
		Controller: ControllerConfig{
			MaxConcurrentReconciles: 4,
			ErrorRequeue:            5 * time.Minute,
		},
		Server: ServerConfig{
			BindAddress:     ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		LeaderElection: LeaderElectionConfig{
			Enabled: false,
			ID:      "probelet-operator.probelet.dev",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			ServiceName: "probelet-operator",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Configuration) Validate() error {
	var errs []error

	if c.Controller.MaxConcurrentReconciles < 1 {
		errs = append(errs, fmt.Errorf("controller.maxConcurrentReconciles must be at least 1, got %d",
			c.Controller.MaxConcurrentReconciles))
	}
	if c.Controller.ErrorRequeue <= 0 {
		errs = append(errs, fmt.Errorf("controller.errorRequeue must be positive, got %s", c.Controller.ErrorRequeue))
	}
	if c.Server.BindAddress == "" {
		errs = append(errs, errors.New("server.bindAddress cannot be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdownTimeout must be positive, got %s", c.Server.ShutdownTimeout))
	}
	if c.LeaderElection.Enabled && c.LeaderElection.ID == "" {
		errs = append(errs, errors.New("leaderElection.id is required when leader election is enabled"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

// ZapOptions returns the controller-runtime zap options for the logging
// settings. Flags bound to the returned options still take precedence when
// parsed afterwards.
func (c *Configuration) ZapOptions() crzap.Options {
	opts := crzap.Options{
		Development: c.Logging.Development,
	}
	if level, err := zapcore.ParseLevel(c.Logging.Level); err == nil {
		opts.Level = zap.NewAtomicLevelAt(level)
	}
	return opts
}
