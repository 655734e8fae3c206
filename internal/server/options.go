package server

import (
	"errors"
	"log/slog"

	"mcp-kusto/internal/config"
	"mcp-kusto/internal/kusto"
)

// Validation errors for required ServerContext dependencies.
var (
	ErrMissingConfig   = errors.New("configuration is required")
	ErrMissingRegistry = errors.New("connection registry is required")
	ErrMissingLogger   = errors.New("logger must not be nil")
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithConfig sets the server configuration.
func WithConfig(cfg *config.Config) Option {
	return func(sc *ServerContext) error {
		if cfg == nil {
			return ErrMissingConfig
		}
		sc.config = cfg
		return nil
	}
}

// WithRegistry sets the cluster connection registry.
func WithRegistry(registry *kusto.Registry) Option {
	return func(sc *ServerContext) error {
		if registry == nil {
			return ErrMissingRegistry
		}
		sc.registry = registry
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics recorder, replacing the default.
func WithMetrics(m *Metrics) Option {
	return func(sc *ServerContext) error {
		if m != nil {
			sc.metrics = m
		}
		return nil
	}
}
