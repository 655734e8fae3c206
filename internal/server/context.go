package server

import (
	"context"
	"log/slog"
	"sync"

	"mcp-kusto/internal/config"
	"mcp-kusto/internal/kusto"
)

// ServerContext encapsulates the long-lived dependencies of the MCP
// server (configuration, connection registry, logger, metrics) and
// provides a clean abstraction for dependency injection and lifecycle
// management. It is constructed once at startup and passed by reference
// into the request-handling path.
type ServerContext struct {
	registry *kusto.Registry
	config   *config.Config
	logger   *slog.Logger
	metrics  *Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext with the given options.
// Configuration and registry are required.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     serverCtx,
		cancel:  cancel,
		logger:  slog.Default(),
		metrics: NewMetrics(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}
	return sc, nil
}

func (sc *ServerContext) validate() error {
	if sc.config == nil {
		return ErrMissingConfig
	}
	if sc.registry == nil {
		return ErrMissingRegistry
	}
	return nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Registry returns the cluster connection registry.
func (sc *ServerContext) Registry() *kusto.Registry {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.registry
}

// Config returns the immutable server configuration.
func (sc *ServerContext) Config() *config.Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// Logger returns the structured logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Metrics returns the operation metrics recorder.
func (sc *ServerContext) Metrics() *Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// Shutdown cancels the server context and releases cluster handles.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true

	if sc.registry != nil {
		sc.registry.Close()
	}
	sc.cancel()
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
