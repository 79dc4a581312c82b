package event

import "log/slog"

// Option configures a Manager.
type Option func(*managerConfig)

// managerConfig contains configuration for the manager.
type managerConfig struct {
	// logger receives debug records for registry changes and dispatches.
	logger *slog.Logger

	// registry is the listener registry; a new one is created if nil.
	registry *Registry
}

// defaultManagerConfig returns the default configuration.
func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used by the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry makes the manager use an existing registry.
func WithRegistry(r *Registry) Option {
	return func(c *managerConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// AttachOption configures a single Attach call.
type AttachOption func(*attachConfig)

type attachConfig struct {
	priority int
}

// WithPriority sets the listener priority. Higher values run first.
func WithPriority(priority int) AttachOption {
	return func(c *attachConfig) {
		c.priority = priority
	}
}
