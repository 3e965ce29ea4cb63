package connector

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
)

// Builder assembles a Connector from named command handlers. Use NewBuilder
// to create one, register handlers, then call Build.
type Builder struct {
	name     string
	version  string
	logger   *slog.Logger
	handlers map[string]Handler
	closer   func() error
}

// NewBuilder creates a connector builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		handlers: make(map[string]Handler),
	}
}

// SetName sets the connector name.
func (b *Builder) SetName(name string) *Builder {
	b.name = name
	return b
}

// SetVersion sets the connector version.
func (b *Builder) SetVersion(version string) *Builder {
	b.version = version
	return b
}

// SetLogger sets the connector logger.
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// SetCloser registers a cleanup function invoked by Connector.Close.
func (b *Builder) SetCloser(closer func() error) *Builder {
	b.closer = closer
	return b
}

// AddCommand registers a handler for a command name. Registering the same
// command twice is a build error, reported by Build.
func (b *Builder) AddCommand(cmd string, h Handler) *Builder {
	if _, exists := b.handlers[cmd]; exists {
		// Recorded as a duplicate and rejected at Build; the builder has
		// no error channel of its own.
		b.handlers[cmd] = nil
		return b
	}
	b.handlers[cmd] = h
	return b
}

// Build validates the configuration and returns the connector.
func (b *Builder) Build() (*Connector, error) {
	if b.name == "" {
		return nil, fmt.Errorf("connector name is required")
	}
	if len(b.handlers) == 0 {
		return nil, fmt.Errorf("at least one command handler is required")
	}
	for cmd, h := range b.handlers {
		if h == nil {
			return nil, fmt.Errorf("command %q registered more than once", cmd)
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	handlers := make(map[string]Handler, len(b.handlers))
	for cmd, h := range b.handlers {
		handlers[cmd] = h
	}

	return &Connector{
		name:     b.name,
		version:  b.version,
		logger:   logger,
		handlers: handlers,
		tracer:   otel.Tracer(instrumentationName),
		closer:   b.closer,
	}, nil
}
