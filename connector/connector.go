// Package connector is the host-runtime boundary: it exposes the attribute
// engine as a set of discrete, named command handlers the host drives —
// connection test, schema discovery, account listing, and single-account
// read, create, and update.
package connector

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	genattr "github.com/identitykit/genattr"
)

const instrumentationName = "github.com/identitykit/genattr/connector"

// Standard command names.
const (
	CmdTestConnection = "std:test-connection"
	CmdDiscoverSchema = "std:account:discover-schema"
	CmdAccountList    = "std:account:list"
	CmdAccountRead    = "std:account:read"
	CmdAccountCreate  = "std:account:create"
	CmdAccountUpdate  = "std:account:update"
)

// ChangeOpSet is the only change operation the connector supports in update
// requests.
const ChangeOpSet = "set"

// Change is one attribute change operation in an update request.
type Change struct {
	Op        string `json:"op"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value,omitempty"`
}

// Input is the host-supplied input for one command invocation.
type Input struct {
	// State is the persisted state blob saved by the previous list
	// operation: a flat rule-name to next-counter mapping, opaque to the
	// host.
	State map[string]any `json:"state,omitempty"`

	// Identity is the identity key for read, create, and update commands.
	Identity string `json:"identity,omitempty"`

	// Changes are the attribute change operations for update commands.
	Changes []Change `json:"changes,omitempty"`
}

// Response collects what a handler returns to the host: zero or more output
// records, streamed out as they are produced, and optionally a new
// persisted-state map.
type Response struct {
	emit  func(any) error
	state map[string]int
}

// Send streams one output record to the host.
func (r *Response) Send(v any) error {
	return r.emit(v)
}

// SaveState records the counter state the host should persist for the next
// run.
func (r *Response) SaveState(s map[string]int) {
	r.state = s
}

// Handler handles one host command.
type Handler func(ctx context.Context, in *Input, res *Response) error

// Connector dispatches host commands to registered handlers.
type Connector struct {
	name     string
	version  string
	logger   *slog.Logger
	handlers map[string]Handler
	tracer   trace.Tracer
	closer   func() error
}

// Close releases resources owned by the connector, such as a Redis state
// store. Safe to call when nothing was registered.
func (c *Connector) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Name returns the connector name.
func (c *Connector) Name() string {
	return c.name
}

// Version returns the connector version.
func (c *Connector) Version() string {
	return c.version
}

// Commands returns the registered command names.
func (c *Connector) Commands() []string {
	cmds := make([]string, 0, len(c.handlers))
	for cmd := range c.handlers {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Invoke runs the handler for a command. Output records are streamed to
// emit as the handler produces them; the returned map is the new persisted
// state if the handler saved one, nil otherwise.
func (c *Connector) Invoke(ctx context.Context, cmd string, in *Input, emit func(any) error) (map[string]int, error) {
	handler, ok := c.handlers[cmd]
	if !ok {
		return nil, genattr.NewNotFoundError("Connector.Invoke", fmt.Errorf("unknown command %q", cmd))
	}

	if in == nil {
		in = &Input{}
	}
	if emit == nil {
		emit = func(any) error { return nil }
	}

	ctx, span := c.tracer.Start(ctx, "genattr.command", trace.WithAttributes(
		attribute.String("command", cmd),
	))
	defer span.End()

	c.logger.Debug("invoking command", "command", cmd)
	res := &Response{emit: emit}
	if err := handler(ctx, in, res); err != nil {
		span.RecordError(err)
		c.logger.Error("command failed", "command", cmd, "error", err)
		return nil, err
	}
	return res.state, nil
}
