package state

import "log/slog"

// Counters is the in-run counter state store: a mapping from attribute name
// to the next integer in that attribute's persistent sequence. It is loaded
// once from persisted state at the start of a list operation, mutated in
// memory as persistent counters are drawn, and serialized back at the end of
// the same operation.
//
// Not safe for concurrent use; the engine guarantees sequential access.
type Counters struct {
	logger *slog.Logger
	values map[string]int
}

// NewCounters creates a counter store seeded from persisted state. A nil
// seed yields an empty store. If logger is nil, slog.Default() is used.
func NewCounters(seed map[string]int, logger *slog.Logger) *Counters {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counters{
		logger: logger,
		values: copyCounters(seed),
	}
}

// Persistent returns a supplier for the named attribute's persistent
// sequence. Each call reads the current stored value (defaulting to start if
// absent), advances the stored value by one, and returns the pre-increment
// value — the first call yields start.
func (c *Counters) Persistent(name string, start int) func() int {
	c.logger.Debug("creating persistent counter supplier", "name", name, "start", start)
	return func() int {
		current, ok := c.values[name]
		if !ok {
			current = start
		}
		c.values[name] = current + 1
		c.logger.Debug("persistent counter advanced", "name", name, "next", current+1)
		return current
	}
}

// InitIfAbsent sets the stored value for name to start only if no value is
// present. Used when a refresh reset forces a counter attribute to restart
// its sequence at the beginning of a population pass.
func (c *Counters) InitIfAbsent(name string, start int) {
	if _, ok := c.values[name]; !ok {
		c.values[name] = start
	}
}

// Snapshot returns the counter state as a name-to-next-value map for
// persistence.
func (c *Counters) Snapshot() map[string]int {
	return copyCounters(c.values)
}

// EphemeralCounter returns an independent counter closure starting at zero
// and returning the post-increment value — the first call yields 1. It
// never touches persisted state; collision-retry loops for unique and uuid
// attributes draw from it and discard it.
func EphemeralCounter() func() int {
	counter := 0
	return func() int {
		counter++
		return counter
	}
}
