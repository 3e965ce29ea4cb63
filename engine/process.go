package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/identitykit/genattr/rule"
	"github.com/identitykit/genattr/state"
	"github.com/identitykit/genattr/types"
)

// Scope selects which existing accounts seed the uniqueness tracker before
// a population run.
type Scope string

const (
	// ScopeSource seeds from every existing account on the source,
	// regardless of whether its identity appears in the current search
	// results. Collisions are avoided globally. This is the default.
	ScopeSource Scope = "source"

	// ScopePopulation seeds only from accounts whose identities are part
	// of the current population. Values held by accounts outside the
	// search result may be reused.
	ScopePopulation Scope = "population"
)

// IsValid returns true if the scope is a recognized value. The empty string
// is accepted and treated as ScopeSource.
func (s Scope) IsValid() bool {
	switch s {
	case "", ScopeSource, ScopePopulation:
		return true
	default:
		return false
	}
}

// ExistingAccounts maps identity ids to the attribute maps of their current
// accounts on the source.
type ExistingAccounts map[string]map[string]any

// Processor runs the rule set over an entire identity population.
type Processor struct {
	logger *slog.Logger
	engine *Engine
	rules  rule.Set
	scope  Scope

	tracer    trace.Tracer
	processed metric.Int64Counter
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithUniquenessScope sets the uniqueness pre-seeding scope.
func WithUniquenessScope(s Scope) ProcessorOption {
	return func(p *Processor) {
		p.scope = s
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a population processor over the engine's rule set.
func NewProcessor(eng *Engine, rules rule.Set, opts ...ProcessorOption) (*Processor, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}

	p := &Processor{
		logger: eng.logger,
		engine: eng,
		rules:  rules,
		scope:  ScopeSource,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.scope.IsValid() {
		return nil, fmt.Errorf("unknown uniqueness scope %q", p.scope)
	}
	if p.scope == "" {
		p.scope = ScopeSource
	}

	meter := otel.Meter(instrumentationName)
	processed, err := meter.Int64Counter("genattr.identities.processed",
		metric.WithDescription("Identities processed by population runs"))
	if err != nil {
		return nil, fmt.Errorf("failed to create processed counter: %w", err)
	}
	p.processed = processed

	return p, nil
}

// Run processes the population in order and returns the counter state to
// persist.
//
// Accounts are handed to emit one at a time as they are assembled; the full
// output is never buffered here. Uniqueness is the only guaranteed
// invariant across the run: which identity receives which disambiguated
// value depends on iteration order.
func (p *Processor) Run(ctx context.Context, identities []*types.Identity, existing ExistingAccounts, seed map[string]int, emit func(types.Account) error) (map[string]int, error) {
	runID := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "genattr.population.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("population.size", len(identities)),
		attribute.String("uniqueness.scope", string(p.scope)),
	))
	defer span.End()

	logger := p.logger.With("run", runID)
	logger.Debug("starting population run", "identities", len(identities), "accounts", len(existing))

	counters := state.NewCounters(seed, logger)
	tracker := state.NewTracker()

	p.seedTracker(tracker, identities, existing)

	// Refresh resets happen once per run, before any identity is
	// processed: refreshed counter sequences restart from counterStart
	// (unless persisted state already carries them) and refreshed unique
	// attributes discard their pre-collected seed.
	for i := range p.rules {
		r := &p.rules[i]
		if !r.Refresh {
			continue
		}
		switch r.Kind {
		case rule.KindCounter:
			logger.Debug("resetting counter for refreshed attribute", "rule", r.Name)
			counters.InitIfAbsent(r.Name, r.Start())
		case rule.KindUnique:
			logger.Debug("resetting uniqueness values for refreshed attribute", "rule", r.Name)
			tracker.Reset(r.Name)
		}
	}

	counterFor := func(r *rule.Rule) func() int {
		switch r.Kind {
		case rule.KindCounter:
			return counters.Persistent(r.Name, r.Start())
		case rule.KindUnique, rule.KindUUID:
			return state.EphemeralCounter()
		default:
			return nil
		}
	}
	valuesFor := func(r *rule.Rule) *state.ValueSet {
		return tracker.Get(r.Name)
	}

	for _, identity := range identities {
		account, err := p.engine.Assemble(ctx, p.rules, identity, existing[identity.ID], counterFor, valuesFor)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "population run aborted")
			return nil, err
		}

		logger.Debug("emitting account", "account", account.ID())
		if err := emit(account); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "account emit failed")
			return nil, fmt.Errorf("failed to emit account %s: %w", account.ID(), err)
		}
		p.processed.Add(ctx, 1)
	}

	newState := counters.Snapshot()
	logger.Debug("population run complete", "counters", len(newState))
	return newState, nil
}

// seedTracker pre-collects the values currently in use for every unique
// attribute, honoring the configured scope.
func (p *Processor) seedTracker(tracker *state.Tracker, identities []*types.Identity, existing ExistingAccounts) {
	var inPopulation map[string]bool
	if p.scope == ScopePopulation {
		inPopulation = make(map[string]bool, len(identities))
		for _, identity := range identities {
			inPopulation[identity.ID] = true
		}
	}

	for _, r := range p.rules.Unique() {
		var values []string
		for identityID, attrs := range existing {
			if inPopulation != nil && !inPopulation[identityID] {
				continue
			}
			if v, ok := attrs[r.Name].(string); ok && v != "" {
				values = append(values, v)
			}
		}
		p.logger.Debug("seeded uniqueness values", "rule", r.Name, "values", len(values))
		tracker.Seed(r.Name, values)
	}
}
