package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/identitykit/genattr/rule"
	"github.com/identitykit/genattr/state"
	"github.com/identitykit/genattr/template"
	"github.com/identitykit/genattr/transform"
)

const instrumentationName = "github.com/identitykit/genattr/engine"

// Engine computes attribute values for a fixed rule set.
//
// At construction it derives a cached "effective expression" per rule: a
// unique rule whose expression never references the counter variable gets a
// counter concatenation appended once, so the collision-retry loop always
// has a way to disambiguate. The configured rule objects are never mutated,
// which keeps a rule set safe to reuse across runs.
type Engine struct {
	logger    *slog.Logger
	evaluator *template.Evaluator
	effective map[string]string

	collisionRetries metric.Int64Counter
	templateFailures metric.Int64Counter
}

// New creates an Engine for the rule set. The rule set is validated, and
// every non-uuid expression must parse. If logger is nil, slog.Default() is
// used.
func New(rules rule.Set, evaluator *template.Evaluator, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	effective := make(map[string]string, len(rules))
	for i := range rules {
		r := &rules[i]
		if r.Kind == rule.KindUUID {
			continue
		}
		expr := r.Expression
		if r.Kind == rule.KindUnique {
			hasCounter, err := evaluator.HasVariable(expr, template.CounterVariable)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.Name, err)
			}
			if !hasCounter {
				logger.Debug("appending counter reference to unique rule expression", "rule", r.Name)
				expr = expr + " + " + template.CounterVariable
			}
		}
		if _, err := evaluator.HasVariable(expr, template.CounterVariable); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		effective[r.Name] = expr
	}

	meter := otel.Meter(instrumentationName)
	collisionRetries, err := meter.Int64Counter("genattr.collision.retries",
		metric.WithDescription("Unique-value collisions that forced a regeneration"))
	if err != nil {
		return nil, fmt.Errorf("failed to create collision counter: %w", err)
	}
	templateFailures, err := meter.Int64Counter("genattr.template.failures",
		metric.WithDescription("Expressions that failed to parse or render"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	return &Engine{
		logger:           logger,
		evaluator:        evaluator,
		effective:        effective,
		collisionRetries: collisionRetries,
		templateFailures: templateFailures,
	}, nil
}

// EffectiveExpression returns the expression the engine evaluates for the
// rule, including any appended counter reference.
func (e *Engine) EffectiveExpression(r *rule.Rule) string {
	if expr, ok := e.effective[r.Name]; ok {
		return expr
	}
	return r.Expression
}

// ComputeValue derives one attribute value for one identity.
//
// attrs is the identity's mutable working attribute record: counter-kind
// rules write the drawn counter into it under the counter variable, other
// kinds clear the variable, and the expression is evaluated against it.
//
// The boolean result is false when no value could be produced: a missing
// counter supplier for a counter-kind rule, or a template failure. Both are
// logged and recoverable; the caller leaves the attribute unset.
//
// For unique and uuid kinds the computed value is checked against values and
// regenerated until it collides with nothing; the final value is recorded
// into the set.
func (e *Engine) ComputeValue(ctx context.Context, r *rule.Rule, attrs map[string]any, counter func() int, values *state.ValueSet) (string, bool) {
	switch r.Kind {
	case rule.KindUUID:
		value := uuid.NewString()
		for values.Contains(value) {
			e.collisionRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", r.Name)))
			value = uuid.NewString()
		}
		values.Record(value)
		return value, true

	case rule.KindCounter:
		if counter == nil {
			e.logger.Error("counter supplier required for counter attribute", "rule", r.Name)
			return "", false
		}
		attrs[template.CounterVariable] = transform.PadNumber(counter(), r.Digits)

	default:
		// The counter variable carries no meaning for normal and unique
		// kinds until a collision retry supplies one.
		attrs[template.CounterVariable] = ""
	}

	expr := e.EffectiveExpression(r)
	value, ok := e.render(ctx, expr, r, attrs)
	if !ok {
		return "", false
	}

	if r.Kind == rule.KindUnique {
		for ok && values.Contains(value) {
			if counter == nil {
				e.logger.Error("counter supplier required to disambiguate unique attribute", "rule", r.Name, "value", value)
				return "", false
			}
			e.collisionRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", r.Name)))
			e.logger.Debug("value already in use, regenerating", "rule", r.Name, "value", value)
			attrs[template.CounterVariable] = transform.PadNumber(counter(), r.Digits)
			value, ok = e.render(ctx, expr, r, attrs)
		}
		if !ok {
			return "", false
		}
		values.Record(value)
	}

	return value, ok
}

// render evaluates the expression and applies the rule's transformations in
// the fixed order: case, remove spaces, normalize.
func (e *Engine) render(ctx context.Context, expr string, r *rule.Rule, attrs map[string]any) (string, bool) {
	value, ok := e.evaluator.Evaluate(expr, attrs, r.MaxLength)
	if !ok {
		e.templateFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", r.Name)))
		e.logger.Error("failed to evaluate expression for attribute", "rule", r.Name)
		return "", false
	}
	return transform.Apply(value, r), true
}
