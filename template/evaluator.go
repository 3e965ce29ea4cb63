package template

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/ext"
)

// CounterVariable is the name of the transient counter variable the engine
// maintains in the evaluation context.
const CounterVariable = "counter"

// NowVariable is the timestamp variable supplied to expressions that
// reference it. Callers may override it through the context record.
const NowVariable = "now"

// compiled is a compiled expression with the variable names it references.
type compiled struct {
	prg  cel.Program
	refs []string
}

// Evaluator compiles and evaluates rule expressions. Compiled programs are
// cached per expression text, so re-evaluating the same rule across a
// population costs one compile.
//
// The zero value is not usable; construct with New.
type Evaluator struct {
	logger   *slog.Logger
	parseEnv *cel.Env

	mu    sync.Mutex
	cache map[string]*compiled
}

// New creates an Evaluator. If logger is nil, slog.Default() is used.
func New(logger *slog.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// A declaration-free environment is enough for parsing; checking
	// happens against a per-expression environment that declares exactly
	// the referenced variables.
	parseEnv, err := cel.NewEnv(ext.Strings())
	if err != nil {
		return nil, fmt.Errorf("failed to create parse environment: %w", err)
	}

	return &Evaluator{
		logger:   logger,
		parseEnv: parseEnv,
		cache:    make(map[string]*compiled),
	}, nil
}

// Evaluate renders the expression against the context record and returns the
// rendered string. The second return value is false when the expression
// failed to parse or render, or rendered to an empty value; the failure is
// logged and the caller treats the attribute as having no value.
//
// Referenced variables missing from the context evaluate as empty strings,
// except "now" which defaults to the current time.
//
// If maxLength is positive and the rendered value is longer, the value is
// truncated. When the expression ends with a direct reference to the counter
// variable the non-counter prefix is shortened so the counter suffix
// survives in full; otherwise the value is hard-truncated, since the counter
// position inside the value is not guaranteed.
func (e *Evaluator) Evaluate(expr string, context map[string]any, maxLength int) (string, bool) {
	c, err := e.compile(expr)
	if err != nil {
		e.logger.Error("failed to compile expression", "expression", expr, "error", err)
		return "", false
	}

	input := make(map[string]any, len(c.refs))
	for _, name := range c.refs {
		if v, ok := context[name]; ok && v != nil {
			input[name] = v
			continue
		}
		if name == NowVariable {
			input[name] = time.Now()
			continue
		}
		input[name] = ""
	}

	out, _, err := c.prg.Eval(input)
	if err != nil {
		e.logger.Error("failed to render expression", "expression", expr, "error", err)
		return "", false
	}

	value := stringify(out.Value())
	if value == "" {
		e.logger.Error("expression rendered an empty value", "expression", expr)
		return "", false
	}

	if maxLength > 0 {
		value = e.truncate(expr, value, context, maxLength)
	}

	return value, true
}

// truncate caps the rendered value at maxLength characters, preserving a
// trailing counter suffix when the expression ends with one.
func (e *Evaluator) truncate(expr, value string, context map[string]any, maxLength int) string {
	runes := []rune(value)
	if len(runes) <= maxLength {
		return value
	}

	counterText, _ := context[CounterVariable].(string)
	counterRunes := []rune(counterText)

	if counterText != "" &&
		maxLength > len(counterRunes) &&
		strings.HasSuffix(value, counterText) &&
		e.EndsWithVariable(expr, CounterVariable) {
		prefix := runes[:len(runes)-len(counterRunes)]
		keep := maxLength - len(counterRunes)
		if keep > len(prefix) {
			keep = len(prefix)
		}
		return string(prefix[:keep]) + counterText
	}

	e.logger.Warn("truncating rendered value without preserving counter",
		"expression", expr,
		"maxLength", maxLength)
	return string(runes[:maxLength])
}

// HasVariable reports whether the parsed expression references the named
// variable anywhere.
func (e *Evaluator) HasVariable(expr, name string) (bool, error) {
	refs, err := e.references(expr)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref == name {
			return true, nil
		}
	}
	return false, nil
}

// EndsWithVariable reports whether the expression's rightmost operand,
// following concatenation operators, is a direct reference to the named
// variable. Used to decide whether a truncated value can keep its counter
// suffix intact.
func (e *Evaluator) EndsWithVariable(expr, name string) bool {
	parsed, iss := e.parseEnv.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return false
	}

	node := parsed.NativeRep().Expr()
	for {
		switch node.Kind() {
		case celast.IdentKind:
			return node.AsIdent() == name
		case celast.CallKind:
			call := node.AsCall()
			args := call.Args()
			if call.FunctionName() != operators.Add || len(args) == 0 {
				return false
			}
			node = args[len(args)-1]
		default:
			return false
		}
	}
}

// compile returns the cached program for the expression, compiling it on
// first use.
func (e *Evaluator) compile(expr string) (*compiled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.cache[expr]; ok {
		return c, nil
	}

	refs, err := e.referencesLocked(expr)
	if err != nil {
		return nil, err
	}

	opts := []cel.EnvOption{ext.Strings()}
	for _, name := range refs {
		if name == NowVariable {
			opts = append(opts, cel.Variable(name, cel.TimestampType))
			continue
		}
		opts = append(opts, cel.Variable(name, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}

	checked, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", iss.Err())
	}

	prg, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}

	c := &compiled{prg: prg, refs: refs}
	e.cache[expr] = c
	return c, nil
}

// references parses the expression and returns the set of referenced
// variable names in sorted order.
func (e *Evaluator) references(expr string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referencesLocked(expr)
}

func (e *Evaluator) referencesLocked(expr string) ([]string, error) {
	if c, ok := e.cache[expr]; ok {
		return c.refs, nil
	}

	parsed, iss := e.parseEnv.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", iss.Err())
	}

	seen := make(map[string]bool)
	celast.PostOrderVisit(parsed.NativeRep().Expr(), celast.NewExprVisitor(func(node celast.Expr) {
		if node.Kind() == celast.IdentKind {
			seen[node.AsIdent()] = true
		}
	}))

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs, nil
}

// stringify converts a CEL evaluation result to its string form.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
