package genattr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common connector error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMissingIdentityAttributes indicates an identity carries no attribute
	// record to template against. This is fatal for the whole operation:
	// there is no partial-success mode for a population run.
	ErrMissingIdentityAttributes = errors.New("identity has no attributes")

	// ErrMissingCounter indicates a counter-kind rule was invoked without a
	// counter supplier (for example on the read path, where no persisted
	// state context exists). The attribute is skipped, not the operation.
	ErrMissingCounter = errors.New("counter supplier required")

	// ErrUnsupportedChange indicates an update request carried a change
	// operation other than "set". The whole update call fails.
	ErrUnsupportedChange = errors.New("unsupported change operation")

	// ErrSourceNotFound indicates the configured source could not be
	// resolved at initialization.
	ErrSourceNotFound = errors.New("source not found")

	// ErrIdentityNotFound indicates the requested identity does not exist
	// in the identity directory.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInvalidConfig indicates the provided configuration is invalid or
	// incomplete. Surfaced before any processing begins.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindConfiguration represents errors related to connector configuration.
	KindConfiguration = "configuration"

	// KindNotFound represents errors where a resource was not found.
	KindNotFound = "not_found"

	// KindTemplate represents expression parse or render failures.
	KindTemplate = "template"

	// KindState represents counter-state persistence failures.
	KindState = "state"

	// KindUnsupported represents requests the connector refuses to perform.
	KindUnsupported = "unsupported"

	// KindExecution represents errors that occur during an operation.
	KindExecution = "execution"

	// KindNetwork represents errors talking to the identity directory.
	KindNetwork = "network"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "Processor.Run", "Connector.Update").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include rule names, identity ids, or other debugging
	// information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("genattr: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("genattr: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("genattr: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is an Error with matching Kind
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new Error with the provided context added.
// This is useful for attaching rule names and identity ids to errors.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Err: err}
}

// NewTemplateError creates a new Error with KindTemplate.
func NewTemplateError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindTemplate, Err: err}
}

// NewStateError creates a new Error with KindState.
func NewStateError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindState, Err: err}
}

// NewUnsupportedError creates a new Error with KindUnsupported.
func NewUnsupportedError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindUnsupported, Err: err}
}

// NewExecutionError creates a new Error with KindExecution.
func NewExecutionError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindExecution, Err: err}
}

// NewNetworkError creates a new Error with KindNetwork.
func NewNetworkError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Err: err}
}
