package props

import (
	"errors"
	"fmt"
)

var (
	// ErrHookNotCallable is returned at field definition time when a serializer or
	// deserializer override is not a single-argument function.
	ErrHookNotCallable = errors.New("hook override is not callable")

	// ErrNotMapping is returned when deserialization input is not a mapping with string keys.
	ErrNotMapping = errors.New("input is not a mapping")

	// ErrUnknownField is returned when accessing a field the model does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrDuplicateField is returned when a model declares the same field name twice.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrInvalidModelName is returned when a model is declared without a name.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidValue is the cause of every field validation failure.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoUnionMatch is returned when no union alternative accepts a value.
	ErrNoUnionMatch = errors.New("no union alternative matches")

	// ErrInvalidJSON is returned when JSON input cannot be decoded.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrMaxDepth is returned when a model graph nests deeper than the codec allows.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
