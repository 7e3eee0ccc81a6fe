package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for malformed type expressions.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrUnknownModel is returned when a type expression names a model that is
	// not declared (yet) in the target registry.
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnsupportedFormat is returned for definition files that are neither YAML nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	// ErrDuplicateModel is returned when a document defines a model name twice.
	ErrDuplicateModel = errors.New("duplicate model")
)

// DefinitionError locates a failure inside a definition document.
type DefinitionError struct {
	Model string // Model name
	Field string // Field name, empty for model-level failures
	Err   error
}

func (e *DefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("model %q: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("model %q: field %q: %v", e.Model, e.Field, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }
