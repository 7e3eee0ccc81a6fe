package props

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Object is the result of generic deserialization: either a typed *Instance
// or an *Unresolved fallback.
type Object interface {
	// ModelName returns the registered model name, or "" when unresolved.
	ModelName() string
	object()
}

// Instance holds one value, or nothing, per field of its model.
type Instance struct {
	model  *Model
	values map[string]any
}

func (i *Instance) object() {}

// Model returns the instance's model.
func (i *Instance) Model() *Model { return i.model }

// ModelName returns the registered name of the instance's model.
func (i *Instance) ModelName() string { return i.model.name }

// Is reports whether the instance's model is m or a subtype of m.
func (i *Instance) Is(m *Model) bool {
	return i.model.IsSubtypeOf(m)
}

// Get returns the value of a field and whether it is set.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// IsSet reports whether the field currently holds a value.
func (i *Instance) IsSet(name string) bool {
	_, ok := i.values[name]
	return ok
}

// Set validates and assigns a field value. Assigning Undefined, or any value
// the field type considers unset, clears the field.
func (i *Instance) Set(name string, value any) error {
	f, ok := i.model.Field(name)
	if !ok {
		return fmt.Errorf("%s: %w: %s", i.model.name, ErrUnknownField, name)
	}
	if f.typ.IsUnset(value) {
		delete(i.values, name)
		return nil
	}
	v, err := coerce(f.typ, value)
	if err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value}
	}
	i.values[name] = v
	return nil
}

// Unset clears a field.
func (i *Instance) Unset(name string) error {
	if _, ok := i.model.Field(name); !ok {
		return fmt.Errorf("%s: %w: %s", i.model.name, ErrUnknownField, name)
	}
	delete(i.values, name)
	return nil
}

// Validate checks that every required field is set.
func (i *Instance) Validate() error {
	var errs []error
	for _, f := range i.model.fields {
		if !f.required {
			continue
		}
		if _, ok := i.values[f.name]; !ok {
			errs = append(errs, &ValidationError{Key: f.name, Reason: "required"})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Serialize converts the instance to its plain mapping using the default codec.
func (i *Instance) Serialize(opts ...SerializeOption) (map[string]any, error) {
	return DefaultCodec().Serialize(i, opts...)
}

// MarshalJSON encodes the class-tagged plain mapping of the instance.
func (i *Instance) MarshalJSON() ([]byte, error) {
	data, err := i.Serialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// Equal reports whether both instances share a model and hold equal values
// field by field.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.model != other.model {
		return false
	}
	for _, f := range i.model.fields {
		a, aok := i.values[f.name]
		b, bok := other.values[f.name]
		if aok != bok {
			return false
		}
		if aok && !cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true })) {
			return false
		}
	}
	return true
}

// String renders the instance as Model(field=value, ...) over set fields.
func (i *Instance) String() string {
	parts := make([]string, 0, len(i.values))
	for _, f := range i.model.fields {
		if v, ok := i.values[f.name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", f.name, v))
		}
	}
	return fmt.Sprintf("%s(%s)", i.model.name, strings.Join(parts, ", "))
}

// Unresolved is the generic fallback produced when the concrete model could
// not, or must not, be resolved from the data. It keeps the raw fields.
type Unresolved struct {
	// Tag is the embedded class tag, if any. It was not used to pick a type.
	Tag string `json:"tag,omitempty"`
	// Fields holds the raw plain values, class tag excluded.
	Fields map[string]any `json:"fields"`
}

func (u *Unresolved) object() {}

func (u *Unresolved) ModelName() string { return "" }

// Equal compares two instances or two unresolved values.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Instance:
		y, ok := b.(*Instance)
		return ok && x.Equal(y)
	case *Unresolved:
		y, ok := b.(*Unresolved)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return x.Tag == y.Tag && cmp.Equal(x.Fields, y.Fields)
	}
	return a == nil && b == nil
}
