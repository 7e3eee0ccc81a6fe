package props

import (
	"fmt"
	"sort"

	"github.com/aretw0/props/pkg/registry"
)

// ModelRegistry maps registered model names to their declarations.
type ModelRegistry = registry.Registry[*Model]

// DefaultRegistry is the process-wide registry that Declare populates.
var DefaultRegistry = registry.New[*Model]()

// NewRegistry creates an empty model registry, for isolating groups of models.
func NewRegistry() *ModelRegistry {
	return registry.New[*Model]()
}

// Model is a named, ordered collection of fields forming one schema.
type Model struct {
	name     string
	parent   *Model
	fields   []*Field
	index    map[string]int
	registry *registry.Registry[*Model]
}

// Declare defines a model and registers it in DefaultRegistry.
// Declaring a name again replaces the earlier registration.
func Declare(name string, fields ...*Field) (*Model, error) {
	return DeclareIn(DefaultRegistry, name, fields...)
}

// DeclareIn defines a model and registers it in reg.
func DeclareIn(reg *ModelRegistry, name string, fields ...*Field) (*Model, error) {
	return declare(reg, name, nil, fields)
}

// MustDeclare is like Declare but panics on error.
func MustDeclare(name string, fields ...*Field) *Model {
	m, err := Declare(name, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Extend declares a subtype of m that inherits its fields. A field with the
// same name as an inherited one replaces it in place; other fields are appended.
// The subtype is registered in the same registry as m.
func (m *Model) Extend(name string, fields ...*Field) (*Model, error) {
	return declare(m.registry, name, m, fields)
}

// MustExtend is like Extend but panics on error.
func (m *Model) MustExtend(name string, fields ...*Field) *Model {
	sub, err := m.Extend(name, fields...)
	if err != nil {
		panic(err)
	}
	return sub
}

func declare(reg *ModelRegistry, name string, parent *Model, fields []*Field) (*Model, error) {
	if name == "" {
		return nil, ErrInvalidModelName
	}
	if reg == nil {
		return nil, fmt.Errorf("model %s: registry is nil", name)
	}

	m := &Model{
		name:     name,
		parent:   parent,
		index:    make(map[string]int),
		registry: reg,
	}
	if parent != nil {
		m.fields = append(m.fields, parent.fields...)
		for k, v := range parent.index {
			m.index[k] = v
		}
	}

	declared := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("model %s: field %d is nil", name, i)
		}
		if declared[f.name] {
			return nil, fmt.Errorf("model %s: %w: %s", name, ErrDuplicateField, f.name)
		}
		declared[f.name] = true

		if pos, inherited := m.index[f.name]; inherited {
			m.fields[pos] = f
			continue
		}
		m.index[f.name] = len(m.fields)
		m.fields = append(m.fields, f)
	}

	reg.Register(name, m)
	return m, nil
}

// Name returns the registered name of the model.
func (m *Model) Name() string { return m.name }

func (m *Model) String() string { return m.name }

// Parent returns the model m extends, or nil.
func (m *Model) Parent() *Model { return m.parent }

// Registry returns the registry the model was declared in.
func (m *Model) Registry() *ModelRegistry { return m.registry }

// Fields returns the fields in declaration order, inherited fields first.
func (m *Model) Fields() []*Field {
	return append([]*Field(nil), m.fields...)
}

// Field returns the field with the given name.
func (m *Model) Field(name string) (*Field, bool) {
	pos, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.fields[pos], true
}

// IsSubtypeOf reports whether m is other or extends it, directly or not.
func (m *Model) IsSubtypeOf(other *Model) bool {
	for cur := m; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// New creates an instance, applying defaults and then the given values.
// Validation failures of individual values are reported together.
func (m *Model) New(values map[string]any) (*Instance, error) {
	inst := m.empty()
	for _, f := range m.fields {
		if v := f.defaultValue(); !f.typ.IsUnset(v) {
			inst.values[f.name] = v
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := inst.Set(k, values[k]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return inst, nil
}

// MustNew is like New but panics on error.
func (m *Model) MustNew(values map[string]any) *Instance {
	inst, err := m.New(values)
	if err != nil {
		panic(err)
	}
	return inst
}

// Deserialize reconstructs an instance of m from data using the default codec.
// The caller has committed to m, so any embedded class tag is ignored and no
// trust is required.
func (m *Model) Deserialize(data any) (*Instance, error) {
	return DefaultCodec().DeserializeAs(m, data)
}

func (m *Model) empty() *Instance {
	return &Instance{model: m, values: make(map[string]any, len(m.fields))}
}
