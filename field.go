package props

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Hook replaces a field's default conversion in one direction.
type Hook func(any) (any, error)

// Field describes one named slot of a model: its type, whether it is required,
// its default and optional conversion overrides.
// A Field is immutable once created.
type Field struct {
	name         string
	typ          Type
	doc          string
	required     bool
	def          any
	hasDefault   bool
	defaultFn    func() any
	serializer   Hook
	deserializer Hook
}

// FieldOption configures a Field at definition time.
type FieldOption func(*Field) error

// NewField defines a field. Misconfiguration, such as a hook override that is
// not callable, fails here rather than on first use.
func NewField(name string, typ Type, opts ...FieldOption) (*Field, error) {
	if name == "" {
		return nil, fmt.Errorf("field name is required")
	}
	if typ == nil {
		return nil, fmt.Errorf("field %q: type is nil", name)
	}

	f := &Field{name: name, typ: typ}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
	}
	return f, nil
}

// MustField is like NewField but panics on error.
// It is intended for package-level model declarations.
func MustField(name string, typ Type, opts ...FieldOption) *Field {
	f, err := NewField(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Required marks the field as required by Instance.Validate.
func Required() FieldOption {
	return func(f *Field) error {
		f.required = true
		return nil
	}
}

// WithDoc attaches a human-readable description.
func WithDoc(doc string) FieldOption {
	return func(f *Field) error {
		f.doc = doc
		return nil
	}
}

// WithDefault sets the value assigned by Model.New when the field is not given.
// The value is validated against the field type.
func WithDefault(value any) FieldOption {
	return func(f *Field) error {
		v, err := coerce(f.typ, value)
		if err != nil {
			return fmt.Errorf("invalid default: %w", err)
		}
		f.def, f.hasDefault = v, true
		return nil
	}
}

// WithDefaultFunc sets a factory called by Model.New for every new instance.
// Use it for mutable defaults such as lists.
func WithDefaultFunc(fn func() any) FieldOption {
	return func(f *Field) error {
		if fn == nil {
			return errors.New("default factory is nil")
		}
		f.defaultFn = fn
		return nil
	}
}

// WithSerializer overrides the default conversion to a plain value.
// fn must be a function of one argument returning a value, optionally followed
// by an error; a nil fn leaves the default conversion in place.
func WithSerializer(fn any) FieldOption {
	return func(f *Field) error {
		h, err := adaptHook(fn)
		if err != nil {
			return fmt.Errorf("serializer: %w", err)
		}
		f.serializer = h
		return nil
	}
}

// WithDeserializer overrides the default reconstruction from a plain value.
// It accepts the same function shapes as WithSerializer.
func WithDeserializer(fn any) FieldOption {
	return func(f *Field) error {
		h, err := adaptHook(fn)
		if err != nil {
			return fmt.Errorf("deserializer: %w", err)
		}
		f.deserializer = h
		return nil
	}
}

func (f *Field) Name() string { return f.name }

func (f *Field) Type() Type { return f.typ }

func (f *Field) Doc() string { return f.doc }

func (f *Field) IsRequired() bool { return f.required }

func (f *Field) HasSerializer() bool { return f.serializer != nil }

func (f *Field) HasDeserializer() bool { return f.deserializer != nil }

// Default returns the static default set with WithDefault, if any.
func (f *Field) Default() (any, bool) { return f.def, f.hasDefault }

// defaultValue returns the value a new instance starts with, or Undefined.
func (f *Field) defaultValue() any {
	switch {
	case f.defaultFn != nil:
		return f.defaultFn()
	case f.hasDefault:
		return f.def
	}
	if d, ok := f.typ.(Defaulter); ok {
		return d.Default()
	}
	return Undefined
}

// coerce normalises and validates a value for typ.
func coerce(typ Type, value any) (any, error) {
	if c, ok := typ.(Coercer); ok {
		v, err := c.Coerce(value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := typ.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// adaptHook turns fn into a Hook, rejecting anything that is not a
// single-argument function.
func adaptHook(fn any) (Hook, error) {
	switch h := fn.(type) {
	case nil:
		return nil, nil
	case Hook:
		return h, nil
	case func(any) (any, error):
		return h, nil
	case func(any) any:
		return func(v any) (any, error) { return h(v), nil }, nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %T", ErrHookNotCallable, fn)
	}
	if rv.IsNil() {
		return nil, nil
	}
	rt := rv.Type()
	if rt.NumIn() != 1 || rt.IsVariadic() {
		return nil, fmt.Errorf("%w: %s must take exactly one argument", ErrHookNotCallable, rt)
	}
	switch rt.NumOut() {
	case 1:
	case 2:
		if rt.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result of %s must be an error", ErrHookNotCallable, rt)
		}
	default:
		return nil, fmt.Errorf("%w: %s must return a value", ErrHookNotCallable, rt)
	}

	in := rt.In(0)
	return func(v any) (any, error) {
		arg, err := hookArg(in, v)
		if err != nil {
			return nil, err
		}
		out := rv.Call([]reflect.Value{arg})
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}

func hookArg(in reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(in), nil
	}
	val := reflect.ValueOf(v)
	if val.Type().AssignableTo(in) {
		return val, nil
	}
	_, isNumber := v.(json.Number)
	if (isNumber || isNumericKind(val.Kind())) && isNumericKind(in.Kind()) {
		return numericArg(in, v)
	}
	return reflect.Value{}, fmt.Errorf("%w: hook expects %s, got %T", ErrInvalidValue, in, v)
}

// numericArg converts v to the numeric type in, refusing conversions that
// would lose the fraction or overflow.
func numericArg(in reflect.Type, v any) (reflect.Value, error) {
	out := reflect.New(in).Elem()
	switch in.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(v)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: hook expects %s: %w", ErrInvalidValue, in, err)
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%w: %g overflows %s", ErrInvalidValue, f, in)
		}
		out.SetFloat(f)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u, ok := v.(uint64); ok {
			if out.OverflowUint(u) {
				return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, u, in)
			}
			out.SetUint(u)
			break
		}
		i, err := toInt(v)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: hook expects %s: %w", ErrInvalidValue, in, err)
		}
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, i, in)
		}
		out.SetUint(uint64(i))
	default:
		i, err := toInt(v)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: hook expects %s: %w", ErrInvalidValue, in, err)
		}
		if out.OverflowInt(int64(i)) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, i, in)
		}
		out.SetInt(int64(i))
	}
	return out, nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
