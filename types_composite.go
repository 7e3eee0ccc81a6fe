package props

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// ArrayType holds a numeric array, stored as []int or []float64 depending on
// its element type, and serialized as a list of numbers.
type ArrayType struct {
	integer bool
}

func (t *ArrayType) Name() string {
	if t.integer {
		return "array[int]"
	}
	return "array[float]"
}

func (t *ArrayType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *ArrayType) Coerce(value any) (any, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("expected numeric array, got %T", value)
	}
	if t.integer {
		out := make([]int, len(items))
		for i, item := range items {
			n, err := toInt(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func (t *ArrayType) IsUnset(value any) bool { return isUndefined(value) }

func (t *ArrayType) ToPlain(value any, _ *Encoder) (any, error) {
	arr, err := t.Coerce(value)
	if err != nil {
		return nil, err
	}
	items, _ := asSequence(arr)
	return items, nil
}

func (t *ArrayType) FromPlain(plain any, _ *Decoder) (any, error) {
	return t.Coerce(plain)
}

// Array creates a numeric array type. elem must be Integer() or Float();
// anything else yields a float array.
func Array(elem Type) Type {
	_, integer := elem.(*IntegerType)
	return &ArrayType{integer: integer}
}

// InstanceType holds a nested model instance.
type InstanceType struct {
	model *Model
}

func (t *InstanceType) Name() string { return t.model.Name() }

// Model returns the declared model of the field.
func (t *InstanceType) Model() *Model { return t.model }

func (t *InstanceType) Validate(value any) error {
	inst, ok := value.(*Instance)
	if !ok || inst == nil {
		return fmt.Errorf("expected instance of %s, got %T", t.model.Name(), value)
	}
	if !inst.Is(t.model) {
		return fmt.Errorf("expected instance of %s, got %s", t.model.Name(), inst.ModelName())
	}
	return nil
}

// Coerce accepts an instance or a mapping of field values used to construct one.
func (t *InstanceType) Coerce(value any) (any, error) {
	if _, ok := value.(*Instance); ok {
		return value, t.Validate(value)
	}
	values, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("expected instance of %s, got %T", t.model.Name(), value)
	}
	return t.model.New(values)
}

func (t *InstanceType) IsUnset(value any) bool { return isUndefined(value) }

func (t *InstanceType) ToPlain(value any, enc *Encoder) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return enc.EncodeInstance(value.(*Instance))
}

// FromPlain reconstructs the nested instance using the declared model as the
// explicit target; embedded class tags are not consulted.
func (t *InstanceType) FromPlain(plain any, dec *Decoder) (any, error) {
	return dec.DecodeInstance(t.model, plain)
}

// InstanceOf creates a type holding instances of model (or its subtypes).
func InstanceOf(model *Model) Type {
	return &InstanceType{model: model}
}

// ListType holds an ordered sequence of elements of one type, stored as []any.
type ListType struct {
	elem Type
}

func (t *ListType) Name() string {
	return fmt.Sprintf("[%s]", t.elem.Name())
}

// Elem returns the element type.
func (t *ListType) Elem() Type { return t.elem }

func (t *ListType) Validate(value any) error {
	items, ok := asSequence(value)
	if !ok {
		return fmt.Errorf("expected list, got %T", value)
	}
	for i, item := range items {
		if err := t.elem.Validate(item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *ListType) Coerce(value any) (any, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", value)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if c, ok := t.elem.(Coercer); ok {
			v, err := c.Coerce(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			item = v
		}
		if err := t.elem.Validate(item); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func (t *ListType) IsUnset(value any) bool { return isUndefined(value) }

func (t *ListType) ToPlain(value any, enc *Encoder) (any, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", value)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if t.elem.IsUnset(item) {
			continue
		}
		p, err := t.elem.ToPlain(item, enc)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func (t *ListType) FromPlain(plain any, dec *Decoder) (any, error) {
	items, ok := asSequence(plain)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", plain)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		v, err := t.elem.FromPlain(item, dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// List creates a list type for elements of the given type.
func List(elem Type) Type {
	return &ListType{elem: elem}
}

// UnionType accepts a value of any of its alternatives, tried in order.
type UnionType struct {
	alts []Type
}

func (t *UnionType) Name() string {
	names := make([]string, len(t.alts))
	for i, alt := range t.alts {
		names[i] = alt.Name()
	}
	return strings.Join(names, "|")
}

// Alternatives returns the candidate types in declaration order.
func (t *UnionType) Alternatives() []Type {
	return append([]Type(nil), t.alts...)
}

func (t *UnionType) Validate(value any) error {
	if t.match(value) == nil {
		return fmt.Errorf("%w: %s for %T", ErrNoUnionMatch, t.Name(), value)
	}
	return nil
}

func (t *UnionType) match(value any) Type {
	for _, alt := range t.alts {
		if alt.Validate(value) == nil {
			return alt
		}
	}
	return nil
}

func (t *UnionType) Coerce(value any) (any, error) {
	for _, alt := range t.alts {
		candidate := value
		if c, ok := alt.(Coercer); ok {
			v, err := c.Coerce(value)
			if err != nil {
				continue
			}
			candidate = v
		}
		if alt.Validate(candidate) == nil {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: %s for %T", ErrNoUnionMatch, t.Name(), value)
}

func (t *UnionType) IsUnset(value any) bool { return isUndefined(value) }

// ToPlain delegates to the first alternative that accepts the value.
func (t *UnionType) ToPlain(value any, enc *Encoder) (any, error) {
	alt := t.match(value)
	if alt == nil {
		return nil, fmt.Errorf("%w: %s for %T", ErrNoUnionMatch, t.Name(), value)
	}
	return alt.ToPlain(value, enc)
}

// FromPlain picks the alternative to reconstruct with. A model alternative
// named by the nested class tag is tried first; otherwise the first
// alternative whose value converts back to the same plain value wins, falling
// back to the first alternative that decodes at all.
func (t *UnionType) FromPlain(plain any, dec *Decoder) (any, error) {
	if alt := t.tagged(plain, dec.codec.classKey); alt != nil {
		if v, err := alt.FromPlain(plain, dec); err == nil && alt.Validate(v) == nil {
			return v, nil
		}
	}

	var (
		fallback any
		found    bool
		firstErr error
	)
	for _, alt := range t.alts {
		v, err := alt.FromPlain(plain, dec)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if alt.Validate(v) != nil {
			continue
		}
		if dec.lossless(alt, v, plain) {
			return v, nil
		}
		if !found {
			fallback, found = v, true
		}
	}
	if found {
		return fallback, nil
	}
	if firstErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoUnionMatch, t.Name(), firstErr)
	}
	return nil, fmt.Errorf("%w: %s for %T", ErrNoUnionMatch, t.Name(), plain)
}

func (t *UnionType) tagged(plain any, classKey string) Type {
	data, ok := asMapping(plain)
	if !ok {
		return nil
	}
	tag, _ := data[classKey].(string)
	if tag == "" {
		return nil
	}
	for _, alt := range t.alts {
		if it, ok := alt.(*InstanceType); ok && it.model.Name() == tag {
			return alt
		}
	}
	return nil
}

// Union creates a type accepting any of the given alternatives.
func Union(alts ...Type) Type {
	return &UnionType{alts: append([]Type(nil), alts...)}
}

// --- plain value helpers ---

// asMapping accepts any map with string keys.
func asMapping(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSequence accepts any slice or array except byte strings.
func asSequence(value any) ([]any, bool) {
	switch s := value.(type) {
	case []any:
		return s, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// normalizePlain strips class tags and widens numbers so that plain values from
// different sources (Go literals, JSON with UseNumber, YAML) compare equal.
func normalizePlain(value any, classKey string) any {
	if m, ok := asMapping(value); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			if k == classKey {
				continue
			}
			out[k] = normalizePlain(v, classKey)
		}
		return out
	}
	if _, isStr := value.(string); !isStr {
		if f, err := toFloat(value); err == nil {
			return f
		}
	}
	if s, ok := asSequence(value); ok {
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = normalizePlain(v, classKey)
		}
		return out
	}
	return value
}

func plainEqual(a, b any, classKey string) bool {
	return cmp.Equal(normalizePlain(a, classKey), normalizePlain(b, classKey))
}
