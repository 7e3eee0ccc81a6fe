package props

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type defines the contract every field kind implements.
// The engine only orchestrates these calls; how a kind validates and converts a
// single value is up to the implementation.
type Type interface {
	// Name returns the type expression (e.g. "string", "[int]", "Inner|string").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// IsUnset reports whether value counts as "no value" for this type.
	IsUnset(value any) bool
	// ToPlain converts a field value into its plain mapping representation.
	ToPlain(value any, enc *Encoder) (any, error)
	// FromPlain reconstructs a field value from its plain representation.
	FromPlain(plain any, dec *Decoder) (any, error)
}

// Coercer is implemented by types that normalise values on assignment.
type Coercer interface {
	Coerce(value any) (any, error)
}

// Defaulter is implemented by types that provide a value when a field has no
// explicit default.
type Defaulter interface {
	Default() any
}

type undefined struct{}

func (undefined) String() string { return "<undefined>" }

// Undefined marks a field as unset. Assigning it with Instance.Set clears the field.
var Undefined any = undefined{}

func isUndefined(value any) bool {
	if value == nil || value == Undefined {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// --- Scalars ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) IsUnset(value any) bool { return isUndefined(value) }

func (t *StringType) ToPlain(value any, _ *Encoder) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *StringType) FromPlain(plain any, _ *Decoder) (any, error) {
	if err := t.Validate(plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// IntegerType validates integer values. Values are stored as int.
type IntegerType struct{}

func (t *IntegerType) Name() string { return "int" }

func (t *IntegerType) Validate(value any) error {
	_, err := toInt(value)
	return err
}

func (t *IntegerType) Coerce(value any) (any, error) { return toInt(value) }

func (t *IntegerType) IsUnset(value any) bool { return isUndefined(value) }

func (t *IntegerType) ToPlain(value any, _ *Encoder) (any, error) { return toInt(value) }

func (t *IntegerType) FromPlain(plain any, _ *Decoder) (any, error) { return toInt(plain) }

// FloatType validates floating-point values. Values are stored as float64.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	_, err := toFloat(value)
	return err
}

func (t *FloatType) Coerce(value any) (any, error) { return toFloat(value) }

func (t *FloatType) IsUnset(value any) bool { return isUndefined(value) }

func (t *FloatType) ToPlain(value any, _ *Encoder) (any, error) { return toFloat(value) }

func (t *FloatType) FromPlain(plain any, _ *Decoder) (any, error) { return toFloat(plain) }

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) IsUnset(value any) bool { return isUndefined(value) }

func (t *BoolType) ToPlain(value any, _ *Encoder) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *BoolType) FromPlain(plain any, _ *Decoder) (any, error) {
	if err := t.Validate(plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// ChoiceType accepts one string out of a fixed set.
type ChoiceType struct {
	choices []string
}

func (t *ChoiceType) Name() string {
	return fmt.Sprintf("choice(%s)", strings.Join(t.choices, ","))
}

// Choices returns the accepted values in declaration order.
func (t *ChoiceType) Choices() []string {
	return append([]string(nil), t.choices...)
}

func (t *ChoiceType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, c := range t.choices {
		if c == s {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %v", s, t.choices)
}

func (t *ChoiceType) IsUnset(value any) bool { return isUndefined(value) }

func (t *ChoiceType) ToPlain(value any, _ *Encoder) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *ChoiceType) FromPlain(plain any, _ *Decoder) (any, error) {
	if err := t.Validate(plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// UuidType holds a uuid.UUID. Fields of this type default to a random (v4)
// identifier and serialize to the canonical string form.
type UuidType struct{}

func (t *UuidType) Name() string { return "uuid" }

func (t *UuidType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *UuidType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q: %w", v, err)
		}
		return id, nil
	default:
		return nil, fmt.Errorf("expected uuid, got %T", value)
	}
}

func (t *UuidType) Default() any { return uuid.New() }

func (t *UuidType) IsUnset(value any) bool { return isUndefined(value) }

func (t *UuidType) ToPlain(value any, _ *Encoder) (any, error) {
	id, err := t.Coerce(value)
	if err != nil {
		return nil, err
	}
	return id.(uuid.UUID).String(), nil
}

func (t *UuidType) FromPlain(plain any, _ *Decoder) (any, error) {
	if _, ok := plain.(string); !ok {
		return nil, fmt.Errorf("expected uuid string, got %T", plain)
	}
	return t.Coerce(plain)
}

// DateTimeType holds a time.Time, serialized as an RFC 3339 string in UTC.
type DateTimeType struct{}

func (t *DateTimeType) Name() string { return "datetime" }

func (t *DateTimeType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *DateTimeType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime %q: %w", v, err)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("expected datetime, got %T", value)
	}
}

func (t *DateTimeType) IsUnset(value any) bool {
	if isUndefined(value) {
		return true
	}
	ts, ok := value.(time.Time)
	return ok && ts.IsZero()
}

func (t *DateTimeType) ToPlain(value any, _ *Encoder) (any, error) {
	ts, err := t.Coerce(value)
	if err != nil {
		return nil, err
	}
	return ts.(time.Time).UTC().Format(time.RFC3339Nano), nil
}

func (t *DateTimeType) FromPlain(plain any, _ *Decoder) (any, error) {
	if _, ok := plain.(string); !ok {
		return nil, fmt.Errorf("expected datetime string, got %T", plain)
	}
	return t.Coerce(plain)
}

// --- Factory Functions ---

// String creates a string type.
func String() Type { return &StringType{} }

// Integer creates an integer type.
func Integer() Type { return &IntegerType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Choice creates a type accepting only the given strings.
func Choice(choices ...string) Type {
	return &ChoiceType{choices: append([]string(nil), choices...)}
}

// Uuid creates a UUID type.
func Uuid() Type { return &UuidType{} }

// DateTime creates a timestamp type.
func DateTime() Type { return &DateTimeType{} }

// --- numeric coercion ---

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int", v)
		}
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int", v)
		}
		return int(v), nil
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected int, got %q", v.String())
		}
		return wholeFloat(f)
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}

// wholeFloat accepts floats that are whole numbers (from JSON unmarshaling)
// and fit in an int64.
func wholeFloat(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected int, got float (not a whole number)")
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %g overflows int", f)
	}
	return int(f), nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected float, got %q", v.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected float, got %T", value)
	}
}
