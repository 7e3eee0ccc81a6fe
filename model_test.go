package props

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclare_Registers(t *testing.T) {
	reg := NewRegistry()
	m, err := DeclareIn(reg, "Thing", MustField("a", String()))
	require.NoError(t, err)

	got, ok := reg.Lookup("Thing")
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = reg.Lookup("thing")
	assert.False(t, ok, "lookup is case-sensitive")

	// Last declaration wins.
	m2, err := DeclareIn(reg, "Thing")
	require.NoError(t, err)
	got, _ = reg.Lookup("Thing")
	assert.Same(t, m2, got)
}

func TestDeclare_Errors(t *testing.T) {
	reg := NewRegistry()

	_, err := DeclareIn(reg, "")
	assert.ErrorIs(t, err, ErrInvalidModelName)

	_, err = DeclareIn(reg, "Dup", MustField("a", String()), MustField("a", Integer()))
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.Zero(t, reg.Len())

	_, err = NewField("", String())
	assert.Error(t, err)

	_, err = NewField("x", nil)
	assert.Error(t, err)
}

func TestExtend(t *testing.T) {
	reg := NewRegistry()
	base := mustDeclare(t, reg, "Base",
		MustField("a", Integer()),
		MustField("b", String()),
	)
	sub, err := base.Extend("Sub",
		MustField("b", Choice("x", "y")),
		MustField("c", Bool()),
	)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, f := range sub.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	f, ok := sub.Field("b")
	require.True(t, ok)
	assert.Equal(t, "choice(x,y)", f.Type().Name())

	assert.Same(t, base, sub.Parent())
	assert.True(t, sub.IsSubtypeOf(base))
	assert.False(t, base.IsSubtypeOf(sub))

	_, ok = reg.Lookup("Sub")
	assert.True(t, ok)
	assert.Same(t, reg, sub.Registry())

	// A subtype instance is accepted where the parent is declared.
	holder := mustDeclare(t, reg, "Holder", MustField("item", InstanceOf(base)))
	inst, err := holder.New(map[string]any{"item": sub.MustNew(map[string]any{"c": true})})
	require.NoError(t, err)

	codec := NewCodec(WithRegistry(reg))
	data, err := codec.Serialize(inst)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"__class__": "Holder",
		"item":      map[string]any{"__class__": "Sub", "c": true},
	}, data)

	// The declared model is the decode target; fields only Sub has are dropped.
	back, err := codec.DeserializeAs(holder, data)
	require.NoError(t, err)
	item, _ := back.Get("item")
	require.IsType(t, &Instance{}, item)
	assert.Equal(t, "Base", item.(*Instance).ModelName())
	assert.False(t, item.(*Instance).IsSet("c"))
}

func TestModel_New(t *testing.T) {
	reg := NewRegistry()
	m := mustDeclare(t, reg, "Config",
		MustField("name", String(), Required()),
		MustField("retries", Integer(), WithDefault(3)),
		MustField("tags", List(String()), WithDefaultFunc(func() any { return []any{} })),
		MustField("ratio", Float()),
	)

	inst, err := m.New(map[string]any{"name": "svc", "ratio": 1})
	require.NoError(t, err)

	v, _ := inst.Get("retries")
	assert.Equal(t, 3, v)
	v, _ = inst.Get("ratio")
	assert.Equal(t, 1.0, v)
	v, _ = inst.Get("tags")
	assert.Equal(t, []any{}, v)
	assert.NoError(t, inst.Validate())

	other := m.MustNew(nil)
	tags, _ := other.Get("tags")
	tags = append(tags.([]any), "x")
	v, _ = inst.Get("tags")
	assert.Empty(t, v, "default factories must not share state")
	assert.Len(t, tags, 1)

	err = other.Validate()
	require.Error(t, err)
	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	var vErr *ValidationError
	require.True(t, errors.As(errs[0], &vErr))
	assert.Equal(t, "name", vErr.Key)
}

func TestModel_NewAggregatesErrors(t *testing.T) {
	reg := NewRegistry()
	m := mustDeclare(t, reg, "Point", MustField("x", Integer()), MustField("y", Integer()))

	_, err := m.New(map[string]any{"x": "one", "y": 2.5, "z": 1})
	require.Error(t, err)

	errs := ValidationErrors(err)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], ErrInvalidValue)
	assert.ErrorIs(t, errs[1], ErrInvalidValue)
	assert.ErrorIs(t, errs[2], ErrUnknownField)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestWithDefault_Invalid(t *testing.T) {
	_, err := NewField("n", Integer(), WithDefault("three"))
	assert.Error(t, err)

	_, err = NewField("n", Integer(), WithDefaultFunc(nil))
	assert.Error(t, err)
}

func TestInstance_SetAndUnset(t *testing.T) {
	reg := NewRegistry()
	m := mustDeclare(t, reg, "Item", MustField("name", String()), MustField("count", Integer()))
	inst := m.MustNew(map[string]any{"name": "a", "count": 1})

	require.NoError(t, inst.Set("count", int64(5)))
	v, _ := inst.Get("count")
	assert.Equal(t, 5, v)

	require.NoError(t, inst.Set("count", Undefined))
	assert.False(t, inst.IsSet("count"))

	require.NoError(t, inst.Set("name", nil))
	assert.False(t, inst.IsSet("name"))

	err := inst.Set("count", "many")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "count", vErr.Key)

	assert.ErrorIs(t, inst.Set("missing", 1), ErrUnknownField)
	assert.ErrorIs(t, inst.Unset("missing"), ErrUnknownField)

	require.NoError(t, inst.Set("name", "b"))
	require.NoError(t, inst.Unset("name"))
	assert.False(t, inst.IsSet("name"))
}

func TestInstance_String(t *testing.T) {
	reg := NewRegistry()
	inner := mustDeclare(t, reg, "Inner", MustField("a", Integer()))
	outer := mustDeclare(t, reg, "Outer", MustField("inst", InstanceOf(inner)), MustField("note", String()))

	inst := outer.MustNew(map[string]any{"inst": map[string]any{"a": 10}})
	assert.Equal(t, "Outer(inst=Inner(a=10))", inst.String())
}

func TestEqual(t *testing.T) {
	reg := NewRegistry()
	a := mustDeclare(t, reg, "A", MustField("x", Integer()))
	b := mustDeclare(t, reg, "B", MustField("x", Integer()))

	assert.True(t, Equal(a.MustNew(map[string]any{"x": 1}), a.MustNew(map[string]any{"x": 1})))
	assert.False(t, Equal(a.MustNew(map[string]any{"x": 1}), a.MustNew(map[string]any{"x": 2})))
	assert.False(t, Equal(a.MustNew(map[string]any{"x": 1}), b.MustNew(map[string]any{"x": 1})))
	assert.False(t, Equal(a.MustNew(map[string]any{"x": 1}), a.MustNew(nil)))

	u1 := &Unresolved{Tag: "A", Fields: map[string]any{"x": 1}}
	u2 := &Unresolved{Tag: "A", Fields: map[string]any{"x": 1}}
	assert.True(t, Equal(u1, u2))
	assert.False(t, Equal(u1, a.MustNew(map[string]any{"x": 1})))
	assert.True(t, Equal(nil, nil))
}

func TestDefaultCodec(t *testing.T) {
	prev := DefaultCodec()
	t.Cleanup(func() { SetDefaultCodec(prev) })

	reg := NewRegistry()
	m := mustDeclare(t, reg, "Swapped", MustField("x", Integer()))
	SetDefaultCodec(NewCodec(WithRegistry(reg), WithClassKey("_type")))

	data, err := Serialize(m.MustNew(map[string]any{"x": 1}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_type": "Swapped", "x": 1}, data)

	obj, err := Deserialize(data, Trusted())
	require.NoError(t, err)
	assert.Equal(t, "Swapped", obj.ModelName())
}
