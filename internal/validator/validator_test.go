package validator

import (
	"testing"

	"github.com/aretw0/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *props.ModelRegistry {
	t.Helper()
	reg := props.NewRegistry()
	inner, err := props.DeclareIn(reg, "Inner", props.MustField("a", props.Integer()))
	require.NoError(t, err)
	tag, err := props.DeclareIn(reg, "Tag", props.MustField("v", props.String()))
	require.NoError(t, err)
	_, err = props.DeclareIn(reg, "Outer",
		props.MustField("inst", props.InstanceOf(inner)),
		props.MustField("tags", props.List(props.Union(props.InstanceOf(tag), props.String()))),
	)
	require.NoError(t, err)
	_, err = inner.Extend("Special", props.MustField("c", props.String()))
	require.NoError(t, err)
	_, err = props.DeclareIn(reg, "Orphan")
	require.NoError(t, err)
	return reg
}

func TestValidateReachability(t *testing.T) {
	reg := newRegistry(t)

	t.Run("all reached", func(t *testing.T) {
		assert.NoError(t, ValidateReachability(reg, "Outer", "Orphan"))
	})

	t.Run("unreachable", func(t *testing.T) {
		err := ValidateReachability(reg, "Outer")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "found 1 errors")
		assert.Contains(t, err.Error(), "Unreachable model: 'Orphan'")
	})

	t.Run("subtypes and parents", func(t *testing.T) {
		err := ValidateReachability(reg, "Special")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "'Inner'")
		assert.Contains(t, err.Error(), "'Outer'")
	})

	t.Run("missing root", func(t *testing.T) {
		err := ValidateReachability(reg, "Outer", "Orphan", "Ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing model: 'Ghost'")
	})
}
