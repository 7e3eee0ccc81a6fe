package schema

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPI(t *testing.T) {
	reg := props.NewRegistry()
	inner := props.MustField("a", props.Integer(), props.Required(), props.WithDoc("int a"))
	innerModel, err := props.DeclareIn(reg, "Inner", inner, props.MustField("b", props.Float(), props.WithDefault(1.5)))
	require.NoError(t, err)
	_, err = props.DeclareIn(reg, "Outer",
		props.MustField("inst", props.InstanceOf(innerModel)),
		props.MustField("items", props.List(props.InstanceOf(innerModel))),
		props.MustField("either", props.Union(props.InstanceOf(innerModel), props.String())),
		props.MustField("kind", props.Choice("x", "y")),
		props.MustField("id", props.Uuid()),
		props.MustField("at", props.DateTime()),
		props.MustField("vec", props.Array(props.Float())),
	)
	require.NoError(t, err)

	doc := OpenAPI(reg, "", "models", "1.0.0")
	require.NotNil(t, doc.Components)

	schemas := doc.Components.Schemas
	require.Contains(t, schemas, "Inner")
	require.Contains(t, schemas, "Outer")

	in := schemas["Inner"].Value
	assert.Equal(t, []string{"a"}, in.Required)
	assert.Equal(t, []any{"Inner"}, in.Properties[props.DefaultClassKey].Value.Enum)
	assert.Equal(t, "int a", in.Properties["a"].Value.Description)
	assert.Equal(t, 1.5, in.Properties["b"].Value.Default)

	out := schemas["Outer"].Value
	assert.Equal(t, "#/components/schemas/Inner", out.Properties["inst"].Ref)
	assert.Equal(t, "#/components/schemas/Inner", out.Properties["items"].Value.Items.Ref)
	require.Len(t, out.Properties["either"].Value.OneOf, 2)
	assert.Equal(t, "#/components/schemas/Inner", out.Properties["either"].Value.OneOf[0].Ref)
	assert.Equal(t, []any{"x", "y"}, out.Properties["kind"].Value.Enum)
	assert.Equal(t, "uuid", out.Properties["id"].Value.Format)
	assert.Equal(t, "date-time", out.Properties["at"].Value.Format)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$ref":"#/components/schemas/Inner"`)
}

func TestOpenAPI_ClassKey(t *testing.T) {
	reg := props.NewRegistry()
	_, err := props.DeclareIn(reg, "A")
	require.NoError(t, err)

	doc := OpenAPI(reg, "_type", "models", "1.0.0")
	properties := doc.Components.Schemas["A"].Value.Properties
	assert.Contains(t, properties, "_type")
	assert.NotContains(t, properties, "__class__")
}
