package schema

import (
	"github.com/aretw0/props"
	"github.com/getkin/kin-openapi/openapi3"
)

const componentPrefix = "#/components/schemas/"

// OpenAPI describes the models registered in reg as OpenAPI component
// schemas, one per model, including the class tag property.
func OpenAPI(reg *props.ModelRegistry, classKey, title, version string) *openapi3.T {
	if classKey == "" {
		classKey = props.DefaultClassKey
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	g := &openapiGen{classKey: classKey, schemas: doc.Components.Schemas}
	for _, name := range reg.Names() {
		if m, ok := reg.Lookup(name); ok {
			g.model(m)
		}
	}
	return doc
}

type openapiGen struct {
	classKey string
	schemas  openapi3.Schemas
}

func (g *openapiGen) model(m *props.Model) *openapi3.SchemaRef {
	ref := componentPrefix + m.Name()
	if existing, ok := g.schemas[m.Name()]; ok {
		return openapi3.NewSchemaRef(ref, existing.Value)
	}

	s := openapi3.NewObjectSchema()
	// Register before walking fields so nested references resolve.
	g.schemas[m.Name()] = openapi3.NewSchemaRef("", s)

	s.WithProperty(g.classKey, openapi3.NewStringSchema().WithEnum(m.Name()))
	for _, f := range m.Fields() {
		prop := g.typeRef(f.Type())
		if f.Doc() != "" && prop.Ref == "" {
			prop.Value.Description = f.Doc()
		}
		if v, ok := f.Default(); ok && prop.Ref == "" {
			prop.Value.Default = v
		}
		s.WithPropertyRef(f.Name(), prop)
		if f.IsRequired() {
			s.Required = append(s.Required, f.Name())
		}
	}
	return openapi3.NewSchemaRef(ref, s)
}

func (g *openapiGen) typeRef(t props.Type) *openapi3.SchemaRef {
	switch typ := t.(type) {
	case *props.StringType:
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	case *props.IntegerType:
		return openapi3.NewSchemaRef("", openapi3.NewIntegerSchema())
	case *props.FloatType:
		return openapi3.NewSchemaRef("", openapi3.NewFloat64Schema())
	case *props.BoolType:
		return openapi3.NewSchemaRef("", openapi3.NewBoolSchema())
	case *props.UuidType:
		return openapi3.NewSchemaRef("", openapi3.NewUUIDSchema())
	case *props.DateTimeType:
		return openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
	case *props.ChoiceType:
		choices := typ.Choices()
		values := make([]any, len(choices))
		for i, c := range choices {
			values[i] = c
		}
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithEnum(values...))
	case *props.ArrayType:
		if typ.Name() == "array[int]" {
			return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(openapi3.NewIntegerSchema()))
		}
		return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(openapi3.NewFloat64Schema()))
	case *props.InstanceType:
		return g.model(typ.Model())
	case *props.ListType:
		s := openapi3.NewArraySchema()
		s.Items = g.typeRef(typ.Elem())
		return openapi3.NewSchemaRef("", s)
	case *props.UnionType:
		s := &openapi3.Schema{}
		for _, alt := range typ.Alternatives() {
			s.OneOf = append(s.OneOf, g.typeRef(alt))
		}
		return openapi3.NewSchemaRef("", s)
	default:
		return openapi3.NewSchemaRef("", &openapi3.Schema{Description: t.Name()})
	}
}
