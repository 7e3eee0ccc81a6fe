package dsl

import "github.com/aretw0/props/pkg/schema"

// ModelBuilder provides a fluent API for configuring a model.
type ModelBuilder struct {
	def     schema.ModelDef
	builder *Builder
}

// FieldOption configures a field definition.
type FieldOption func(*schema.FieldDef)

// Required marks the field as required.
func Required() FieldOption {
	return func(f *schema.FieldDef) {
		f.Required = true
	}
}

// Default sets the field default. It is checked against the field type when
// the model is declared.
func Default(value any) FieldOption {
	return func(f *schema.FieldDef) {
		f.Default = value
	}
}

// Describe sets the field documentation.
func Describe(doc string) FieldOption {
	return func(f *schema.FieldDef) {
		f.Doc = doc
	}
}

// Extends makes the model a subtype of parent.
func (m *ModelBuilder) Extends(parent string) *ModelBuilder {
	m.def.Extends = parent
	return m
}

// Doc sets the model documentation.
func (m *ModelBuilder) Doc(doc string) *ModelBuilder {
	m.def.Doc = doc
	return m
}

// Field appends a field. typ is a type expression as accepted by
// schema.ParseType ("int", "[Inner]", "Inner|string", ...).
func (m *ModelBuilder) Field(name, typ string, opts ...FieldOption) *ModelBuilder {
	f := schema.FieldDef{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}
	m.def.Fields = append(m.def.Fields, f)
	return m
}

// Model continues with another model of the same builder.
func (m *ModelBuilder) Model(name string) *ModelBuilder {
	return m.builder.Model(name)
}

// Build returns the underlying definition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (m *ModelBuilder) Build() schema.ModelDef {
	def := m.def
	def.Fields = append([]schema.FieldDef{}, m.def.Fields...)
	return def
}
