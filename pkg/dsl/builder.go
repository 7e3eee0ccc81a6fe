package dsl

import (
	"fmt"

	"github.com/aretw0/props"
	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/schema"
)

// Builder manages the definition construction.
type Builder struct {
	order  []string
	models map[string]*ModelBuilder
}

// New creates a new definition builder.
func New() *Builder {
	return &Builder{
		models: make(map[string]*ModelBuilder),
	}
}

// Model starts the definition of a model.
// If the model already exists, it returns the existing builder.
func (b *Builder) Model(name string) *ModelBuilder {
	if mb, ok := b.models[name]; ok {
		return mb
	}
	mb := &ModelBuilder{
		def: schema.ModelDef{
			Name:   name,
			Fields: []schema.FieldDef{},
		},
		builder: b,
	}
	b.models[name] = mb
	b.order = append(b.order, name)
	return mb
}

// Document returns the definitions in the order they were started.
func (b *Builder) Document() *schema.Document {
	doc := &schema.Document{Models: make([]schema.ModelDef, 0, len(b.order))}
	for _, name := range b.order {
		doc.Models = append(doc.Models, b.models[name].Build())
	}
	return doc
}

// Declare declares the built models into reg.
func (b *Builder) Declare(reg *props.ModelRegistry) ([]*props.Model, error) {
	return schema.Declare(reg, b.Document())
}

// Build compiles the definitions into an in-memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	loader, err := memory.NewLoader(b.Document().Models...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}

	return loader, nil
}
