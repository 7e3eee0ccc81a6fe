package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/props/pkg/schema"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
type Loader struct {
	models map[string]schema.ModelDef
}

// NewLoader creates a new in-memory Loader from model definitions.
func NewLoader(defs ...schema.ModelDef) (*Loader, error) {
	models := make(map[string]schema.ModelDef, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.New("model definition missing name")
		}
		if _, ok := models[def.Name]; ok {
			return nil, fmt.Errorf("%w: %s", schema.ErrDuplicateModel, def.Name)
		}
		if def.Fields == nil {
			def.Fields = []schema.FieldDef{}
		}
		models[def.Name] = def
	}
	return &Loader{models: models}, nil
}

// Document returns all definitions, sorted by name.
func (l *Loader) Document(ctx context.Context) (*schema.Document, error) {
	names, _ := l.ListModels(ctx)
	doc := &schema.Document{Models: make([]schema.ModelDef, 0, len(names))}
	for _, name := range names {
		doc.Models = append(doc.Models, l.models[name])
	}
	return doc, nil
}

// Get retrieves the definition of a model by name.
func (l *Loader) Get(ctx context.Context, name string) (schema.ModelDef, error) {
	def, ok := l.models[name]
	if !ok {
		return schema.ModelDef{}, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name)
	}
	return def, nil
}

// ListModels returns all defined model names.
func (l *Loader) ListModels(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.models))
	for k := range l.models {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
