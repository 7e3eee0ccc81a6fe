package ports

import (
	"context"

	"github.com/aretw0/props/pkg/schema"
)

// DefinitionLoader defines where model definitions come from.
// This allows the definition source (Loam, files, memory) to be decoupled
// from declaration.
type DefinitionLoader interface {
	// Document returns every definition, sorted by model name.
	Document(ctx context.Context) (*schema.Document, error)

	// Get returns the definition of one model, or an error wrapping
	// schema.ErrUnknownModel.
	Get(ctx context.Context, name string) (schema.ModelDef, error)

	// ListModels returns the defined model names, sorted.
	// This is used for introspection tools (e.g. 'props models').
	ListModels(ctx context.Context) ([]string, error)
}
