package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/props/pkg/schema"
)

// Loader reads model definitions from a Loam repository.
//
// Each document defines one model. Markdown documents carry the definition in
// their frontmatter and the model documentation in their body:
//
//	---
//	extends: Inner
//	fields:
//	  - {name: c, type: "choice(x,y)"}
//	---
//	A special kind of Inner.
//
// The model name defaults to the document ID without its extension.
type Loader struct {
	Repo *loam.TypedRepository[schema.ModelDef]
}

// New creates a Loam adapter.
func New(repo *loam.TypedRepository[schema.ModelDef]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve definitions path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
		loam.WithVersioning(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions repository: %w", err)
	}
	return New(loam.NewTypedRepository[schema.ModelDef](repo)), nil
}

// Document lists every model definition of the repository, sorted by name.
// Two documents defining the same model name are an error.
func (l *Loader) Document(ctx context.Context) (*schema.Document, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := &schema.Document{Models: make([]schema.ModelDef, 0, len(docs))}
	for _, listed := range docs {
		// List only carries cached metadata; the body holds the model doc.
		doc, err := l.Repo.Get(ctx, listed.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", listed.ID, err)
		}
		def := normalize(listed.ID, doc.Data, doc.Content)

		if existing, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("collision detected: model '%s' is defined in both '%s' and '%s'", def.Name, existing, listed.ID)
		}
		seen[def.Name] = listed.ID
		out.Models = append(out.Models, def)
	}

	sort.Slice(out.Models, func(i, j int) bool {
		return out.Models[i].Name < out.Models[j].Name
	})
	return out, nil
}

// Get returns the definition of the named model.
func (l *Loader) Get(ctx context.Context, name string) (schema.ModelDef, error) {
	doc, err := l.Document(ctx)
	if err != nil {
		return schema.ModelDef{}, err
	}
	for _, def := range doc.Models {
		if def.Name == name {
			return def, nil
		}
	}
	return schema.ModelDef{}, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name)
}

// ListModels returns the model names defined in the repository.
func (l *Loader) ListModels(ctx context.Context) ([]string, error) {
	doc, err := l.Document(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(doc.Models))
	for i, def := range doc.Models {
		names[i] = def.Name
	}
	return names, nil
}

func normalize(id string, def schema.ModelDef, content string) schema.ModelDef {
	if def.Name == "" {
		def.Name = trimExtension(filepath.Base(id))
	}
	if def.Doc == "" {
		def.Doc = strings.TrimSpace(content)
	}
	if def.Fields == nil {
		def.Fields = []schema.FieldDef{}
	}
	return def
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}
