package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/props"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Document is a set of model definitions.
type Document struct {
	Models []ModelDef `json:"models" yaml:"models" mapstructure:"models"`
}

// ModelDef defines one model.
// It uses "mapstructure" tags so it can be decoded from any generic mapping
// (YAML, JSON, Markdown frontmatter).
type ModelDef struct {
	Name    string     `json:"name" yaml:"name" mapstructure:"name"`
	Extends string     `json:"extends,omitempty" yaml:"extends,omitempty" mapstructure:"extends"`
	Doc     string     `json:"doc,omitempty" yaml:"doc,omitempty" mapstructure:"doc"`
	Fields  []FieldDef `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// FieldDef defines one field of a model.
type FieldDef struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Doc      string `json:"doc,omitempty" yaml:"doc,omitempty" mapstructure:"doc"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// Format identifies the syntax of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json" // JSON with comments and trailing commas is accepted
)

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads a definition document from disk.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions: %w", err)
	}
	defer f.Close()

	doc, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load reads a definition document in the given format.
func Load(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	var raw map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return Decode(raw)
}

// Decode converts a generic mapping into a Document. Unknown keys are rejected
// so that typos in definitions do not go unnoticed.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid definitions: %w", err)
	}
	return &doc, nil
}

// Declare declares every model of the document in reg and returns them in
// document order. Models may reference each other in any order; references
// are resolved once the referenced model has been declared.
func Declare(reg *props.ModelRegistry, doc *Document) ([]*props.Model, error) {
	seen := make(map[string]bool, len(doc.Models))
	for _, def := range doc.Models {
		if def.Name == "" {
			return nil, &DefinitionError{Err: props.ErrInvalidModelName}
		}
		if seen[def.Name] {
			return nil, &DefinitionError{Model: def.Name, Err: ErrDuplicateModel}
		}
		seen[def.Name] = true
	}

	declared := make(map[string]*props.Model, len(doc.Models))
	pending := append([]ModelDef(nil), doc.Models...)
	for len(pending) > 0 {
		var (
			next    []ModelDef
			lastErr error
		)
		for _, def := range pending {
			m, err := declareModel(reg, def, seen, declared)
			if err != nil {
				if !errors.Is(err, ErrUnknownModel) {
					return nil, err
				}
				next, lastErr = append(next, def), err
				continue
			}
			declared[def.Name] = m
		}
		if len(next) == len(pending) {
			// No progress: a reference is missing or cyclic.
			return nil, lastErr
		}
		pending = next
	}

	models := make([]*props.Model, len(doc.Models))
	for i, def := range doc.Models {
		models[i] = declared[def.Name]
	}
	return models, nil
}

// declareModel declares one model. References to models defined in the same
// document must already be declared; stale registry entries are not used for them.
func declareModel(reg *props.ModelRegistry, def ModelDef, inDoc map[string]bool, declared map[string]*props.Model) (*props.Model, error) {
	scope := reg
	if len(declared) < len(inDoc) {
		scope = pendingScope(reg, inDoc, declared)
	}

	fields := make([]*props.Field, 0, len(def.Fields))
	for _, fd := range def.Fields {
		f, err := buildField(fd, scope)
		if err != nil {
			return nil, &DefinitionError{Model: def.Name, Field: fd.Name, Err: err}
		}
		fields = append(fields, f)
	}

	if def.Extends == "" {
		m, err := props.DeclareIn(reg, def.Name, fields...)
		if err != nil {
			return nil, &DefinitionError{Model: def.Name, Err: err}
		}
		return m, nil
	}

	parent, ok := scope.Lookup(def.Extends)
	if !ok {
		return nil, &DefinitionError{Model: def.Name, Err: fmt.Errorf("%w: %s", ErrUnknownModel, def.Extends)}
	}
	if parent.Registry() != reg {
		return nil, &DefinitionError{Model: def.Name, Err: fmt.Errorf("parent %s belongs to another registry", def.Extends)}
	}
	m, err := parent.Extend(def.Name, fields...)
	if err != nil {
		return nil, &DefinitionError{Model: def.Name, Err: err}
	}
	return m, nil
}

// pendingScope hides registry entries for document models that are not
// declared yet, so that a previous declaration with the same name is not
// picked up by mistake.
func pendingScope(reg *props.ModelRegistry, inDoc map[string]bool, declared map[string]*props.Model) *props.ModelRegistry {
	scope := props.NewRegistry()
	for _, name := range reg.Names() {
		if inDoc[name] {
			if _, ok := declared[name]; !ok {
				continue
			}
		}
		if m, ok := reg.Lookup(name); ok {
			scope.Register(name, m)
		}
	}
	return scope
}

func buildField(fd FieldDef, reg *props.ModelRegistry) (*props.Field, error) {
	typ, err := ParseType(fd.Type, reg)
	if err != nil {
		return nil, err
	}

	var opts []props.FieldOption
	if fd.Required {
		opts = append(opts, props.Required())
	}
	if fd.Doc != "" {
		opts = append(opts, props.WithDoc(fd.Doc))
	}
	if fd.Default != nil {
		opts = append(opts, props.WithDefault(fd.Default))
	}
	return props.NewField(fd.Name, typ, opts...)
}
