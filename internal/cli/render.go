package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/presentation/graph"
	"github.com/aretw0/props/internal/presentation/tui"
	"github.com/aretw0/props/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Output formats of the models command.
const (
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
	FormatMermaid  = "mermaid"
	FormatOpenAPI  = "openapi"
)

// RenderModels writes the project's models to w in the given format.
// Markdown output goes through render, which may add terminal styling.
func RenderModels(w io.Writer, p *Project, format, version string, render func(string) (string, error), highlight ...string) error {
	reg := p.Codec.Registry()

	switch format {
	case "", FormatMarkdown:
		out, err := render(tui.Catalog(p.Doc))
		if err != nil {
			return fmt.Errorf("failed to render catalog: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(schema.DescribeRegistry(reg)); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		return writeJSON(w, schema.DescribeRegistry(reg))
	case FormatMermaid:
		models := make([]*props.Model, 0, reg.Len())
		for _, name := range reg.Names() {
			if m, ok := reg.Lookup(name); ok {
				models = append(models, m)
			}
		}
		_, err := io.WriteString(w, graph.GenerateMermaid(models, &graph.Overlay{Highlight: highlight}))
		return err
	case FormatOpenAPI:
		return writeJSON(w, schema.OpenAPI(reg, p.Codec.ClassKey(), "props models", version))
	default:
		return fmt.Errorf("unknown format %q (use markdown, yaml, json, mermaid or openapi)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
