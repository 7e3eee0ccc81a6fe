package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/presentation/graph"
)

func models(t *testing.T) []*props.Model {
	t.Helper()
	reg := props.NewRegistry()
	inner, err := props.DeclareIn(reg, "Inner", props.MustField("a", props.Integer(), props.Required()))
	if err != nil {
		t.Fatal(err)
	}
	special, err := inner.Extend("Special", props.MustField("c", props.Choice("x", "y")))
	if err != nil {
		t.Fatal(err)
	}
	outer, err := props.DeclareIn(reg, "my-outer",
		props.MustField("inst", props.InstanceOf(inner)),
		props.MustField("items", props.List(props.InstanceOf(inner))),
		props.MustField("either", props.Union(props.InstanceOf(special), props.String())),
	)
	if err != nil {
		t.Fatal(err)
	}
	return []*props.Model{inner, special, outer}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		overlay     *graph.Overlay
		contains    []string
		notContains []string
	}{
		{
			name: "Class Bodies",
			contains: []string{
				"classDiagram\n",
				"    class Inner {\n        *int a\n    }\n",
				"    class Special {\n        +choice(x y) c\n    }\n",
				"        +List~Inner~ items\n",
				"        +Special or string either\n",
			},
			notContains: []string{
				// inherited fields stay on the parent
				"class Special {\n        *int a",
			},
		},
		{
			name: "Relations",
			contains: []string{
				"    Inner <|-- Special\n",
				"    my_outer --> Inner : inst\n",
				"    my_outer --> \"*\" Inner : items\n",
				"    my_outer ..> Special : either\n",
			},
		},
		{
			name:    "Overlay",
			overlay: &graph.Overlay{Highlight: []string{"Inner", "Inner", "my-outer"}},
			contains: []string{
				"classDef highlighted",
				"    class Inner:::highlighted\n",
				"    class my_outer:::highlighted\n",
			},
		},
		{
			name:        "No Overlay",
			notContains: []string{"classDef"},
		},
	}

	ms := models(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(ms, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, got)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class Inner:::highlighted") != 1 {
				t.Errorf("highlight should be deduplicated, got:\n%s", got)
			}
		})
	}
}
