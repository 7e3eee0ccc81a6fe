package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/props"
)

// Overlay marks models to emphasise on the diagram.
type Overlay struct {
	Highlight []string
}

// GenerateMermaid produces a Mermaid class diagram of the given models.
// Each model lists the fields it declares itself; inherited fields are shown
// on the parent. Relations:
//   - Parent <|-- Child for extension
//   - A --> B : field for a nested instance
//   - A --> "*" B : field for a list of instances
//   - A ..> B : field for a union alternative
func GenerateMermaid(models []*props.Model, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, m := range models {
		safeID := sanitizeMermaidID(m.Name())
		parent := m.Parent()

		fmt.Fprintf(&sb, "    class %s {\n", safeID)
		for _, f := range ownFields(m) {
			marker := "+"
			if f.IsRequired() {
				marker = "*"
			}
			fmt.Fprintf(&sb, "        %s%s %s\n", marker, memberType(f.Type()), f.Name())
		}
		sb.WriteString("    }\n")

		if parent != nil {
			fmt.Fprintf(&sb, "    %s <|-- %s\n", sanitizeMermaidID(parent.Name()), safeID)
		}
		for _, f := range ownFields(m) {
			writeRelations(&sb, safeID, f.Name(), f.Type(), "-->", "")
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef highlighted fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, name := range overlay.Highlight {
			safeID := sanitizeMermaidID(name)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s:::highlighted\n", safeID)
		}
	}

	return sb.String()
}

func ownFields(m *props.Model) []*props.Field {
	parent := m.Parent()
	var own []*props.Field
	for _, f := range m.Fields() {
		if parent != nil {
			if pf, ok := parent.Field(f.Name()); ok && pf == f {
				continue
			}
		}
		own = append(own, f)
	}
	return own
}

func writeRelations(sb *strings.Builder, from, label string, t props.Type, arrow, cardinality string) {
	switch typ := t.(type) {
	case *props.InstanceType:
		to := sanitizeMermaidID(typ.Model().Name())
		if cardinality != "" {
			fmt.Fprintf(sb, "    %s %s %q %s : %s\n", from, arrow, cardinality, to, label)
			return
		}
		fmt.Fprintf(sb, "    %s %s %s : %s\n", from, arrow, to, label)
	case *props.ListType:
		writeRelations(sb, from, label, typ.Elem(), arrow, "*")
	case *props.UnionType:
		for _, alt := range typ.Alternatives() {
			writeRelations(sb, from, label, alt, "..>", cardinality)
		}
	}
}

// memberType renders a type name in a form Mermaid accepts inside a class body.
func memberType(t props.Type) string {
	r := strings.NewReplacer("[", "List~", "]", "~", "|", " or ", ",", " ")
	return r.Replace(t.Name())
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
