package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/props/pkg/schema"
)

// Catalog renders model definitions as a markdown document, one section per
// model with a table of its own fields.
func Catalog(doc *schema.Document) string {
	var sb strings.Builder
	sb.WriteString("# Models\n")

	for _, def := range doc.Models {
		fmt.Fprintf(&sb, "\n## %s\n\n", def.Name)
		if def.Extends != "" {
			fmt.Fprintf(&sb, "Extends **%s**.\n\n", def.Extends)
		}
		if def.Doc != "" {
			sb.WriteString(def.Doc + "\n\n")
		}
		if len(def.Fields) == 0 {
			sb.WriteString("_No fields._\n")
			continue
		}

		sb.WriteString("| Field | Type | Required | Default | Description |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, f := range def.Fields {
			required := ""
			if f.Required {
				required = "yes"
			}
			dflt := ""
			if f.Default != nil {
				dflt = fmt.Sprintf("`%v`", f.Default)
			}
			fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %s |\n",
				f.Name, escapeCell(f.Type), required, dflt, escapeCell(f.Doc))
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
