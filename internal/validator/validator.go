package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/props"
)

// ValidateReachability crawls the models reachable from roots and reports
// missing roots and registered models that no root can reach.
//
// A model reaches the models named by its field types (nested instances,
// list elements, union alternatives), its parent and its direct subtypes,
// since a subtype instance is accepted wherever its parent is.
func ValidateReachability(reg *props.ModelRegistry, roots ...string) error {
	children := make(map[string][]string)
	for _, name := range reg.Names() {
		if m, ok := reg.Lookup(name); ok && m.Parent() != nil {
			parent := m.Parent().Name()
			children[parent] = append(children[parent], name)
		}
	}

	visited := make(map[string]bool)
	queue := append([]string{}, roots...)

	var errors []string

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		m, ok := reg.Lookup(currentID)
		if !ok {
			errors = append(errors, fmt.Sprintf("Missing model: '%s'", currentID))
			continue
		}

		var next []string
		if parent := m.Parent(); parent != nil {
			next = append(next, parent.Name())
		}
		next = append(next, children[currentID]...)
		for _, f := range m.Fields() {
			next = appendReferences(next, f.Type())
		}

		for _, target := range next {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, name := range reg.Names() {
		if !visited[name] {
			errors = append(errors, fmt.Sprintf("Unreachable model: '%s'", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}

func appendReferences(dst []string, t props.Type) []string {
	switch typ := t.(type) {
	case *props.InstanceType:
		return append(dst, typ.Model().Name())
	case *props.ListType:
		return appendReferences(dst, typ.Elem())
	case *props.UnionType:
		for _, alt := range typ.Alternatives() {
			dst = appendReferences(dst, alt)
		}
	}
	return dst
}
