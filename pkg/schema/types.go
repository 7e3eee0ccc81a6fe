package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/props"
)

// ParseType converts a type expression to a props.Type.
// Supported expressions:
//
//	string, int, float, bool, uuid, datetime
//	array, array[int], array[float]
//	choice(a,b,...)
//	[T]      list of T
//	A|B      union, tried left to right
//	Name     instance of a model already declared in reg
func ParseType(expr string, reg *props.ModelRegistry) (props.Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty type expression", ErrUnsupportedType)
	}

	alts, err := splitTopLevel(expr, '|')
	if err != nil {
		return nil, err
	}
	if len(alts) > 1 {
		types := make([]props.Type, len(alts))
		for i, alt := range alts {
			t, err := ParseType(alt, reg)
			if err != nil {
				return nil, err
			}
			types[i] = t
		}
		return props.Union(types...), nil
	}

	// Handle list types: [string], [Inner], etc.
	if len(expr) > 2 && expr[0] == '[' && expr[len(expr)-1] == ']' {
		elem, err := ParseType(expr[1:len(expr)-1], reg)
		if err != nil {
			return nil, err
		}
		return props.List(elem), nil
	}

	if strings.HasPrefix(expr, "choice(") && strings.HasSuffix(expr, ")") {
		inner := expr[len("choice(") : len(expr)-1]
		var choices []string
		for _, c := range strings.Split(inner, ",") {
			if c = strings.TrimSpace(c); c != "" {
				choices = append(choices, c)
			}
		}
		if len(choices) == 0 {
			return nil, fmt.Errorf("%w: %s has no choices", ErrUnsupportedType, expr)
		}
		return props.Choice(choices...), nil
	}

	switch expr {
	case "string":
		return props.String(), nil
	case "int", "integer":
		return props.Integer(), nil
	case "float":
		return props.Float(), nil
	case "bool":
		return props.Bool(), nil
	case "uuid":
		return props.Uuid(), nil
	case "datetime":
		return props.DateTime(), nil
	case "array", "array[float]":
		return props.Array(props.Float()), nil
	case "array[int]":
		return props.Array(props.Integer()), nil
	}

	if !isIdentifier(expr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, expr)
	}
	if reg != nil {
		if m, ok := reg.Lookup(expr); ok {
			return props.InstanceOf(m), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, expr)
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// parentheses.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q in %s", ErrUnsupportedType, s[i], s)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in %s", ErrUnsupportedType, s)
	}
	return append(parts, s[start:]), nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r == '.',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
