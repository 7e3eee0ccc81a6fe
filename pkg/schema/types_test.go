package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/props"
)

func TestParseType(t *testing.T) {
	reg := props.NewRegistry()
	if _, err := props.DeclareIn(reg, "Inner", props.MustField("a", props.Integer())); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input    string
		wantName string
		wantErr  error
	}{
		{"string", "string", nil},
		{"int", "int", nil},
		{"integer", "int", nil},
		{"float", "float", nil},
		{"bool", "bool", nil},
		{"uuid", "uuid", nil},
		{"datetime", "datetime", nil},
		{"array", "array[float]", nil},
		{"array[int]", "array[int]", nil},
		{"choice(a, b)", "choice(a,b)", nil},
		{"[string]", "[string]", nil},
		{"[[int]]", "[[int]]", nil},
		{" Inner ", "Inner", nil},
		{"[Inner]", "[Inner]", nil},
		{"Inner|string", "Inner|string", nil},
		{"[Inner|string]|int", "[Inner|string]|int", nil},
		{"Missing", "", ErrUnknownModel},
		{"[Missing]", "", ErrUnknownModel},
		{"", "", ErrUnsupportedType},
		{"[int", "", ErrUnsupportedType},
		{"int]", "", ErrUnsupportedType},
		{"choice()", "", ErrUnsupportedType},
		{"map<string>", "", ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input, reg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseType(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) unexpected error: %v", tt.input, err)
			}
			if got.Name() != tt.wantName {
				t.Errorf("ParseType(%q).Name() = %q, want %q", tt.input, got.Name(), tt.wantName)
			}
		})
	}
}

func TestParseType_NilRegistry(t *testing.T) {
	if _, err := ParseType("Inner", nil); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("ParseType(Inner, nil) error = %v, want ErrUnknownModel", err)
	}
	if _, err := ParseType("[int]", nil); err != nil {
		t.Errorf("ParseType([int], nil) unexpected error: %v", err)
	}
}
