package tests

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/props/pkg/ports"
	"github.com/aretw0/props/pkg/schema"
)

// DefinitionLoaderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.DefinitionLoader. want holds the definitions
// the loader was set up with.
func DefinitionLoaderContractTest(t *testing.T, loader ports.DefinitionLoader, want []schema.ModelDef) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for _, expected := range want {
			def, err := loader.Get(ctx, expected.Name)
			if err != nil {
				t.Fatalf("unexpected error getting model %s: %v", expected.Name, err)
			}
			if !reflect.DeepEqual(def, expected) {
				t.Errorf("definition mismatch for %s. got %+v, want %+v", expected.Name, def, expected)
			}
		}
	})

	// 2. Test Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := loader.Get(ctx, "NonExistentModel")
		if !errors.Is(err, schema.ErrUnknownModel) {
			t.Errorf("expected ErrUnknownModel for non-existent model, got %v", err)
		}
	})

	// 3. Test ListModels
	t.Run("ListModels", func(t *testing.T) {
		names, err := loader.ListModels(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing models: %v", err)
		}

		if len(names) != len(want) {
			t.Errorf("expected %d models, got %d", len(want), len(names))
		}

		for i := 1; i < len(names); i++ {
			if names[i-1] >= names[i] {
				t.Errorf("model names not sorted: %v", names)
				break
			}
		}

		// Verify all expected names are present
		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for _, def := range want {
			if !lookup[def.Name] {
				t.Errorf("model %s missing from list", def.Name)
			}
		}
	})

	// 4. Test Document
	t.Run("Document", func(t *testing.T) {
		doc, err := loader.Document(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading document: %v", err)
		}
		if len(doc.Models) != len(want) {
			t.Fatalf("expected %d definitions, got %d", len(want), len(doc.Models))
		}
	})
}
