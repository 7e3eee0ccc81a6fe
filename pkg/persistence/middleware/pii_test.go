package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/persistence/middleware"
	"github.com/aretw0/props/pkg/ports"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	// Mask keys containing "password" or "ssn"
	mw := middleware.NewPIIMiddleware([]string{"password", "ssn", "class"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	id := "pii-record"
	rec := ports.Record{
		"__class__":     "User",
		"username":      "jdoe",
		"user_password": "secret123",
		"details": map[string]any{
			"__class__":  "Details",
			"address":    "123 St",
			"ssn_number": "999-99-9999",
		},
		"history": []any{
			map[string]any{"old_password": "hunter2"},
		},
	}

	if err := secureStore.Save(ctx, id, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if rec["user_password"] != "secret123" {
		t.Error("Middleware modified the caller's record!")
	}
	if rec["details"].(map[string]any)["ssn_number"] != "999-99-9999" {
		t.Error("Middleware modified a nested record of the caller!")
	}

	stored, err := underlyingStore.Load(ctx, id)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	if stored["username"] != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if stored["__class__"] != "User" {
		t.Errorf("Class tag shouldn't be masked, got: %v", stored["__class__"])
	}
	if stored["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", stored["user_password"])
	}

	details := stored["details"].(map[string]any)
	if details["ssn_number"] != middleware.Mask {
		t.Errorf("Nested SSN should be masked, got: %v", details["ssn_number"])
	}
	if details["__class__"] != "Details" {
		t.Errorf("Nested class tag shouldn't be masked, got: %v", details["__class__"])
	}

	history := stored["history"].([]any)
	if history[0].(map[string]any)["old_password"] != middleware.Mask {
		t.Errorf("Records inside lists should be masked, got: %v", history[0])
	}
}

func TestPIIMiddleware_CustomClassKey(t *testing.T) {
	underlyingStore := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{"kind", "password"}, middleware.WithClassKey("kind"))(underlyingStore)

	ctx := context.Background()
	rec := ports.Record{
		"kind":     "User",
		"password": "secret123",
		"friend":   map[string]any{"kind": "User", "password": "hunter2"},
	}
	if err := store.Save(ctx, "u", rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx, "u")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored["kind"] != "User" {
		t.Errorf("Class tag shouldn't be masked, got: %v", stored["kind"])
	}
	if stored["password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", stored["password"])
	}
	friend := stored["friend"].(map[string]any)
	if friend["kind"] != "User" || friend["password"] != middleware.Mask {
		t.Errorf("Nested record masked incorrectly: %v", friend)
	}
}

func TestPIIMiddleware_Contract(t *testing.T) {
	store := middleware.NewPIIMiddleware([]string{"^secret$"})(memory.NewStore())
	ports.RunRecordStoreContract(t, store)
}
