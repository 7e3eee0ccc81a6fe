package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by RecordStore.Load when no record exists for an ID.
var ErrNotFound = errors.New("record not found")

// Record is a serialized instance: the plain mapping produced by
// props.Serialize, class tag included.
type Record = map[string]any

// RecordStore persists serialized instances under string IDs.
// Implementations must return copies: mutating a loaded Record never changes
// what is stored.
type RecordStore interface {
	// Save persists the record for the given ID, replacing any previous one.
	Save(ctx context.Context, id string, rec Record) error

	// Load retrieves the record for the given ID.
	// Returns ErrNotFound if the record does not exist.
	Load(ctx context.Context, id string) (Record, error)

	// Delete removes the record for the given ID. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored records.
	List(ctx context.Context) ([]string, error)
}
