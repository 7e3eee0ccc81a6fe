package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore
// implementation adheres to the interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	id := "contract-test-record-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := Record{
			"__class__": "Contract",
			"name":      "bar",
			"count":     42,
			"ratio":     0.5,
			"nested":    map[string]any{"__class__": "Inner", "a": []any{1, "two"}},
		}

		err := store.Save(ctx, id, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Contract", loaded["__class__"])
		assert.Equal(t, "bar", loaded["name"])
		// Numbers come back as json.Number so integers keep their kind.
		assert.Equal(t, json.Number("42"), loaded["count"])
		assert.Equal(t, json.Number("0.5"), loaded["ratio"])

		nested, ok := loaded["nested"].(map[string]any)
		require.True(t, ok, "nested mappings should load as map[string]any")
		assert.Equal(t, "Inner", nested["__class__"])
		assert.Equal(t, []any{json.Number("1"), "two"}, nested["a"])
	})

	t.Run("Loaded Record Is A Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded["name"] = "changed"

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "bar", again["name"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, id, Record{"__class__": "Contract"})
		require.NoError(t, err)

		err = store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "Load after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, id1, Record{"n": 1}))
		require.NoError(t, store.Save(ctx, id2, Record{"n": 2}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
