package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRecordStoreContract(t, store)
}

func TestMemoryStore_SaveDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	rec := ports.Record{"name": "before"}
	require.NoError(t, store.Save(ctx, "r1", rec))
	rec["name"] = "after"

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "before", loaded["name"])
}

func TestMemoryStore_RejectsUnencodable(t *testing.T) {
	store := memory.NewStore()
	err := store.Save(context.Background(), "r1", ports.Record{"ch": make(chan int)})
	assert.Error(t, err)
}
