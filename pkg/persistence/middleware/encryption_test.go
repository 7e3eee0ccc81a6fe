package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/persistence/middleware"
	"github.com/aretw0/props/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	id := "test-record"
	rec := ports.Record{"__class__": "Secret", "secret": "my-secret-sauce"}

	require.NoError(t, secureStore.Save(ctx, id, rec))

	stored, err := underlyingStore.Load(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, stored, "secret")
	assert.NotContains(t, stored, "__class__", "class tags are hidden too")
	assert.Contains(t, stored, middleware.EnvelopeKey)

	loaded, err := secureStore.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	id := "rotation-record"
	require.NoError(t, secureStoreOld.Save(ctx, id, ports.Record{"data": "encrypted-with-old-key"}))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, id)
	require.NoError(t, err, "Load with rotated key failed")
	assert.Equal(t, "encrypted-with-old-key", loaded["data"])

	// Saving again re-encrypts with the new key only.
	loaded["data"] = "encrypted-with-new-key"
	require.NoError(t, secureStoreNew.Save(ctx, id, loaded))

	_, err = secureStoreOld.Load(ctx, id)
	assert.ErrorIs(t, err, middleware.ErrDecrypt)
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)

	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "plain", ports.Record{"__class__": "A"}))

	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)

	_, err = secureStore.Load(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunRecordStoreContract(t, store)
}

func TestChain(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware([]string{"password"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "r", ports.Record{"password": "x", "name": "n"}))

	stored, err := underlyingStore.Load(ctx, "r")
	require.NoError(t, err)
	assert.Contains(t, stored, middleware.EnvelopeKey)

	loaded, err := store.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, ports.Record{"password": middleware.Mask, "name": "n"}, loaded)
}
