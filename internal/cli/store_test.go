package cli

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/props/pkg/persistence/middleware"
	"github.com/aretw0/props/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat(string(b), 32)))
}

func TestOpenStore_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		opts   StoreOptions
		locker bool
	}{
		{"default", StoreOptions{}, false},
		{"memory", StoreOptions{Kind: StoreMemory}, false},
		{"file", StoreOptions{Kind: StoreFile, Path: t.TempDir()}, false},
		{"redis", StoreOptions{Kind: StoreRedis, RedisAddr: mr.Addr()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := OpenStore(tt.opts)
			require.NoError(t, err)
			defer p.Close()

			assert.Equal(t, tt.locker, p.Locker != nil)
			ports.RunRecordStoreContract(t, p.Store)
		})
	}
}

func TestOpenStore_Unknown(t *testing.T) {
	_, err := OpenStore(StoreOptions{Kind: "s3"})
	assert.ErrorIs(t, err, ErrUnknownStore)
}

func TestOpenStore_Middleware(t *testing.T) {
	p, err := OpenStore(StoreOptions{
		EncryptionKey: testKey('a'),
		PIIPatterns:   []string{"(?i)password"},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Store.Save(ctx, "u1", ports.Record{"name": "ana", "password": "secret"}))

	rec, err := p.Store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", rec["name"])
	assert.Equal(t, middleware.Mask, rec["password"])
}

func TestOpenStore_PIIKeepsClassKey(t *testing.T) {
	p, err := OpenStore(StoreOptions{PIIPatterns: []string{"type"}, ClassKey: "type"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Store.Save(ctx, "u1", ports.Record{"type": "User", "blood_type": "O"}))

	rec, err := p.Store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User", rec["type"])
	assert.Equal(t, middleware.Mask, rec["blood_type"])
}

func TestOpenStore_KeyRotation(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	old, err := OpenStore(StoreOptions{Kind: StoreRedis, RedisAddr: mr.Addr(), EncryptionKey: testKey('a')})
	require.NoError(t, err)
	require.NoError(t, old.Store.Save(ctx, "r", ports.Record{"k": "v"}))
	require.NoError(t, old.Close())

	rotated, err := OpenStore(StoreOptions{
		Kind:          StoreRedis,
		RedisAddr:     mr.Addr(),
		EncryptionKey: testKey('b'),
		FallbackKeys:  []string{testKey('a')},
	})
	require.NoError(t, err)
	defer rotated.Close()

	rec, err := rotated.Store.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "v", rec["k"])
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey(testKey('k'))
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = ParseKey("not base64!")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = OpenStore(StoreOptions{EncryptionKey: testKey('a'), FallbackKeys: []string{"bad"}})
	assert.ErrorIs(t, err, ErrInvalidKey)
}
