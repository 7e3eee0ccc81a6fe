package records_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/props"
	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/adapters/redis"
	"github.com/aretw0/props/pkg/ports"
	"github.com/aretw0/props/pkg/records"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, id string, rec ports.Record) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, id, rec)
}

func (s SlowStore) Load(ctx context.Context, id string) (ports.Record, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func fixture(t *testing.T) (*props.Codec, *props.Model, *props.Model) {
	t.Helper()
	reg := props.NewRegistry()
	counter, err := props.DeclareIn(reg, "Counter",
		props.MustField("n", props.Integer(), props.WithDefault(0)),
		props.MustField("label", props.String()),
	)
	require.NoError(t, err)
	labeled, err := counter.Extend("LabeledCounter", props.MustField("color", props.Choice("red", "blue")))
	require.NoError(t, err)
	return props.NewCodec(props.WithRegistry(reg)), counter, labeled
}

func TestManager_SaveLoad(t *testing.T) {
	codec, counter, _ := fixture(t)
	store := memory.NewStore()
	mgr := records.NewManager(store, records.WithCodec(codec))
	ctx := context.Background()

	inst := counter.MustNew(map[string]any{"n": 3, "label": "hits"})
	require.NoError(t, mgr.Save(ctx, "c1", inst))

	rec, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Counter", rec[props.DefaultClassKey])

	loaded, err := mgr.Load(ctx, "c1", counter)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(inst))

	_, err = mgr.Load(ctx, "missing", counter)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, mgr.Delete(ctx, "c1"))
	_, err = mgr.Load(ctx, "c1", counter)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestManager_LoadAny(t *testing.T) {
	codec, _, labeled := fixture(t)
	ctx := context.Background()
	store := memory.NewStore()

	inst := labeled.MustNew(map[string]any{"n": 1, "color": "red"})

	t.Run("untrusted by default", func(t *testing.T) {
		var warnings props.WarningRecorder
		mgr := records.NewManager(store, records.WithCodec(codec))
		require.NoError(t, mgr.Save(ctx, "l1", inst))

		obj, err := mgr.LoadAny(ctx, "l1", props.OnWarning(warnings.Record))
		require.NoError(t, err)

		generic, ok := obj.(*props.Unresolved)
		require.True(t, ok, "expected generic fallback, got %T", obj)
		assert.Equal(t, "LabeledCounter", generic.Tag)
		require.Equal(t, 1, warnings.Len())
		assert.Equal(t, props.ReasonUntrusted, warnings.Warnings()[0].Reason)
	})

	t.Run("trusted store", func(t *testing.T) {
		mgr := records.NewManager(store, records.WithCodec(codec), records.WithTrustedStore())
		obj, err := mgr.LoadAny(ctx, "l1")
		require.NoError(t, err)

		got, ok := obj.(*props.Instance)
		require.True(t, ok, "expected instance, got %T", obj)
		assert.Equal(t, "LabeledCounter", got.ModelName())
		assert.True(t, got.Equal(inst))
	})
}

func TestManager_LoadOrNew(t *testing.T) {
	codec, counter, _ := fixture(t)
	mgr := records.NewManager(memory.NewStore(), records.WithCodec(codec))
	ctx := context.Background()

	first, err := mgr.LoadOrNew(ctx, "c", counter, map[string]any{"label": "new"})
	require.NoError(t, err)
	n, _ := first.Get("n")
	assert.Equal(t, 0, n)

	require.NoError(t, first.Set("n", 7))
	require.NoError(t, mgr.Save(ctx, "c", first))

	again, err := mgr.LoadOrNew(ctx, "c", counter, nil)
	require.NoError(t, err)
	n, _ = again.Get("n")
	assert.Equal(t, 7, n)

	_, err = mgr.LoadOrNew(ctx, "bad", counter, map[string]any{"n": "seven"})
	assert.ErrorIs(t, err, props.ErrInvalidValue)
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	codec, counter, _ := fixture(t)
	mgr := records.NewManager(SlowStore{memory.NewStore()}, records.WithCodec(codec))
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, mgr.Save(ctx, id, counter.MustNew(nil)))

	var wg sync.WaitGroup
	concurrentWrites := 10
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, id, counter, func(inst *props.Instance) error {
				n, _ := inst.Get("n")
				return inst.Set("n", n.(int)+1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := mgr.Load(ctx, id, counter)
	require.NoError(t, err)
	n, _ := final.Get("n")
	assert.Equal(t, concurrentWrites, n, "no update may be lost")
}

func TestManager_UpdateErrorDoesNotSave(t *testing.T) {
	codec, counter, _ := fixture(t)
	mgr := records.NewManager(memory.NewStore(), records.WithCodec(codec))
	ctx := context.Background()
	require.NoError(t, mgr.Save(ctx, "c", counter.MustNew(map[string]any{"n": 1})))

	boom := errors.New("boom")
	_, err := mgr.Update(ctx, "c", counter, func(inst *props.Instance) error {
		_ = inst.Set("n", 99)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := mgr.Load(ctx, "c", counter)
	require.NoError(t, err)
	n, _ := loaded.Get("n")
	assert.Equal(t, 1, n)

	_, err = mgr.Update(ctx, "missing", counter, func(*props.Instance) error { return nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	codec, counter, _ := fixture(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, "test:")
	mgr := records.NewManager(store, records.WithCodec(codec), records.WithLocker(locker), records.WithLockTTL(time.Second))
	ctx := context.Background()

	var sawLock bool
	err = mgr.WithLock(ctx, "c", func(ctx context.Context) error {
		sawLock = mr.Exists("test:lock:c")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawLock, "distributed lock should be held inside WithLock")
	assert.False(t, mr.Exists("test:lock:c"), "distributed lock should be released afterwards")

	require.NoError(t, mgr.Save(ctx, "c", counter.MustNew(nil)))
	loaded, err := mgr.Load(ctx, "c", counter)
	require.NoError(t, err)
	assert.Equal(t, "Counter", loaded.ModelName())
}
