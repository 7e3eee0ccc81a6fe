package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/logging"
	"github.com/aretw0/props/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if its holder dies.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager stores and retrieves model instances through a RecordStore,
// serializing access per record ID.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.RecordStore
	codec *props.Codec

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-ID locks

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	trusted bool
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks (default DefaultLockTTL).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCodec sets the codec used to convert instances (default props.DefaultCodec()).
func WithCodec(codec *props.Codec) Option {
	return func(m *Manager) {
		m.codec = codec
	}
}

// WithTrustedStore lets LoadAny honour the class tags of stored records.
// Only enable it when nothing but this process writes to the store.
func WithTrustedStore() Option {
	return func(m *Manager) {
		m.trusted = true
	}
}

// NewManager creates a new Manager on top of the given store.
func NewManager(store ports.RecordStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.codec == nil {
		m.codec = props.DefaultCodec()
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Save serializes inst, class tags included, and stores it under id.
func (m *Manager) Save(ctx context.Context, id string, inst *props.Instance) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.save(ctx, id, inst)
	})
}

func (m *Manager) save(ctx context.Context, id string, inst *props.Instance) error {
	rec, err := m.codec.Serialize(inst)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s: %w", id, err)
	}
	return m.store.Save(ctx, id, rec)
}

// Load retrieves the record stored under id as an instance of model.
// The stored class tag is not consulted.
func (m *Manager) Load(ctx context.Context, id string, model *props.Model) (*props.Instance, error) {
	var inst *props.Instance
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		inst, err = m.load(ctx, id, model)
		return err
	})
	return inst, err
}

func (m *Manager) load(ctx context.Context, id string, model *props.Model) (*props.Instance, error) {
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	inst, err := m.codec.DeserializeAs(model, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize record %s: %w", id, err)
	}
	return inst, nil
}

// LoadAny retrieves the record stored under id without a caller-specified
// model. Unless the manager was created WithTrustedStore, or opts say
// otherwise, the result is a *props.Unresolved and a warning is emitted.
func (m *Manager) LoadAny(ctx context.Context, id string, opts ...props.DecodeOption) (props.Object, error) {
	var obj props.Object
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		rec, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		all := append([]props.DecodeOption{props.WithTrust(m.trusted)}, opts...)
		obj, err = m.codec.Deserialize(rec, all...)
		if err != nil {
			return fmt.Errorf("failed to deserialize record %s: %w", id, err)
		}
		return nil
	})
	return obj, err
}

// LoadOrNew loads the record stored under id as model, or creates, stores and
// returns model.New(values) if there is none.
func (m *Manager) LoadOrNew(ctx context.Context, id string, model *props.Model, values map[string]any) (*props.Instance, error) {
	var inst *props.Instance
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		inst, err = m.load(ctx, id, model)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("failed to check record existence: %w", err)
		}

		inst, err = model.New(values)
		if err != nil {
			return err
		}
		// Persist immediately to reserve the ID.
		if err := m.save(ctx, id, inst); err != nil {
			return fmt.Errorf("failed to initialize record: %w", err)
		}
		return nil
	})
	return inst, err
}

// Update loads the record under id as model, applies fn and stores the result,
// all under the record lock. Nothing is stored if fn fails.
func (m *Manager) Update(ctx context.Context, id string, model *props.Model, fn func(*props.Instance) error) (*props.Instance, error) {
	var inst *props.Instance
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		inst, err = m.load(ctx, id, model)
		if err != nil {
			return err
		}
		if err := fn(inst); err != nil {
			return err
		}
		return m.save(ctx, id, inst)
	})
	return inst, err
}

// Delete removes the record from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying record store.
func (m *Manager) Store() ports.RecordStore {
	return m.store
}

// Codec returns the codec used by the manager.
func (m *Manager) Codec() *props.Codec {
	return m.codec
}

// WithLock executes a function while holding the lock for the record.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"record_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
