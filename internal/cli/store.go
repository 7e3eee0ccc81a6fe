package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/props/internal/adapters/file"
	"github.com/aretw0/props/pkg/adapters/memory"
	"github.com/aretw0/props/pkg/adapters/redis"
	"github.com/aretw0/props/pkg/persistence/middleware"
	"github.com/aretw0/props/pkg/ports"
)

// Store backends accepted by StoreOptions.Kind.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

var (
	// ErrUnknownStore is returned for an unsupported store kind.
	ErrUnknownStore = errors.New("unknown store")
	// ErrInvalidKey is returned for an encryption key that is not 32 base64 encoded bytes.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes, base64 encoded")
)

// StoreOptions selects and configures the record store.
type StoreOptions struct {
	Kind          string
	Path          string // file store directory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	TTL           time.Duration

	EncryptionKey string   // base64, enables encryption at rest
	FallbackKeys  []string // base64, older keys still accepted for reads
	PIIPatterns   []string // field name patterns to mask before saving
	ClassKey      string   // class tag key exempt from masking; empty means the default
}

// Persistence is an opened record store.
type Persistence struct {
	Store  ports.RecordStore
	Locker ports.DistributedLocker // nil unless the backend can lock across processes
	Close  func() error
}

// OpenStore builds the record store with its middleware chain.
// PII masking runs before encryption.
func OpenStore(opts StoreOptions) (*Persistence, error) {
	p := &Persistence{Close: func() error { return nil }}

	switch opts.Kind {
	case "", StoreMemory:
		p.Store = memory.NewStore()
	case StoreFile:
		p.Store = file.New(opts.Path)
	case StoreRedis:
		var redisOpts []redis.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		if opts.TTL > 0 {
			redisOpts = append(redisOpts, redis.WithTTL(opts.TTL))
		}
		rs := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redisOpts...)
		p.Store = rs
		p.Locker = redis.NewLocker(rs.Client(), "props:")
		p.Close = rs.Close
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, opts.Kind)
	}

	var mws []middleware.Middleware
	if len(opts.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(opts.PIIPatterns, middleware.WithClassKey(opts.ClassKey)))
	}
	if opts.EncryptionKey != "" {
		cfg, err := encryptionConfig(opts.EncryptionKey, opts.FallbackKeys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(cfg))
	}
	p.Store = middleware.Chain(p.Store, mws...)
	return p, nil
}

func encryptionConfig(active string, fallbacks []string) (middleware.EncryptionConfig, error) {
	var cfg middleware.EncryptionConfig
	key, err := ParseKey(active)
	if err != nil {
		return cfg, err
	}
	cfg.ActiveKey = key
	for _, s := range fallbacks {
		k, err := ParseKey(s)
		if err != nil {
			return cfg, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}
	return key, nil
}
