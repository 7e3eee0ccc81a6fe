package props

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/props/internal/logging"
)

// DefaultClassKey is the reserved mapping key holding a model's registered name.
const DefaultClassKey = "__class__"

// DefaultMaxDepth bounds how deeply model instances may nest.
const DefaultMaxDepth = 64

// Codec converts instances to and from plain mappings.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	registry  *ModelRegistry
	logger    *slog.Logger
	classKey  string
	maxDepth  int
	hooks     Hooks
	onWarning func(Warning)
}

// Option defines a functional option for configuring a Codec.
type Option func(*Codec)

// WithRegistry sets the registry used to resolve class tags (default: DefaultRegistry).
func WithRegistry(reg *ModelRegistry) Option {
	return func(c *Codec) {
		c.registry = reg
	}
}

// WithLogger sets a structured logger; fallback warnings are logged at WARN.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithClassKey overrides the reserved class tag key.
func WithClassKey(key string) Option {
	return func(c *Codec) {
		c.classKey = key
	}
}

// WithMaxDepth overrides the nesting limit.
func WithMaxDepth(depth int) Option {
	return func(c *Codec) {
		c.maxDepth = depth
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks Hooks) Option {
	return func(c *Codec) {
		c.hooks = hooks
	}
}

// WithWarningHandler receives every fallback warning emitted by the codec.
func WithWarningHandler(fn func(Warning)) Option {
	return func(c *Codec) {
		c.onWarning = fn
	}
}

// NewCodec creates a codec. Without options it resolves tags against
// DefaultRegistry and discards log output.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		registry: DefaultRegistry,
		classKey: DefaultClassKey,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = DefaultRegistry
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.classKey == "" {
		c.classKey = DefaultClassKey
	}
	if c.maxDepth <= 0 {
		c.maxDepth = DefaultMaxDepth
	}
	return c
}

var (
	defaultCodecMu sync.RWMutex
	defaultCodec   = NewCodec()
)

// DefaultCodec returns the codec used by the package-level helpers.
func DefaultCodec() *Codec {
	defaultCodecMu.RLock()
	defer defaultCodecMu.RUnlock()
	return defaultCodec
}

// SetDefaultCodec replaces the codec used by the package-level helpers.
func SetDefaultCodec(c *Codec) {
	defaultCodecMu.Lock()
	defer defaultCodecMu.Unlock()
	defaultCodec = c
}

// ClassKey returns the reserved class tag key.
func (c *Codec) ClassKey() string { return c.classKey }

// Registry returns the registry used to resolve class tags.
func (c *Codec) Registry() *ModelRegistry { return c.registry }

// Serialize converts inst into its plain mapping using the default codec.
func Serialize(inst *Instance, opts ...SerializeOption) (map[string]any, error) {
	return DefaultCodec().Serialize(inst, opts...)
}

// Deserialize reconstructs an object from data using the default codec.
// The concrete model is taken from the embedded class tag only when the
// Trusted option is given; otherwise the result is an *Unresolved.
func Deserialize(data any, opts ...DecodeOption) (Object, error) {
	return DefaultCodec().Deserialize(data, opts...)
}

// --- Lifecycle hooks ---

// SerializeEvent describes one Serialize call.
type SerializeEvent struct {
	Model        string
	IncludeClass bool
	Duration     time.Duration
	Err          error
}

// DeserializeEvent describes one Deserialize or DeserializeAs call.
type DeserializeEvent struct {
	// Model is the resolved model name, empty on fallback or error.
	Model string
	// Direct is true when the caller named the target model.
	Direct  bool
	Trusted bool
	// Fallback is true when an *Unresolved was returned; Reason says why.
	Fallback bool
	Reason   WarningReason
	Duration time.Duration
	Err      error
}

// Hooks defines callbacks for codec observability.
type Hooks struct {
	OnSerialize   func(*SerializeEvent)
	OnDeserialize func(*DeserializeEvent)
}

func (h Hooks) serialized(e *SerializeEvent) {
	if h.OnSerialize != nil {
		h.OnSerialize(e)
	}
}

func (h Hooks) deserialized(e *DeserializeEvent) {
	if h.OnDeserialize != nil {
		h.OnDeserialize(e)
	}
}
