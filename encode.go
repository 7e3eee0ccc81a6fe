package props

import (
	"fmt"
	"time"
)

// SerializeOption configures a single Serialize call.
type SerializeOption func(*serializeConfig)

type serializeConfig struct {
	includeClass bool
}

// IncludeClass controls whether the class tag is written at every level (default true).
func IncludeClass(include bool) SerializeOption {
	return func(c *serializeConfig) {
		c.includeClass = include
	}
}

// WithoutClass omits the class tag at every level.
func WithoutClass() SerializeOption {
	return IncludeClass(false)
}

// Serialize converts inst into a plain mapping, field by field in declaration
// order. Unset fields are omitted.
func (c *Codec) Serialize(inst *Instance, opts ...SerializeOption) (map[string]any, error) {
	cfg := serializeConfig{includeClass: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	enc := &Encoder{codec: c, includeClass: cfg.includeClass}
	out, err := enc.EncodeInstance(inst)

	event := &SerializeEvent{IncludeClass: cfg.includeClass, Duration: time.Since(start), Err: err}
	if inst != nil {
		event.Model = inst.model.name
	}
	c.hooks.serialized(event)

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Encoder carries the state of one serialization walk. Types receive it in
// ToPlain to serialize nested instances.
type Encoder struct {
	codec        *Codec
	includeClass bool
	depth        int
}

// IncludeClass reports whether class tags are being written.
func (e *Encoder) IncludeClass() bool { return e.includeClass }

// ClassKey returns the reserved class tag key.
func (e *Encoder) ClassKey() string { return e.codec.classKey }

// EncodeInstance serializes a (possibly nested) instance.
func (e *Encoder) EncodeInstance(inst *Instance) (map[string]any, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: nil instance", ErrInvalidValue)
	}
	if e.depth >= e.codec.maxDepth {
		return nil, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, e.codec.maxDepth, inst.model.name)
	}
	e.depth++
	defer func() { e.depth-- }()

	out := make(map[string]any, len(inst.values)+1)
	if e.includeClass {
		out[e.codec.classKey] = inst.model.name
	}

	for _, f := range inst.model.fields {
		v, ok := inst.values[f.name]
		if !ok || f.typ.IsUnset(v) {
			continue
		}
		if f.serializer != nil {
			p, err := f.serializer(v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: serializer: %w", inst.model.name, f.name, err)
			}
			out[f.name] = p
			continue
		}
		p, err := f.typ.ToPlain(v, e)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", inst.model.name, f.name, err)
		}
		out[f.name] = p
	}
	return out, nil
}
