package props

import (
	"errors"
	"fmt"
	"time"
)

// DecodeOption configures a single Deserialize call.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	trusted   bool
	onWarning func(Warning)
}

// Trusted lets the embedded class tag select the concrete model.
// Only use it for data the caller produced or otherwise vouches for.
func Trusted() DecodeOption {
	return WithTrust(true)
}

// WithTrust sets the trust mode explicitly (default false).
func WithTrust(trusted bool) DecodeOption {
	return func(c *decodeConfig) {
		c.trusted = trusted
	}
}

// OnWarning receives the fallback warning of this call, if any.
func OnWarning(fn func(Warning)) DecodeOption {
	return func(c *decodeConfig) {
		c.onWarning = fn
	}
}

// Deserialize reconstructs an object from a plain mapping without a
// caller-specified model. The class tag is only honoured in trusted mode and
// only when it names a registered model; every other case yields an
// *Unresolved and exactly one warning. Non-mapping input fails with
// ErrNotMapping.
func (c *Codec) Deserialize(data any, opts ...DecodeOption) (Object, error) {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	event := &DeserializeEvent{Trusted: cfg.trusted}
	obj, err := c.resolve(data, &cfg, event)
	event.Duration = time.Since(start)
	event.Err = err
	c.hooks.deserialized(event)

	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Codec) resolve(data any, cfg *decodeConfig, event *DeserializeEvent) (Object, error) {
	mapping, ok := asMapping(data)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, data)
	}

	raw, tagged := mapping[c.classKey]
	tag, _ := raw.(string)

	var reason WarningReason
	switch {
	case !tagged:
		reason = ReasonMissingClass
	case !cfg.trusted:
		reason = ReasonUntrusted
	default:
		model, found := c.registry.Lookup(tag)
		if !found || tag == "" {
			reason = ReasonUnknownClass
			break
		}
		dec := &Decoder{codec: c}
		inst, err := dec.DecodeInstance(model, mapping)
		if err != nil {
			return nil, err
		}
		event.Model = model.name
		return inst, nil
	}

	w := newWarning(reason, tag)
	c.warn(w, cfg)
	event.Fallback = true
	event.Reason = reason
	return newUnresolved(tag, mapping, c.classKey), nil
}

// DeserializeAs reconstructs an instance of m. The caller has committed to m,
// so the embedded class tag, if any, is ignored and no trust is needed.
func (c *Codec) DeserializeAs(m *Model, data any) (*Instance, error) {
	start := time.Now()
	dec := &Decoder{codec: c}
	inst, err := dec.DecodeInstance(m, data)

	event := &DeserializeEvent{Direct: true, Duration: time.Since(start), Err: err}
	if err == nil {
		event.Model = m.name
	}
	c.hooks.deserialized(event)

	if err != nil {
		return nil, err
	}
	return inst, nil
}

func newUnresolved(tag string, mapping map[string]any, classKey string) *Unresolved {
	fields := make(map[string]any, len(mapping))
	for k, v := range mapping {
		if k == classKey {
			continue
		}
		fields[k] = v
	}
	return &Unresolved{Tag: tag, Fields: fields}
}

// Decoder carries the state of one deserialization walk. Types receive it in
// FromPlain to reconstruct nested instances.
type Decoder struct {
	codec *Codec
	depth int
}

// ClassKey returns the reserved class tag key.
func (d *Decoder) ClassKey() string { return d.codec.classKey }

// DecodeInstance reconstructs an instance of m from a plain mapping. Keys that
// m does not declare are ignored; declared fields missing from the mapping
// stay unset.
func (d *Decoder) DecodeInstance(m *Model, plain any) (*Instance, error) {
	data, ok := asMapping(plain)
	if !ok {
		return nil, fmt.Errorf("%s: %w: got %T", m.name, ErrNotMapping, plain)
	}
	if d.depth >= d.codec.maxDepth {
		return nil, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, d.codec.maxDepth, m.name)
	}
	d.depth++
	defer func() { d.depth-- }()

	inst := m.empty()
	for _, f := range m.fields {
		raw, ok := data[f.name]
		if !ok || raw == nil {
			continue
		}

		var (
			v   any
			err error
		)
		if f.deserializer != nil {
			v, err = f.deserializer(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: deserializer: %w", m.name, f.name, err)
			}
		} else {
			v, err = f.typ.FromPlain(raw, d)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.name, f.name, asInvalid(err))
			}
		}

		if f.typ.IsUnset(v) {
			continue
		}
		inst.values[f.name] = v
	}
	return inst, nil
}

// asInvalid marks plain conversion failures with ErrInvalidValue. Errors that
// already carry a sentinel are returned unchanged.
func asInvalid(err error) error {
	for _, sentinel := range []error{ErrInvalidValue, ErrNotMapping, ErrNoUnionMatch, ErrMaxDepth} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidValue, err)
}

// lossless reports whether v, converted back by typ, reproduces plain.
func (d *Decoder) lossless(typ Type, v any, plain any) bool {
	enc := &Encoder{codec: d.codec, depth: d.depth}
	back, err := typ.ToPlain(v, enc)
	if err != nil {
		return false
	}
	return plainEqual(back, plain, d.codec.classKey)
}
