package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/props"
	"github.com/aretw0/props/pkg/ports"
)

// Mask replaces the values of fields whose names match a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.RecordStore
	patterns []*regexp.Regexp
	classKey string
}

// PIIOption configures the PII middleware.
type PIIOption func(*piiMiddleware)

// WithClassKey sets the class tag key that is never masked.
// The default is props.DefaultClassKey.
func WithClassKey(key string) PIIOption {
	return func(m *piiMiddleware) {
		if key != "" {
			m.classKey = key
		}
	}
}

// NewPIIMiddleware creates a middleware that masks, on Save, the values of
// keys matching any of the patterns, at any depth including records nested in
// lists. Class tags are never masked. Masking is one-way: loaded records carry
// the mask instead of the original value.
func NewPIIMiddleware(patternStrings []string, opts ...PIIOption) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RecordStore) ports.RecordStore {
		m := &piiMiddleware{next: next, patterns: patterns, classKey: props.DefaultClassKey}
		for _, opt := range opts {
			opt(m)
		}
		return m
	}
}

func (m *piiMiddleware) Save(ctx context.Context, id string, rec ports.Record) error {
	// Work on a copy; the caller's record stays untouched.
	return m.next.Save(ctx, id, m.mask(rec))
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (ports.Record, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if k != m.classKey && m.matches(k) {
			out[k] = Mask
			continue
		}
		out[k] = m.maskValue(v)
	}
	return out
}

func (m *piiMiddleware) maskValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return m.mask(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = m.maskValue(item)
		}
		return items
	default:
		return v
	}
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
