package observability

import (
	"log/slog"

	"github.com/aretw0/props"
)

// LogHooks returns codec hooks that log every call at DEBUG and failures at ERROR.
// Fallback warnings are logged by the codec itself.
func LogHooks(logger *slog.Logger) props.Hooks {
	return props.Hooks{
		OnSerialize: func(e *props.SerializeEvent) {
			if e.Err != nil {
				logger.Error("serialize failed", "model", e.Model, "err", e.Err)
				return
			}
			logger.Debug("serialize", "model", e.Model, "class", e.IncludeClass, "duration", e.Duration)
		},
		OnDeserialize: func(e *props.DeserializeEvent) {
			if e.Err != nil {
				logger.Error("deserialize failed", "direct", e.Direct, "trusted", e.Trusted, "err", e.Err)
				return
			}
			logger.Debug("deserialize",
				"model", e.Model,
				"direct", e.Direct,
				"trusted", e.Trusted,
				"fallback", e.Fallback,
				"duration", e.Duration,
			)
		},
	}
}

// Combine returns hooks that call each of hooks in order.
func Combine(hooks ...props.Hooks) props.Hooks {
	return props.Hooks{
		OnSerialize: func(e *props.SerializeEvent) {
			for _, h := range hooks {
				if h.OnSerialize != nil {
					h.OnSerialize(e)
				}
			}
		},
		OnDeserialize: func(e *props.DeserializeEvent) {
			for _, h := range hooks {
				if h.OnDeserialize != nil {
					h.OnDeserialize(e)
				}
			}
		},
	}
}
