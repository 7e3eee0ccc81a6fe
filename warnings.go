package props

import (
	"fmt"
	"sync"
)

// WarningReason says why deserialization fell back to an *Unresolved.
type WarningReason string

const (
	ReasonMissingClass WarningReason = "missing_class" // No class tag in the data
	ReasonUntrusted    WarningReason = "untrusted"     // Tag present but trust not granted
	ReasonUnknownClass WarningReason = "unknown_class" // Trusted tag names no registered model
)

// Warning is the non-fatal notice emitted once per generic Deserialize call
// that could not resolve a concrete model.
type Warning struct {
	Reason  WarningReason `json:"reason"`
	Class   string        `json:"class,omitempty"`
	Message string        `json:"message"`
}

func (w Warning) String() string { return w.Message }

func newWarning(reason WarningReason, class string) Warning {
	var detail string
	switch reason {
	case ReasonMissingClass:
		detail = "no class information"
	case ReasonUntrusted:
		detail = fmt.Sprintf("class %q ignored for untrusted input", class)
	case ReasonUnknownClass:
		detail = fmt.Sprintf("class %q is not registered", class)
	}
	return Warning{
		Reason:  reason,
		Class:   class,
		Message: detail + "; deserializing generically",
	}
}

func (c *Codec) warn(w Warning, cfg *decodeConfig) {
	c.logger.Warn(w.Message, "reason", string(w.Reason), "class", w.Class)
	if c.onWarning != nil {
		c.onWarning(w)
	}
	if cfg.onWarning != nil {
		cfg.onWarning(w)
	}
}

// WarningRecorder collects warnings. Its Record method can be passed to
// WithWarningHandler or OnWarning. Safe for concurrent use.
type WarningRecorder struct {
	mu       sync.Mutex
	warnings []Warning
}

// Record appends a warning.
func (r *WarningRecorder) Record(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// Warnings returns a copy of the recorded warnings.
func (r *WarningRecorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Len returns the number of recorded warnings.
func (r *WarningRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// Reset drops all recorded warnings.
func (r *WarningRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = nil
}
