package observability

import (
	"github.com/aretw0/props"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by codec hooks.
type Metrics struct {
	Serialized   *prometheus.CounterVec
	Deserialized *prometheus.CounterVec
	Fallbacks    *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Serialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "props_serialize_total",
				Help: "Total number of serialize calls",
			},
			[]string{"model", "result"},
		),
		Deserialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "props_deserialize_total",
				Help: "Total number of deserialize calls",
			},
			[]string{"model", "mode", "result"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "props_generic_fallback_total",
				Help: "Deserializations that fell back to a generic object",
			},
			[]string{"reason"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "props_codec_duration_seconds",
				Help:    "Duration of codec calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Serialized, m.Deserialized, m.Fallbacks, m.Duration)
	}
	return m
}

// Hooks returns codec hooks that record into m.
func (m *Metrics) Hooks() props.Hooks {
	return props.Hooks{
		OnSerialize: func(e *props.SerializeEvent) {
			m.Serialized.WithLabelValues(e.Model, result(e.Err)).Inc()
			m.Duration.WithLabelValues("serialize").Observe(e.Duration.Seconds())
		},
		OnDeserialize: func(e *props.DeserializeEvent) {
			model := e.Model
			if e.Fallback {
				model = "generic"
				m.Fallbacks.WithLabelValues(string(e.Reason)).Inc()
			}
			m.Deserialized.WithLabelValues(model, mode(e), result(e.Err)).Inc()
			m.Duration.WithLabelValues("deserialize").Observe(e.Duration.Seconds())
		},
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func mode(e *props.DeserializeEvent) string {
	switch {
	case e.Direct:
		return "direct"
	case e.Trusted:
		return "trusted"
	default:
		return "untrusted"
	}
}
