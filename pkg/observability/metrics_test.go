package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/props"
	"github.com/aretw0/props/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, hooks props.Hooks) (*props.Codec, *props.Model) {
	t.Helper()
	reg := props.NewRegistry()
	m, err := props.DeclareIn(reg, "Point", props.MustField("x", props.Integer()))
	require.NoError(t, err)
	return props.NewCodec(props.WithRegistry(reg), props.WithHooks(hooks)), m
}

func TestMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)
	codec, point := setup(t, metrics.Hooks())

	data, err := codec.Serialize(point.MustNew(map[string]any{"x": 1}))
	require.NoError(t, err)

	_, err = codec.Deserialize(data, props.Trusted())
	require.NoError(t, err)
	_, err = codec.Deserialize(data)
	require.NoError(t, err)
	_, err = codec.DeserializeAs(point, data)
	require.NoError(t, err)
	_, err = codec.Deserialize("not a mapping")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Serialized.WithLabelValues("Point", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deserialized.WithLabelValues("Point", "trusted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deserialized.WithLabelValues("generic", "untrusted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deserialized.WithLabelValues("Point", "direct", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deserialized.WithLabelValues("", "untrusted", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fallbacks.WithLabelValues(string(props.ReasonUntrusted))))

	count, err := testutil.GatherAndCount(promReg, "props_codec_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram per op")
}

func TestNewMetrics_Unregistered(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics(nil)
		observability.NewMetrics(nil)
	})
}

func TestLogHooks_Combine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var serialized int
	counting := props.Hooks{OnSerialize: func(*props.SerializeEvent) { serialized++ }}

	codec, point := setup(t, observability.Combine(observability.LogHooks(logger), counting))

	_, err := codec.Serialize(point.MustNew(nil))
	require.NoError(t, err)
	_, err = codec.Deserialize(42)
	require.Error(t, err)

	assert.Equal(t, 1, serialized)
	out := buf.String()
	assert.Contains(t, out, "msg=serialize model=Point")
	assert.Contains(t, out, `msg="deserialize failed"`)
}
