/*
Package observability provides codec lifecycle hooks for monitoring props.

Metrics exposes Prometheus counters and histograms for serialize and
deserialize calls, including generic fallbacks by reason. LogHooks writes
the same events to a structured logger. Combine merges several hook sets so
both can be installed on one codec:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	codec := props.NewCodec(props.WithHooks(observability.Combine(
		metrics.Hooks(),
		observability.LogHooks(logger),
	)))
*/
package observability
