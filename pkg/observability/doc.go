/*
Package observability turns interpreter lifecycle hooks into Prometheus
metrics and structured log lines.

Both are plain domain.LifecycleHooks values and can be combined with
domain.ChainHooks:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
	interp := cuevox.New(reg, cuevox.WithLifecycleHooks(hooks))
*/
package observability
