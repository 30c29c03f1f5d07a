/*
Package observability turns scheduler lifecycle hooks into metrics, traces
and logs.

Each constructor returns a domain.SkillHooks value; Combine fans one set of
callbacks out to several:

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	hooks := observability.Combine(
		metrics.Hooks(),
		observability.NewTracing(otel.GetTracerProvider()).Hooks(),
		observability.LogHooks(logger),
	)
	eng := skillgraph.New(skillgraph.WithHooks(hooks))
*/
package observability
