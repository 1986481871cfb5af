/*
Package observability turns instrumentation spans into metrics and traces.

Metrics feeds Prometheus collectors from span lifecycle hooks; Recorder keeps
the most recent closed spans for inspection. Both expose a
domain.LifecycleHooks value that can be combined with domain.ChainHooks.
*/
package observability
