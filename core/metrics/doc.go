// Package metrics defines the sinks recording optimization cycles. A sink
// must record cycles; recording report figures or recommendation reviews is
// optional and discovered by type assertion. NewMetricsSink builds sinks from
// configuration and returns a MultiSink when several are configured.
package metrics
