// Package infra holds the adapters behind the core interfaces: the SQLite
// store, metrics sinks, the MQTT publisher, the report archive, Sentry and
// the zerolog logger. Core packages never import infra.
package infra
