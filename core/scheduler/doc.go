// Package scheduler runs optimization cycles. The Orchestrator computes a
// report, persists its suggestions as pending recommendations, keeps the
// latest report in memory and fires cycles on a fixed interval.
package scheduler
