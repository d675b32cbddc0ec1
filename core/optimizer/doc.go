// Package optimizer turns recent operational history into demand forecasts,
// pricing guidance, maintenance risk, a stress dashboard and vehicle
// reallocation suggestions.
//
// Every step except Assemble is a pure function of its inputs so that a
// report can be recomputed for a what-if simulation without side effects.
// The Engine composes the steps into a Report; persisting and scheduling
// reports is the job of the scheduler package.
package optimizer
