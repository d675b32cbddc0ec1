// Package model holds the plain records exchanged between the data store and
// the optimization engine: trips with their load factors, vehicles,
// incidents, optimization rules and reallocation recommendations.
package model
