// Package metrics provides [dynamo.Metric] implementations that summarise a
// run: energy drift, constraint drift and actuator work.
package metrics
