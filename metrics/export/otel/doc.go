// Package otel bridges authkit engine counters to OpenTelemetry
// observable instruments. The exporter pulls a snapshot on every
// collection cycle; it performs no pushes of its own.
package otel
