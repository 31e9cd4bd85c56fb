// Package internaldefs holds the shared metric name table and bucket
// helpers used by the prometheus and otel exporters. It is not part of
// the public API.
package internaldefs
