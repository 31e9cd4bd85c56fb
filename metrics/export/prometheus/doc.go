// Package prometheus renders authkit engine counters in Prometheus text
// exposition format. It writes the format by hand to avoid a dependency
// on the Prometheus client; mount Exporter.Handler on a /metrics route.
package prometheus
