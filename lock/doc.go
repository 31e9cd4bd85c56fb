// Package lock provides named mutual exclusion across processes on top of
// a shared Redis store: a single set-if-absent to acquire, a Lua
// compare-and-delete to release, a TTL as the only timeout.
package lock
