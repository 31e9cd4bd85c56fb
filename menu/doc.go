// Package menu filters a flat menu list by a caller's effective permission
// set and shapes the result into a hierarchical tree. Filtering happens on
// the flat list before assembly, so an entry the caller cannot see hides
// its entire subtree.
package menu
