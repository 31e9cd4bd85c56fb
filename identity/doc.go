// Package identity carries the resolved caller identity through one
// request. The original design stored the current user in thread-local
// state that had to be cleared manually at the end of every request; here
// the principal is a context value, so each request gets an isolated slot
// and the identity is released with the request scope on every exit path.
package identity
