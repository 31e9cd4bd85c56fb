// Package session keeps the external token→subject registry that makes
// early revocation of otherwise-stateless tokens possible.
package session
