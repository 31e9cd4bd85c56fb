// Package middleware adapts the authkit engine and guard to net/http.
//
// Authenticate turns a bearer token into a request-scoped principal;
// RequireLogin, RequirePermissions, and RequireRoles enforce access on
// top of it. The middleware translates HTTP into engine calls and back
// into status codes: it never parses tokens or evaluates permissions
// itself.
package middleware
