package middleware

import (
	"net/http"

	authkit "github.com/openthedoor/authkit"
	"github.com/openthedoor/authkit/identity"
	"github.com/openthedoor/authkit/jwt"
	"github.com/openthedoor/authkit/rbac"
)

// Authenticate reads the bearer token from the configured header, runs it
// through Engine.Validate, and attaches the resulting principal to the
// request context. Requests without a valid token are rejected with 401.
func Authenticate(engine *authkit.Engine) func(http.Handler) http.Handler {
	return authenticate(engine, nil)
}

// AuthenticateJWTOnly is Authenticate with the registry check skipped for
// the wrapped routes, whatever the engine-wide mode.
func AuthenticateJWTOnly(engine *authkit.Engine) func(http.Handler) http.Handler {
	mode := authkit.ModeJWTOnly
	return authenticate(engine, &mode)
}

func authenticate(engine *authkit.Engine, mode *authkit.ValidationMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			httpCfg := engine.HTTPConfig()
			token, ok := jwt.FromHeader(r.Header.Get(httpCfg.Header), httpCfg.Prefix)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var (
				p   *identity.Principal
				err error
			)
			if mode != nil {
				p, err = engine.ValidateWithMode(r.Context(), token, *mode)
			} else {
				p, err = engine.Validate(r.Context(), token)
			}
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireLogin rejects unauthenticated requests with 401. Place it after
// Authenticate; it only inspects the request context.
func RequireLogin(guard *rbac.Guard) func(http.Handler) http.Handler {
	return enforce(func(r *http.Request) error {
		return guard.RequireLogin(r.Context())
	})
}

// RequirePermissions rejects requests whose principal does not satisfy
// the permission codes under the given combinator.
func RequirePermissions(guard *rbac.Guard, logic rbac.Logical, codes ...string) func(http.Handler) http.Handler {
	return enforce(func(r *http.Request) error {
		return guard.RequirePermissions(r.Context(), logic, codes...)
	})
}

// RequireRoles rejects requests whose principal does not satisfy the role
// codes under the given combinator.
func RequireRoles(guard *rbac.Guard, logic rbac.Logical, codes ...string) func(http.Handler) http.Handler {
	return enforce(func(r *http.Request) error {
		return guard.RequireRoles(r.Context(), logic, codes...)
	})
}

// Require rejects requests failing the full requirement descriptor.
func Require(guard *rbac.Guard, req rbac.Requirement) func(http.Handler) http.Handler {
	return enforce(func(r *http.Request) error {
		return guard.Check(r.Context(), req)
	})
}

func enforce(check func(*http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(r); err != nil {
				status := http.StatusForbidden
				if denied, ok := rbac.AsDenied(err); ok {
					status = denied.StatusCode()
				}
				http.Error(w, http.StatusText(status), status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
