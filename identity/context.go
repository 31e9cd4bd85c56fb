package identity

import "context"

type principalContextKey struct{}

// WithPrincipal returns a child context carrying p. The identity lives
// exactly as long as the derived context, so concurrent requests never
// observe each other's principal and nothing survives the call.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext returns the principal attached to ctx, or nil when the call
// is unauthenticated.
func FromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Clear returns a child context with any attached principal removed. Used
// at hand-off points where a context outlives the authenticated call, e.g.
// when a request context seeds a background job.
func Clear(ctx context.Context) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, principalContextKey{}, (*Principal)(nil))
}

// IsAuthenticated reports whether ctx carries a principal with a subject.
func IsAuthenticated(ctx context.Context) bool {
	p := FromContext(ctx)
	return p != nil && p.UserID != 0
}

// UserID returns the current caller's subject id, or 0 when unauthenticated.
func UserID(ctx context.Context) int64 {
	if p := FromContext(ctx); p != nil {
		return p.UserID
	}
	return 0
}

// Username returns the current caller's login name, or "".
func Username(ctx context.Context) string {
	if p := FromContext(ctx); p != nil {
		return p.Username
	}
	return ""
}

// TenantID returns the current caller's tenant, or "".
func TenantID(ctx context.Context) string {
	if p := FromContext(ctx); p != nil {
		return p.TenantID
	}
	return ""
}

// IsAdmin reports whether the current caller is an administrator.
func IsAdmin(ctx context.Context) bool {
	return FromContext(ctx).IsAdmin()
}

// HasRole reports whether the current caller holds the role code.
func HasRole(ctx context.Context, code string) bool {
	return FromContext(ctx).HasRole(code)
}

// HasPermission reports whether the current caller holds the permission code.
func HasPermission(ctx context.Context, code string) bool {
	return FromContext(ctx).HasPermission(code)
}
