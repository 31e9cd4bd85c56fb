package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openthedoor/authkit/identity"
	"github.com/openthedoor/authkit/jwt"
	"github.com/openthedoor/authkit/lock"
	"github.com/openthedoor/authkit/menu"
	"github.com/openthedoor/authkit/password"
	"github.com/openthedoor/authkit/rbac"
	"github.com/openthedoor/authkit/session"
)

// Engine ties the token service, session registry, permission resolver,
// and distributed lock together behind the login/logout/refresh/validate
// flows. Build one with Builder and share it; all methods are safe for
// concurrent use.
type Engine struct {
	config   Config
	tokens   *jwt.Manager
	registry *session.Registry
	resolver *rbac.Resolver
	guard    *rbac.Guard
	locks    *lock.Lock
	users    UserProvider
	hasher   password.Hasher
	metrics  *Metrics
	logger   *zap.Logger
}

// Tokens exposes the token manager for callers that issue or inspect
// tokens directly.
func (e *Engine) Tokens() *jwt.Manager { return e.tokens }

// Guard returns the authorization guard evaluating against token
// snapshots. Use FreshGuard for checks that must see current assignments.
func (e *Engine) Guard() *rbac.Guard { return e.guard }

// FreshGuard returns a guard that re-queries the assignment tables on
// every check. Returns the snapshot guard when no store is configured.
func (e *Engine) FreshGuard() *rbac.Guard {
	if e.resolver == nil {
		return e.guard
	}
	return e.guard.WithFreshResolution(e.resolver)
}

// Resolver returns the permission resolver, or nil when no assignment
// store was configured.
func (e *Engine) Resolver() *rbac.Resolver { return e.resolver }

// Locks returns the distributed lock, or nil when no redis client was
// configured.
func (e *Engine) Locks() *lock.Lock { return e.locks }

// Registry returns the session registry, or nil in jwt-only setups.
func (e *Engine) Registry() *session.Registry { return e.registry }

// HTTPConfig returns the configured token header and prefix.
func (e *Engine) HTTPConfig() HTTPConfig { return e.config.HTTP }

// Metrics returns the engine counters. Never nil on a built engine.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Login authenticates the credentials, resolves the caller's effective
// roles and permissions once, and issues an access/refresh token pair
// with that snapshot embedded. The access token is recorded in the
// session registry so logout can revoke it early.
func (e *Engine) Login(ctx context.Context, tenantID, username, plainPassword string) (res *LoginResult, err error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	defer func() {
		if err != nil {
			e.metrics.Inc(MetricLoginFailure)
		} else {
			e.metrics.Inc(MetricLoginSuccess)
		}
	}()

	user, err := e.users.FindByUsername(ctx, tenantID, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("authkit: user lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !e.hasher.Verify(plainPassword, user.PasswordHash) {
		e.logger.Warn("login rejected: bad password",
			zap.String("username", username), zap.String("tenantId", tenantID))
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case UserStatusDisabled:
		return nil, ErrUserDisabled
	case UserStatusLocked:
		return nil, ErrUserLocked
	}

	roles, perms, err := e.snapshot(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	id := jwt.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		TenantID:    user.TenantID,
		UserType:    user.UserType,
		Roles:       roles,
		Permissions: perms,
	}

	access, err := e.tokens.IssueAccess(id)
	if err != nil {
		return nil, fmt.Errorf("authkit: issue access token: %w", err)
	}
	refresh, err := e.tokens.IssueRefresh(id)
	if err != nil {
		return nil, fmt.Errorf("authkit: issue refresh token: %w", err)
	}

	if e.registry != nil {
		if err := e.registry.Remember(ctx, access, user.ID, e.config.JWT.AccessTTL); err != nil {
			return nil, err
		}
	}

	e.logger.Info("login succeeded",
		zap.Int64("userId", user.ID),
		zap.String("username", user.Username),
		zap.String("tenantId", user.TenantID))

	principal := identity.NewPrincipal(identity.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		TenantID:    user.TenantID,
		UserType:    user.UserType,
		Roles:       roles,
		Permissions: perms,
	})

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(e.config.JWT.AccessTTL.Seconds()),
		Principal:    principal,
	}, nil
}

// Logout removes the token from the session registry. The token itself
// stays cryptographically valid until its own expiry; only strict-mode
// validators notice the revocation. Logging out an unknown token is a
// no-op.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	e.metrics.Inc(MetricLogout)
	if e.registry == nil {
		return nil
	}
	return e.registry.Forget(ctx, token)
}

// Refresh validates the refresh token and mints a new access token from
// its embedded claims. The role/permission snapshot is copied as-is, not
// re-resolved: a rights change after login applies only once the refresh
// token itself expires and the subject logs in again.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.tokens.ParseType(refreshToken, jwt.TypeRefresh)
	if err != nil {
		e.logger.Debug("refresh rejected", zap.Error(err))
		e.metrics.Inc(MetricRefreshFailure)
		return "", ErrTokenInvalid
	}

	access, err := e.tokens.IssueAccess(claims.Identity())
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		return "", fmt.Errorf("authkit: issue access token: %w", err)
	}

	if e.registry != nil {
		if err := e.registry.Remember(ctx, access, claims.UserID, e.config.JWT.AccessTTL); err != nil {
			e.metrics.Inc(MetricRefreshFailure)
			return "", err
		}
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.logger.Info("access token refreshed", zap.Int64("userId", claims.UserID))
	return access, nil
}

// Validate checks the access token under the configured validation mode
// and returns the principal it represents. Any token failure comes back
// as ErrTokenInvalid; a revoked-but-well-signed token as ErrTokenRevoked.
func (e *Engine) Validate(ctx context.Context, token string) (*identity.Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return e.ValidateWithMode(ctx, token, e.config.ValidationMode)
}

// ValidateWithMode is Validate with an explicit mode, letting individual
// routes opt out of the registry round-trip.
func (e *Engine) ValidateWithMode(ctx context.Context, token string, mode ValidationMode) (*identity.Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()

	claims, err := e.tokens.ParseType(token, jwt.TypeAccess)
	if err != nil {
		e.logger.Debug("token rejected", zap.Error(err))
		e.metrics.Inc(MetricValidateFailure)
		return nil, ErrTokenInvalid
	}

	if mode == ModeStrict {
		if e.registry == nil {
			return nil, ErrEngineNotReady
		}
		known, err := e.registry.IsKnown(ctx, token)
		if err != nil {
			// Registry unavailable: deny closed rather than accept a
			// possibly revoked token.
			e.metrics.Inc(MetricValidateFailure)
			return nil, fmt.Errorf("authkit: registry check: %w", err)
		}
		if !known {
			e.metrics.Inc(MetricValidateRevoked)
			return nil, ErrTokenRevoked
		}
	}

	e.metrics.Inc(MetricValidateSuccess)
	return principalFromClaims(claims), nil
}

// CurrentUser returns the principal attached to ctx by the middleware, or
// a not-authenticated denial.
func (e *Engine) CurrentUser(ctx context.Context) (*identity.Principal, error) {
	p := identity.FromContext(ctx)
	if p == nil || p.UserID == 0 {
		return nil, rbac.ErrNotAuthenticated
	}
	return p, nil
}

// MenuTreeFor filters the already-fetched menu list by the current
// caller's effective permissions and assembles the visible forest. With
// an assignment store configured the set is resolved fresh; otherwise the
// token snapshot is used.
func (e *Engine) MenuTreeFor(ctx context.Context, all []menu.Menu, rootParentID int64) ([]*menu.Node, error) {
	p, err := e.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var effective rbac.Set
	if e.resolver != nil {
		effective, err = e.resolver.EffectivePermissions(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		effective = rbac.NewSet(p.Permissions...)
	}

	visible := menu.FilterForPermissions(all, effective)
	return menu.BuildTree(visible, rootParentID), nil
}

// snapshot resolves the effective role and permission codes for a subject
// at login time. Without an assignment store both sets are empty.
func (e *Engine) snapshot(ctx context.Context, subjectID int64) (roles, perms []string, err error) {
	if e.resolver == nil {
		return nil, nil, nil
	}

	roleCodes, err := e.resolver.EffectiveRoleCodes(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	permCodes, err := e.resolver.EffectivePermissions(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	return roleCodes.Codes(), permCodes.Codes(), nil
}

func principalFromClaims(claims *jwt.Claims) *identity.Principal {
	p := identity.Principal{
		UserID:      claims.UserID,
		Username:    claims.Subject,
		TenantID:    claims.TenantID,
		UserType:    claims.UserType,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity.NewPrincipal(p)
}
