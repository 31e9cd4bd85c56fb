package rbac

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/openthedoor/authkit/identity"
)

// Sentinel denial causes. Every Denied unwraps to exactly one of these.
var (
	ErrNotAuthenticated = errors.New("rbac: not authenticated")
	ErrPermissionDenied = errors.New("rbac: insufficient permission")
	ErrRoleDenied       = errors.New("rbac: insufficient role")
)

// Logical selects how a list of required codes combines against the
// caller's effective set.
type Logical uint8

const (
	// AND passes only when every required code is held.
	AND Logical = iota
	// OR passes when at least one required code is held.
	OR
)

// String implements fmt.Stringer.
func (l Logical) String() string {
	if l == OR {
		return "OR"
	}
	return "AND"
}

// Satisfied evaluates the combinator against effective. An empty required
// list always passes. The same evaluator backs both permission and role
// checks.
func (l Logical) Satisfied(required []string, effective Set) bool {
	if len(required) == 0 {
		return true
	}
	if l == OR {
		return effective.ContainsAny(required...)
	}
	return effective.ContainsAll(required...)
}

// DenyReason identifies which requirement a check failed on.
type DenyReason uint8

const (
	// ReasonNotAuthenticated means no valid principal was present (401 class).
	ReasonNotAuthenticated DenyReason = iota
	// ReasonMissingPermission means the permission combinator failed (403 class).
	ReasonMissingPermission
	// ReasonMissingRole means the role combinator failed (403 class).
	ReasonMissingRole
)

// Denied is the structured outcome of a failed authorization check. It
// reaches callers as an error but carries enough detail to map to the
// correct response class and log line.
type Denied struct {
	Reason   DenyReason
	Logic    Logical
	Required []string
}

// Error implements error.
func (d *Denied) Error() string {
	switch d.Reason {
	case ReasonMissingPermission:
		return fmt.Sprintf("rbac: denied, requires %s permission of [%s]", d.Logic, strings.Join(d.Required, ", "))
	case ReasonMissingRole:
		return fmt.Sprintf("rbac: denied, requires %s role of [%s]", d.Logic, strings.Join(d.Required, ", "))
	default:
		return "rbac: denied, not authenticated"
	}
}

// Unwrap maps the denial onto its sentinel cause.
func (d *Denied) Unwrap() error {
	switch d.Reason {
	case ReasonMissingPermission:
		return ErrPermissionDenied
	case ReasonMissingRole:
		return ErrRoleDenied
	default:
		return ErrNotAuthenticated
	}
}

// Authentication reports whether the denial is an authentication failure
// (the caller is unknown) rather than an authorization one.
func (d *Denied) Authentication() bool {
	return d.Reason == ReasonNotAuthenticated
}

// StatusCode returns the HTTP response class for the denial.
func (d *Denied) StatusCode() int {
	if d.Authentication() {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// AsDenied extracts a Denied from err, if one is in its chain.
func AsDenied(err error) (*Denied, bool) {
	var denied *Denied
	ok := errors.As(err, &denied)
	return denied, ok
}

// Requirement describes, as plain data, what a protected operation
// demands. The original design expressed this with method annotations read
// by an interceptor; a middleware or any other caller passes the same
// information here explicitly.
type Requirement struct {
	Login       bool
	Logic       Logical
	Permissions []string
	Roles       []string
}

// Guard evaluates requirements against the current request identity before
// a protected operation runs. It produces nothing but the pass/fail
// decision and its log record.
type Guard struct {
	resolver *Resolver
	logger   *zap.Logger
}

// NewGuard builds a Guard that evaluates against the principal's embedded
// token snapshot. A nil logger disables logging.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger}
}

// WithFreshResolution returns a Guard that re-queries the assignment
// tables through resolver on every check instead of trusting the token
// snapshot. Rights changes then apply immediately, at the cost of a store
// read on the hot path.
func (g *Guard) WithFreshResolution(resolver *Resolver) *Guard {
	return &Guard{resolver: resolver, logger: g.logger}
}

// RequireLogin fails with a not-authenticated denial unless ctx carries a
// principal with a subject id.
func (g *Guard) RequireLogin(ctx context.Context) error {
	if p := identity.FromContext(ctx); p != nil && p.UserID != 0 {
		return nil
	}

	g.logger.Warn("access denied: not authenticated")
	return &Denied{Reason: ReasonNotAuthenticated}
}

// RequirePermissions enforces login and then evaluates the combinator
// against the caller's effective permission set. Resolver or store errors
// deny closed.
func (g *Guard) RequirePermissions(ctx context.Context, logic Logical, codes ...string) error {
	if err := g.RequireLogin(ctx); err != nil {
		return err
	}

	p := identity.FromContext(ctx)
	effective, err := g.effectivePermissions(ctx, p)
	if err != nil {
		g.logger.Warn("access denied: permission resolution failed",
			zap.Int64("userId", p.UserID), zap.Error(err))
		return &Denied{Reason: ReasonMissingPermission, Logic: logic, Required: codes}
	}

	if !logic.Satisfied(codes, effective) {
		g.logger.Warn("access denied: insufficient permission",
			zap.Int64("userId", p.UserID),
			zap.Strings("required", codes),
			zap.Stringer("logic", logic))
		return &Denied{Reason: ReasonMissingPermission, Logic: logic, Required: codes}
	}
	return nil
}

// RequireRoles mirrors RequirePermissions against the caller's role set.
func (g *Guard) RequireRoles(ctx context.Context, logic Logical, codes ...string) error {
	if err := g.RequireLogin(ctx); err != nil {
		return err
	}

	p := identity.FromContext(ctx)
	effective, err := g.effectiveRoles(ctx, p)
	if err != nil {
		g.logger.Warn("access denied: role resolution failed",
			zap.Int64("userId", p.UserID), zap.Error(err))
		return &Denied{Reason: ReasonMissingRole, Logic: logic, Required: codes}
	}

	if !logic.Satisfied(codes, effective) {
		g.logger.Warn("access denied: insufficient role",
			zap.Int64("userId", p.UserID),
			zap.Strings("required", codes),
			zap.Stringer("logic", logic))
		return &Denied{Reason: ReasonMissingRole, Logic: logic, Required: codes}
	}
	return nil
}

// Check evaluates a full requirement descriptor: login first, then
// permissions, then roles. The first failed part wins.
func (g *Guard) Check(ctx context.Context, req Requirement) error {
	if req.Login || len(req.Permissions) > 0 || len(req.Roles) > 0 {
		if err := g.RequireLogin(ctx); err != nil {
			return err
		}
	}
	if len(req.Permissions) > 0 {
		if err := g.RequirePermissions(ctx, req.Logic, req.Permissions...); err != nil {
			return err
		}
	}
	if len(req.Roles) > 0 {
		if err := g.RequireRoles(ctx, req.Logic, req.Roles...); err != nil {
			return err
		}
	}
	return nil
}

func (g *Guard) effectivePermissions(ctx context.Context, p *identity.Principal) (Set, error) {
	if g.resolver != nil {
		return g.resolver.EffectivePermissions(ctx, p.UserID)
	}
	return NewSet(p.Permissions...), nil
}

func (g *Guard) effectiveRoles(ctx context.Context, p *identity.Principal) (Set, error) {
	if g.resolver != nil {
		return g.resolver.EffectiveRoleCodes(ctx, p.UserID)
	}
	return NewSet(p.Roles...), nil
}
