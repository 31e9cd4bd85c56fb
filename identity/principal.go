package identity

import "time"

// User type levels carried in Principal.UserType.
const (
	UserTypeRegular    = 1
	UserTypeAdmin      = 2
	UserTypeSuperAdmin = 3
)

// Principal is the resolved identity of the caller for one request. It is
// reconstructed per call from token claims or a fresh lookup and never
// persisted.
type Principal struct {
	UserID      int64
	Username    string
	Nickname    string
	TenantID    string
	UserType    int
	Roles       []string
	Permissions []string
	IssuedAt    time.Time
	ExpiresAt   time.Time

	roleSet map[string]struct{}
	permSet map[string]struct{}
}

// NewPrincipal copies p and indexes its role and permission codes for the
// membership queries below.
func NewPrincipal(p Principal) *Principal {
	p.roleSet = indexCodes(p.Roles)
	p.permSet = indexCodes(p.Permissions)
	return &p
}

func indexCodes(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// IsAdmin reports whether the caller's user type is admin or above.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.UserType >= UserTypeAdmin
}

// IsSuperAdmin reports whether the caller is a super administrator.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.UserType == UserTypeSuperAdmin
}

// HasRole reports membership of code in the caller's role set.
func (p *Principal) HasRole(code string) bool {
	if p == nil {
		return false
	}
	_, ok := p.roleSet[code]
	return ok
}

// HasPermission reports membership of code in the caller's permission set.
func (p *Principal) HasPermission(code string) bool {
	if p == nil {
		return false
	}
	_, ok := p.permSet[code]
	return ok
}

// HasAnyRole reports whether the caller holds at least one of codes.
func (p *Principal) HasAnyRole(codes ...string) bool {
	for _, code := range codes {
		if p.HasRole(code) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the caller holds every one of codes.
// An empty codes list is vacuously true.
func (p *Principal) HasAllRoles(codes ...string) bool {
	if p == nil {
		return len(codes) == 0
	}
	for _, code := range codes {
		if !p.HasRole(code) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether the caller holds at least one of codes.
func (p *Principal) HasAnyPermission(codes ...string) bool {
	for _, code := range codes {
		if p.HasPermission(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the caller holds every one of codes.
// An empty codes list is vacuously true.
func (p *Principal) HasAllPermissions(codes ...string) bool {
	if p == nil {
		return len(codes) == 0
	}
	for _, code := range codes {
		if !p.HasPermission(code) {
			return false
		}
	}
	return true
}
