package rbac

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Status is the lifecycle state shared by role and permission records.
type Status int

const (
	// StatusDisabled marks a record that must not grant anything.
	StatusDisabled Status = 0
	// StatusActive marks a record in force.
	StatusActive Status = 1
)

// PermissionType classifies what a permission code protects.
type PermissionType int

const (
	// PermissionMenu guards visibility of a navigation entry.
	PermissionMenu PermissionType = 1
	// PermissionButton guards an action inside a screen.
	PermissionButton PermissionType = 2
	// PermissionAPI guards a server-side operation.
	PermissionAPI PermissionType = 3
)

// Role is a role record as stored by the persistence collaborator.
type Role struct {
	ID       int64
	Code     string
	Name     string
	Level    int
	TenantID string
	Status   Status
}

// Permission is a permission record as stored by the persistence
// collaborator.
type Permission struct {
	ID        int64
	Code      string
	Name      string
	Type      PermissionType
	ParentID  int64
	SortOrder int
	Status    Status
}

// Store is the read side of the role/permission assignment tables. It is
// owned by the persistence collaborator; authkit only ever reads through
// it.
type Store interface {
	// RolesBySubject returns the roles currently assigned to a subject,
	// regardless of status. No assigned roles is an empty slice, not an
	// error.
	RolesBySubject(ctx context.Context, subjectID int64) ([]Role, error)

	// PermissionsByRoles returns the permissions granted to any of the
	// given roles, regardless of status.
	PermissionsByRoles(ctx context.Context, roleIDs []int64) ([]Permission, error)
}

// Resolver expands a subject's assigned roles into effective role and
// permission sets. All operations are read-only and reflect the assignment
// tables at call time.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

// NewResolver wraps store. A nil logger disables logging.
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// EffectiveRoles returns the subject's active roles.
func (r *Resolver) EffectiveRoles(ctx context.Context, subjectID int64) ([]Role, error) {
	assigned, err := r.store.RolesBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("rbac: roles for subject %d: %w", subjectID, err)
	}

	active := make([]Role, 0, len(assigned))
	for _, role := range assigned {
		if role.Status == StatusActive {
			active = append(active, role)
		}
	}
	return active, nil
}

// EffectiveRoleCodes returns the subject's active role codes as a Set.
func (r *Resolver) EffectiveRoleCodes(ctx context.Context, subjectID int64) (Set, error) {
	roles, err := r.EffectiveRoles(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	codes := make(Set, len(roles))
	for _, role := range roles {
		codes.Add(role.Code)
	}
	return codes, nil
}

// EffectivePermissions returns the union of the permission sets of every
// active role assigned to the subject. A subject with no roles gets an
// empty set.
func (r *Resolver) EffectivePermissions(ctx context.Context, subjectID int64) (Set, error) {
	roles, err := r.EffectiveRoles(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return Set{}, nil
	}

	roleIDs := make([]int64, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	granted, err := r.store.PermissionsByRoles(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("rbac: permissions for subject %d: %w", subjectID, err)
	}

	codes := make(Set, len(granted))
	for _, perm := range granted {
		if perm.Status == StatusActive {
			codes.Add(perm.Code)
		}
	}

	r.logger.Debug("resolved effective permissions",
		zap.Int64("subjectId", subjectID),
		zap.Int("roles", len(roles)),
		zap.Int("permissions", len(codes)))

	return codes, nil
}

// HasPermission reports whether the subject's effective set contains code.
func (r *Resolver) HasPermission(ctx context.Context, subjectID int64, code string) (bool, error) {
	effective, err := r.EffectivePermissions(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return effective.Contains(code), nil
}

// HasAllPermissions reports whether the subject holds every one of codes.
// An empty codes list is vacuously true.
func (r *Resolver) HasAllPermissions(ctx context.Context, subjectID int64, codes ...string) (bool, error) {
	effective, err := r.EffectivePermissions(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return effective.ContainsAll(codes...), nil
}

// HasAnyPermission reports whether the subject holds at least one of
// codes. An empty codes list is vacuously true.
func (r *Resolver) HasAnyPermission(ctx context.Context, subjectID int64, codes ...string) (bool, error) {
	if len(codes) == 0 {
		return true, nil
	}
	effective, err := r.EffectivePermissions(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return effective.ContainsAny(codes...), nil
}
