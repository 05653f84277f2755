package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/data"
	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

// ErrRoleInUse is returned when deleting a role that still has assignments.
var ErrRoleInUse = errors.New("role still has user assignments")

// ErrSystemRole is returned when deleting or renaming a seeded system role.
var ErrSystemRole = errors.New("system roles cannot be modified")

// DirectoryServiceOptions configures NewDirectoryService.
type DirectoryServiceOptions struct {
	Roles       core.RoleRepository
	Permissions core.PermissionRepository
	Assignments core.AssignmentRepository
	Grants      core.GrantRepository
	Logger      *slog.Logger
}

// DirectoryService manages roles, permission keys, user role assignments, and
// building access grants.
type DirectoryService struct {
	roles       core.RoleRepository
	permissions core.PermissionRepository
	assignments core.AssignmentRepository
	grants      core.GrantRepository
	logger      *slog.Logger
}

// NewDirectoryService creates a DirectoryService.
func NewDirectoryService(opts DirectoryServiceOptions) (*DirectoryService, error) {
	if opts.Roles == nil || opts.Permissions == nil || opts.Assignments == nil || opts.Grants == nil {
		return nil, errors.New("all directory repositories are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DirectoryService{
		roles:       opts.Roles,
		permissions: opts.Permissions,
		assignments: opts.Assignments,
		grants:      opts.Grants,
		logger:      opts.Logger.With("component", "directory_service"),
	}, nil
}

// CreateRole creates a role with its permission key list.
func (s *DirectoryService) CreateRole(ctx context.Context, req *model.CreateRoleRequest) (*model.Role, error) {
	return s.roles.Create(ctx, req)
}

// GetRole retrieves a role by ID.
func (s *DirectoryService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	return s.roles.GetByID(ctx, id)
}

// GetRoleByName retrieves a role by its unique name.
func (s *DirectoryService) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return s.roles.GetByName(ctx, name)
}

// ListRoles lists roles with pagination.
func (s *DirectoryService) ListRoles(ctx context.Context, limit, offset int) ([]*model.Role, error) {
	return s.roles.List(ctx, limit, offset)
}

// UpdateRole updates a role's name and/or permission key list. System roles
// may change their permissions but not their name.
func (s *DirectoryService) UpdateRole(ctx context.Context, id string, req model.UpdateRoleRequest) (*model.Role, error) {
	if req.Name != nil {
		current, err := s.roles.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.System {
			return nil, ErrSystemRole
		}
	}
	return s.roles.Update(ctx, id, req)
}

// DeleteRole deletes a role. Roles still referenced by an assignment and
// system roles are refused.
func (s *DirectoryService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.System {
		return ErrSystemRole
	}

	count, err := s.roles.AssignmentCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count role assignments: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d assignment(s)", ErrRoleInUse, count)
	}

	ok, err := s.roles.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return data.ErrRoleNotFound
	}
	s.logger.InfoContext(ctx, "role deleted", "role_id", id, "name", role.Name)
	return nil
}

// CreatePermission registers a permission key.
func (s *DirectoryService) CreatePermission(ctx context.Context, req *model.CreatePermissionRequest) (*model.Permission, error) {
	return s.permissions.Create(ctx, req)
}

// ListPermissions lists all registered permission keys.
func (s *DirectoryService) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	return s.permissions.List(ctx)
}

// DeletePermission removes a permission key. Keys referenced by a role are
// refused by the data layer.
func (s *DirectoryService) DeletePermission(ctx context.Context, key string) error {
	ok, err := s.permissions.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return data.ErrPermissionNotFound
	}
	return nil
}

// AssignRole grants a role to a user, optionally scoped to a company code.
func (s *DirectoryService) AssignRole(ctx context.Context, req *model.CreateAssignmentRequest) (*model.UserRoleAssignment, error) {
	assignment, err := s.assignments.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "role assigned",
		"identity_key", assignment.IdentityKey,
		"role", assignment.RoleName)
	return assignment, nil
}

// ListAssignments lists assignments with pagination.
func (s *DirectoryService) ListAssignments(ctx context.Context, limit, offset int) ([]*model.UserRoleAssignment, error) {
	return s.assignments.List(ctx, limit, offset)
}

// ListAssignmentsFor lists the assignments of one user.
func (s *DirectoryService) ListAssignmentsFor(ctx context.Context, username string) ([]*model.UserRoleAssignment, error) {
	return s.assignments.ListByIdentity(ctx, domainauth.IdentityKeyOf(username))
}

// RevokeAssignment deletes a role assignment.
func (s *DirectoryService) RevokeAssignment(ctx context.Context, id string) error {
	ok, err := s.assignments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return data.ErrAssignmentNotFound
	}
	return nil
}

// GrantBuildingAccess grants a user access to a building.
func (s *DirectoryService) GrantBuildingAccess(ctx context.Context, req *model.CreateGrantRequest) (*model.BuildingAccessGrant, error) {
	return s.grants.Create(ctx, domainauth.IdentityKeyOf(req.Username), req)
}

// ListBuildingGrantsFor lists a user's building access grants.
func (s *DirectoryService) ListBuildingGrantsFor(ctx context.Context, username string) ([]*model.BuildingAccessGrant, error) {
	return s.grants.ListByIdentity(ctx, domainauth.IdentityKeyOf(username))
}

// RevokeBuildingAccess deletes a building access grant.
func (s *DirectoryService) RevokeBuildingAccess(ctx context.Context, id string) error {
	ok, err := s.grants.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return data.ErrGrantNotFound
	}
	return nil
}
