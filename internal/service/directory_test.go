package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/mocks"
)

type directoryMocks struct {
	roles       *mocks.MockRoleRepository
	permissions *mocks.MockPermissionRepository
	assignments *mocks.MockAssignmentRepository
	grants      *mocks.MockGrantRepository
}

func newTestDirectoryService(t *testing.T) (*DirectoryService, directoryMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := directoryMocks{
		roles:       mocks.NewMockRoleRepository(ctrl),
		permissions: mocks.NewMockPermissionRepository(ctrl),
		assignments: mocks.NewMockAssignmentRepository(ctrl),
		grants:      mocks.NewMockGrantRepository(ctrl),
	}
	svc, err := NewDirectoryService(DirectoryServiceOptions{
		Roles:       m.roles,
		Permissions: m.permissions,
		Assignments: m.assignments,
		Grants:      m.grants,
	})
	require.NoError(t, err)
	return svc, m
}

func TestNewDirectoryService_RequiredDependencies(t *testing.T) {
	svc, err := NewDirectoryService(DirectoryServiceOptions{})
	require.Error(t, err)
	assert.Nil(t, svc)
}

func TestDirectoryService_DeleteRole_Success(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	m.roles.EXPECT().GetByID(ctx, "role-1").Return(&model.Role{ID: "role-1", Name: "viewer"}, nil)
	m.roles.EXPECT().AssignmentCount(ctx, "role-1").Return(0, nil)
	m.roles.EXPECT().Delete(ctx, "role-1").Return(true, nil)

	require.NoError(t, svc.DeleteRole(ctx, "role-1"))
}

func TestDirectoryService_DeleteRole_InUse(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	m.roles.EXPECT().GetByID(ctx, "role-1").Return(&model.Role{ID: "role-1", Name: "viewer"}, nil)
	m.roles.EXPECT().AssignmentCount(ctx, "role-1").Return(3, nil)

	err := svc.DeleteRole(ctx, "role-1")
	require.ErrorIs(t, err, ErrRoleInUse)
	assert.Contains(t, err.Error(), "3 assignment")
}

func TestDirectoryService_DeleteRole_SystemRefused(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	m.roles.EXPECT().GetByID(ctx, "role-sys").Return(&model.Role{ID: "role-sys", Name: "superadmin", System: true}, nil)

	err := svc.DeleteRole(ctx, "role-sys")
	require.ErrorIs(t, err, ErrSystemRole)
}

func TestDirectoryService_UpdateRole_SystemRenameRefused(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	m.roles.EXPECT().GetByID(ctx, "role-sys").Return(&model.Role{ID: "role-sys", Name: "superadmin", System: true}, nil)

	name := "renamed"
	_, err := svc.UpdateRole(ctx, "role-sys", model.UpdateRoleRequest{Name: &name})
	require.ErrorIs(t, err, ErrSystemRole)
}

func TestDirectoryService_UpdateRole_SystemPermissionsAllowed(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	keys := []string{"bookings.read"}
	req := model.UpdateRoleRequest{PermissionKeys: &keys}
	updated := &model.Role{ID: "role-sys", Name: "superadmin", System: true, PermissionKeys: keys}
	m.roles.EXPECT().Update(ctx, "role-sys", req).Return(updated, nil)

	role, err := svc.UpdateRole(ctx, "role-sys", req)
	require.NoError(t, err)
	assert.Equal(t, keys, role.PermissionKeys)
}

func TestDirectoryService_AssignRole(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	req := &model.CreateAssignmentRequest{Username: "Jane", RoleID: "role-1"}
	created := &model.UserRoleAssignment{ID: "a-1", IdentityKey: "jane", RoleName: "viewer"}
	m.assignments.EXPECT().Create(ctx, req).Return(created, nil)

	assignment, err := svc.AssignRole(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "jane", assignment.IdentityKey)
}

func TestDirectoryService_RevokeAssignment_NotFound(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	m.assignments.EXPECT().Delete(ctx, "a-404").Return(false, nil)

	err := svc.RevokeAssignment(ctx, "a-404")
	require.Error(t, err)
}

func TestDirectoryService_GrantBuildingAccess_FoldsIdentity(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	req := &model.CreateGrantRequest{Username: " Jane.DOE ", BuildingID: "b-1"}
	m.grants.EXPECT().Create(ctx, "jane.doe", req).Return(&model.BuildingAccessGrant{ID: "g-1"}, nil)

	_, err := svc.GrantBuildingAccess(ctx, req)
	require.NoError(t, err)
}

func TestDirectoryService_DeletePermission_Propagates(t *testing.T) {
	svc, m := newTestDirectoryService(t)
	ctx := context.Background()

	boom := errors.New("still referenced")
	m.permissions.EXPECT().Delete(ctx, "bookings.read").Return(false, boom)

	err := svc.DeletePermission(ctx, "bookings.read")
	require.ErrorIs(t, err, boom)
}
