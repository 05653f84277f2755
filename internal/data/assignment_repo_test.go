package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/testutil"
)

func TestAssignmentRepo_CreateFoldsIdentityKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	roles := NewRoleRepo(db)
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	role, err := roles.Create(ctx, &model.CreateRoleRequest{Name: "resident"})
	require.NoError(t, err)

	a, err := repo.Create(ctx, &model.CreateAssignmentRequest{
		Username:    "  John.DOE ",
		DisplayName: "John Doe",
		Email:       "john.doe@example.com",
		RoleID:      role.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "john.doe", a.IdentityKey)
	assert.Equal(t, "John.DOE", a.Username)
	assert.Equal(t, "resident", a.RoleName)
	assert.Nil(t, a.CompanyCode)
}

func TestAssignmentRepo_DuplicateScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	roles := NewRoleRepo(db)
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	role, err := roles.Create(ctx, &model.CreateRoleRequest{Name: "resident"})
	require.NoError(t, err)

	company := "ACME"
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "jane", RoleID: role.ID, CompanyCode: &company})
	require.NoError(t, err)

	// Same role in the same company scope, despite case differences.
	companyLower := "acme"
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "JANE", RoleID: role.ID, CompanyCode: &companyLower})
	assert.ErrorIs(t, err, ErrAssignmentExists)

	// A different scope is allowed.
	other := "globex"
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "jane", RoleID: role.ID, CompanyCode: &other})
	assert.NoError(t, err)

	// Unscoped is its own scope.
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "jane", RoleID: role.ID})
	assert.NoError(t, err)
}

func TestAssignmentRepo_MissingRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewAssignmentRepo(db)
	_, err := repo.Create(context.Background(), &model.CreateAssignmentRequest{
		Username: "jane",
		RoleID:   "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, ErrAssignmentRoleMissing)
}

func TestAssignmentRepo_RoleGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	perms := NewPermissionRepo(db)
	seedPermissions(t, perms, "bookings.read", "bookings.approve", "facility.manage")

	roles := NewRoleRepo(db)
	repo := NewAssignmentRepo(db)
	ctx := context.Background()

	viewer, err := roles.Create(ctx, &model.CreateRoleRequest{Name: "viewer", PermissionKeys: []string{"bookings.read"}})
	require.NoError(t, err)
	admin, err := roles.Create(ctx, &model.CreateRoleRequest{
		Name:           "admin",
		PermissionKeys: []string{"bookings.approve", "facility.manage"},
	})
	require.NoError(t, err)

	company := "acme"
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "Jane", RoleID: viewer.ID})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.CreateAssignmentRequest{Username: "jane", RoleID: admin.ID, CompanyCode: &company})
	require.NoError(t, err)

	grants, err := repo.RoleGrants(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "viewer", grants[0].RoleName)
	assert.Equal(t, []string{"bookings.read"}, grants[0].PermissionKeys)
	assert.Equal(t, "admin", grants[1].RoleName)
	require.NotNil(t, grants[1].CompanyCode)
	assert.Equal(t, "acme", *grants[1].CompanyCode)

	none, err := repo.RoleGrants(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGrantRepo_BuildingGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	grants := NewGrantRepo(db)
	directory := NewAssignmentRepo(db)
	ctx := context.Background()

	b1, err := buildings.CreateBuilding(ctx, &model.CreateBuildingRequest{Code: "B1", Name: "North Dorm", Area: "north"})
	require.NoError(t, err)
	b2, err := buildings.CreateBuilding(ctx, &model.CreateBuildingRequest{Code: "B2", Name: "South Dorm", Area: "south"})
	require.NoError(t, err)

	_, err = grants.Create(ctx, "jane", &model.CreateGrantRequest{Username: "jane", BuildingID: b2.ID})
	require.NoError(t, err)
	_, err = grants.Create(ctx, "jane", &model.CreateGrantRequest{Username: "jane", BuildingID: b1.ID})
	require.NoError(t, err)

	// Duplicate grant for the same building.
	_, err = grants.Create(ctx, "jane", &model.CreateGrantRequest{Username: "jane", BuildingID: b1.ID})
	assert.ErrorIs(t, err, ErrGrantExists)

	refs, err := directory.BuildingGrants(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "B1", refs[0].Code)
	assert.Equal(t, "B2", refs[1].Code)

	list, err := grants.ListByIdentity(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, list, 2)
	ok, err := grants.Delete(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
