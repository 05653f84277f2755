package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	mockauth "github.com/gpjen/bookingroom/internal/mocks/auth"
	"github.com/gpjen/bookingroom/internal/ports"
)

func strPtr(s string) *string { return &s }

func TestPermissionService_Resolve(t *testing.T) {
	directory := &mockauth.StaticDirectory{
		Roles: map[string][]ports.RoleGrant{
			"jane.doe": {
				{RoleName: "viewer", PermissionKeys: []string{"bookings.read", "facility.read"}},
				{RoleName: "approver", CompanyCode: strPtr("ACME"), PermissionKeys: []string{"bookings.approve", "bookings.read"}},
				{RoleName: "viewer", CompanyCode: strPtr("acme"), PermissionKeys: []string{"bookings.read"}},
			},
		},
		Buildings: map[string][]domainauth.BuildingRef{
			"jane.doe": {
				{ID: "b-1", Code: "B1", Name: "North Dorm", Area: "north"},
			},
		},
	}
	svc, err := NewPermissionService(PermissionServiceOptions{Directory: directory})
	require.NoError(t, err)

	// Username case and whitespace never affect resolution.
	access, err := svc.Resolve(context.Background(), "  Jane.DOE ")
	require.NoError(t, err)

	assert.Equal(t, "jane.doe", access.IdentityKey)
	assert.Equal(t, []string{"viewer", "approver"}, access.Roles)
	assert.Equal(t, []string{"bookings.approve", "bookings.read", "facility.read"}, access.Permissions.Keys())
	assert.Equal(t, []string{"acme"}, access.Companies)
	require.Len(t, access.Buildings, 1)
	assert.True(t, access.HasBuilding("b-1"))
	assert.True(t, access.Provisioned())
}

func TestPermissionService_Resolve_NotProvisioned(t *testing.T) {
	svc, err := NewPermissionService(PermissionServiceOptions{Directory: &mockauth.StaticDirectory{}})
	require.NoError(t, err)

	access, err := svc.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, access.Provisioned())
	assert.Empty(t, access.Roles)
	assert.Empty(t, access.Buildings)
	assert.False(t, access.Permissions.Has("bookings.read"))
}

func TestPermissionService_Resolve_Wildcard(t *testing.T) {
	directory := &mockauth.StaticDirectory{
		Roles: map[string][]ports.RoleGrant{
			"root": {{RoleName: "superadmin", PermissionKeys: []string{domainauth.WildcardPermission}}},
		},
	}
	svc, err := NewPermissionService(PermissionServiceOptions{Directory: directory})
	require.NoError(t, err)

	access, err := svc.Resolve(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, access.Permissions.Has("anything.at.all"))
}

func TestPermissionService_Resolve_CaseFoldedRoundTrip(t *testing.T) {
	directory := &mockauth.StaticDirectory{
		Roles: map[string][]ports.RoleGrant{
			"l0721001028": {
				{RoleName: "super-admin", CompanyCode: strPtr("HPAL"), PermissionKeys: []string{domainauth.WildcardPermission}},
			},
		},
	}
	svc, err := NewPermissionService(PermissionServiceOptions{Directory: directory})
	require.NoError(t, err)

	// Assignment stored lowercase, lookup arrives in badge-number casing.
	access, err := svc.Resolve(context.Background(), "L0721001028")
	require.NoError(t, err)

	assert.Equal(t, []string{"super-admin"}, access.Roles)
	assert.True(t, access.Permissions.Has(domainauth.WildcardPermission))
	assert.True(t, access.Permissions.Has("bookings.read"))
	assert.Equal(t, []string{"hpal"}, access.Companies)
}

func TestPermissionService_Resolve_AllOrNothing(t *testing.T) {
	boom := errors.New("directory down")

	for name, directory := range map[string]*mockauth.StaticDirectory{
		"role lookup fails":     {RoleErr: boom},
		"building lookup fails": {BuildingErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			svc, err := NewPermissionService(PermissionServiceOptions{Directory: directory})
			require.NoError(t, err)

			_, err = svc.Resolve(context.Background(), "jane")
			require.ErrorIs(t, err, boom)
		})
	}
}

func TestPermissionService_Resolve_EmptyUsername(t *testing.T) {
	svc, err := NewPermissionService(PermissionServiceOptions{Directory: &mockauth.StaticDirectory{}})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "   ")
	require.Error(t, err)
}
