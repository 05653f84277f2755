package model

import (
	"errors"
	"strings"
	"time"
)

// UserRoleAssignment binds an identity to a role, optionally narrowed to a
// company scope. The tuple (identity key, role, company scope) is unique:
// the same person may hold different roles in different company scopes, but
// not the same role twice in the same scope. Renaming a person is modeled as
// delete+recreate; the identity key is never mutated in place.
type UserRoleAssignment struct {
	ID          string    `json:"id"           db:"id"`
	IdentityKey string    `json:"identity_key" db:"identity_key"`
	Username    string    `json:"username"     db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email"        db:"email"`
	RoleID      string    `json:"role_id"      db:"role_id"`
	RoleName    string    `json:"role_name"    db:"role_name"`
	CompanyCode *string   `json:"company_code,omitempty" db:"company_code"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// CreateAssignmentRequest carries fields for assigning a role to a user.
// The identity key is derived from Username by case-folding; the username is
// stored as given for display.
type CreateAssignmentRequest struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	RoleID      string  `json:"role_id"`
	CompanyCode *string `json:"company_code,omitempty"`
}

// Validate checks the assignment request fields.
func (r *CreateAssignmentRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.RoleID) == "" {
		return errors.New("role ID is required")
	}
	if r.CompanyCode != nil && strings.TrimSpace(*r.CompanyCode) == "" {
		return errors.New("company code cannot be empty when provided")
	}
	return nil
}

// BuildingAccessGrant gives an identity location-scoped access to a building,
// independent of role-based permission keys. Unique per (identity key,
// building).
type BuildingAccessGrant struct {
	ID          string    `json:"id"           db:"id"`
	IdentityKey string    `json:"identity_key" db:"identity_key"`
	BuildingID  string    `json:"building_id"  db:"building_id"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// CreateGrantRequest carries fields for granting building access.
type CreateGrantRequest struct {
	Username   string `json:"username"`
	BuildingID string `json:"building_id"`
}

// Validate checks the grant request fields.
func (r *CreateGrantRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.BuildingID) == "" {
		return errors.New("building ID is required")
	}
	return nil
}
