package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxRoleNameLen       = 100
	maxPermissionKeyLen  = 150
	maxPermissionDescLen = 500
)

// Role is a named bundle of permission keys. System roles are seeded and
// cannot be deleted through the admin surface.
type Role struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	System    bool      `json:"system"     db:"system"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// PermissionKeys is populated by the repository when loading a role with
	// its permissions; it is not a column of the roles table.
	PermissionKeys []string `json:"permission_keys" db:"-"`
}

// Permission is an opaque permission key with display metadata. The key is
// immutable once any role references it.
type Permission struct {
	Key         string    `json:"key"         db:"key"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category"    db:"category"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}

// CreateRoleRequest carries fields for creating a role.
type CreateRoleRequest struct {
	Name           string   `json:"name"`
	System         bool     `json:"system"`
	PermissionKeys []string `json:"permission_keys"`
}

// Validate checks the create request fields.
func (r *CreateRoleRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("role name is required")
	}
	if utf8.RuneCountInString(name) > maxRoleNameLen {
		return errors.New("role name is too long")
	}
	for _, k := range r.PermissionKeys {
		if strings.TrimSpace(k) == "" {
			return errors.New("permission key cannot be empty")
		}
	}
	return nil
}

// UpdateRoleRequest carries optional fields for updating a role. A nil field
// is left unchanged; a non-nil PermissionKeys replaces the full key list.
type UpdateRoleRequest struct {
	Name           *string   `json:"name,omitempty"`
	PermissionKeys *[]string `json:"permission_keys,omitempty"`
}

// Validate checks the update request fields.
func (r *UpdateRoleRequest) Validate() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return errors.New("role name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxRoleNameLen {
			return errors.New("role name is too long")
		}
	}
	if r.PermissionKeys != nil {
		for _, k := range *r.PermissionKeys {
			if strings.TrimSpace(k) == "" {
				return errors.New("permission key cannot be empty")
			}
		}
	}
	return nil
}

// CreatePermissionRequest carries fields for registering a permission key.
type CreatePermissionRequest struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Validate checks the permission fields.
func (r *CreatePermissionRequest) Validate() error {
	key := strings.TrimSpace(r.Key)
	if key == "" {
		return errors.New("permission key is required")
	}
	if utf8.RuneCountInString(key) > maxPermissionKeyLen {
		return errors.New("permission key is too long")
	}
	if strings.ContainsAny(key, " \t\n") {
		return errors.New("permission key cannot contain whitespace")
	}
	if utf8.RuneCountInString(r.Description) > maxPermissionDescLen {
		return errors.New("permission description is too long")
	}
	return nil
}
