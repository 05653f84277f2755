package httpx

import (
	"errors"
	"net/http"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/service"
)

var errMissingUsername = errors.New("username query parameter is required")

// DirectoryHandlers serves role, permission, assignment, and grant admin
// endpoints.
type DirectoryHandlers struct {
	Svc *service.DirectoryService
}

// CreateRole handles POST /api/roles.
func (h *DirectoryHandlers) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	role, err := h.Svc.CreateRole(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, role)
}

// GetRole handles GET /api/roles/{id}.
func (h *DirectoryHandlers) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.Svc.GetRole(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, role)
}

// ListRoles handles GET /api/roles.
func (h *DirectoryHandlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	roles, err := h.Svc.ListRoles(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"roles": roles, "limit": limit, "offset": offset})
}

// UpdateRole handles PUT /api/roles/{id}.
func (h *DirectoryHandlers) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	role, err := h.Svc.UpdateRole(r.Context(), r.PathValue("id"), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, role)
}

// DeleteRole handles DELETE /api/roles/{id}.
func (h *DirectoryHandlers) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteRole(r.Context(), r.PathValue("id")); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePermission handles POST /api/permissions.
func (h *DirectoryHandlers) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req *model.CreatePermissionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	perm, err := h.Svc.CreatePermission(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, perm)
}

// ListPermissions handles GET /api/permissions.
func (h *DirectoryHandlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Svc.ListPermissions(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

// DeletePermission handles DELETE /api/permissions/{key}.
func (h *DirectoryHandlers) DeletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeletePermission(r.Context(), r.PathValue("key")); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignRole handles POST /api/assignments.
func (h *DirectoryHandlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateAssignmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	assignment, err := h.Svc.AssignRole(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, assignment)
}

// ListAssignments handles GET /api/assignments?username=<optional>.
func (h *DirectoryHandlers) ListAssignments(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		assignments, err := h.Svc.ListAssignmentsFor(r.Context(), username)
		if err != nil {
			RenderError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
		return
	}

	limit, offset := ParseLimitOffset(r, 50, 200)
	assignments, err := h.Svc.ListAssignments(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assignments": assignments, "limit": limit, "offset": offset})
}

// RevokeAssignment handles DELETE /api/assignments/{id}.
func (h *DirectoryHandlers) RevokeAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.RevokeAssignment(r.Context(), r.PathValue("id")); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GrantBuildingAccess handles POST /api/building-grants.
func (h *DirectoryHandlers) GrantBuildingAccess(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateGrantRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	grant, err := h.Svc.GrantBuildingAccess(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, grant)
}

// ListBuildingGrants handles GET /api/building-grants?username=<required>.
func (h *DirectoryHandlers) ListBuildingGrants(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_username",
			Err:     errMissingUsername,
		})
		return
	}

	grants, err := h.Svc.ListBuildingGrantsFor(r.Context(), username)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"grants": grants})
}

// RevokeBuildingAccess handles DELETE /api/building-grants/{id}.
func (h *DirectoryHandlers) RevokeBuildingAccess(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.RevokeBuildingAccess(r.Context(), r.PathValue("id")); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
