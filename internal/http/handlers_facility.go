package httpx

import (
	"errors"
	"net/http"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/service"
)

// FacilityHandlers serves building, room, bed, and occupancy endpoints.
type FacilityHandlers struct {
	Svc *service.FacilityService
}

// CreateBuilding handles POST /api/buildings.
func (h *FacilityHandlers) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateBuildingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	building, err := h.Svc.CreateBuilding(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, building)
}

// GetBuilding handles GET /api/buildings/{id}.
func (h *FacilityHandlers) GetBuilding(w http.ResponseWriter, r *http.Request) {
	building, err := h.Svc.GetBuilding(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, building)
}

// ListBuildings handles GET /api/buildings.
func (h *FacilityHandlers) ListBuildings(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	buildings, err := h.Svc.ListBuildings(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"buildings": buildings, "limit": limit, "offset": offset})
}

// CreateRoom handles POST /api/buildings/{id}/rooms.
func (h *FacilityHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateRoomRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.BuildingID = r.PathValue("id")

	room, err := h.Svc.CreateRoom(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, room)
}

// ListRooms handles GET /api/buildings/{id}/rooms.
func (h *FacilityHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Svc.ListRooms(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// CreateBed handles POST /api/rooms/{id}/beds.
func (h *FacilityHandlers) CreateBed(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateBedRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.RoomID = r.PathValue("id")

	bed, err := h.Svc.CreateBed(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, bed)
}

// ListBeds handles GET /api/rooms/{id}/beds.
func (h *FacilityHandlers) ListBeds(w http.ResponseWriter, r *http.Request) {
	beds, err := h.Svc.ListBeds(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"beds": beds})
}

// SetBedStatus handles PUT /api/beds/{id}/status. Only the maintenance
// cycle is allowed here; reservation states change through bookings.
func (h *FacilityHandlers) SetBedStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.BedStatus `json:"status"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_status",
			Err:     errors.New("status must be one of: available, reserved, occupied, maintenance"),
		})
		return
	}

	bed, err := h.Svc.SetBedStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, bed)
}

// Occupancy handles GET /api/occupancy. The summaries are scoped to the
// caller's building grants; a caller with no grants sees every building.
func (h *FacilityHandlers) Occupancy(w http.ResponseWriter, r *http.Request) {
	var buildingIDs []string
	if access, ok := AccessFromContext(r.Context()); ok {
		for _, b := range access.Buildings {
			buildingIDs = append(buildingIDs, b.ID)
		}
	}

	summaries, err := h.Svc.Occupancy(r.Context(), buildingIDs)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"buildings": summaries})
}
