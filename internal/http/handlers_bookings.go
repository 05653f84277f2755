package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/service"
)

// BookingWorkflow is the slice of the booking service the handlers use.
type BookingWorkflow interface {
	Submit(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingRequest, error)
	Get(ctx context.Context, id string) (*model.BookingRequest, error)
	GetByReference(ctx context.Context, reference string) (*model.BookingRequest, error)
	List(ctx context.Context, opts model.BookingsListOptions) ([]*model.BookingRequest, error)
	Approve(ctx context.Context, bookingID, decidedBy string) (*model.BookingRequest, error)
	Reject(ctx context.Context, bookingID, decidedBy string) (*model.BookingRequest, error)
	CheckIn(ctx context.Context, bookingID string) (*model.BookingRequest, error)
	CheckOut(ctx context.Context, bookingID string) (*model.BookingRequest, error)
	Cancel(ctx context.Context, bookingID string) (*model.BookingRequest, error)
}

var _ BookingWorkflow = (*service.BookingService)(nil)

// BookingHandlers serves the booking request workflow endpoints.
type BookingHandlers struct {
	Svc BookingWorkflow
}

// Submit handles POST /api/bookings. The booking is recorded for the
// authenticated user; the username in the body is ignored.
func (h *BookingHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "authentication required")
		return
	}

	var req *model.CreateBookingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Username = sess.Username

	booking, err := h.Svc.Submit(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, booking)
}

// Get handles GET /api/bookings/{id}. Lookups by ULID reference go through
// GetByReference on /api/bookings/ref/{reference}.
func (h *BookingHandlers) Get(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}

// GetByReference handles GET /api/bookings/ref/{reference}.
func (h *BookingHandlers) GetByReference(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Svc.GetByReference(r.Context(), r.PathValue("reference"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}

// List handles GET /api/bookings?status=<s>&building_id=<id>&mine=true.
// Wildcard holders see everything. Everyone else is scoped to the buildings
// they hold grants for; with no grants at all they see only their own
// bookings.
func (h *BookingHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.BookingsListOptions{Limit: limit, Offset: offset}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.BookingStatus(raw)
		if !status.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("unknown booking status"),
			})
			return
		}
		opts.Status = &status
	}

	access, hasAccess := AccessFromContext(r.Context())
	scoped := hasAccess && !access.Permissions.Has(domainauth.WildcardPermission)

	if buildingID := r.URL.Query().Get("building_id"); buildingID != "" {
		if scoped && !access.HasBuilding(buildingID) {
			forbidden(w, "no access grant for this building")
			return
		}
		opts.BuildingID = &buildingID
	}
	if r.URL.Query().Get("mine") == "true" {
		if sess, ok := SessionFromContext(r.Context()); ok {
			key := domainauth.IdentityKeyOf(sess.Username)
			opts.IdentityKey = &key
		}
	}
	if scoped && opts.IdentityKey == nil {
		if len(access.Buildings) > 0 {
			for _, b := range access.Buildings {
				opts.BuildingIDs = append(opts.BuildingIDs, b.ID)
			}
		} else if sess, ok := SessionFromContext(r.Context()); ok {
			key := domainauth.IdentityKeyOf(sess.Username)
			opts.IdentityKey = &key
		}
	}

	bookings, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "limit": limit, "offset": offset})
}

// Approve handles POST /api/bookings/{id}/approve. The decision is recorded
// under the approving user's identity key.
func (h *BookingHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Approve)
}

// Reject handles POST /api/bookings/{id}/reject.
func (h *BookingHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Reject)
}

func (h *BookingHandlers) decide(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, bookingID, decidedBy string) (*model.BookingRequest, error),
) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "authentication required")
		return
	}

	booking, err := fn(r.Context(), r.PathValue("id"), domainauth.IdentityKeyOf(sess.Username))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}

// CheckIn handles POST /api/bookings/{id}/checkin.
func (h *BookingHandlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Svc.CheckIn(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}

// CheckOut handles POST /api/bookings/{id}/checkout.
func (h *BookingHandlers) CheckOut(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Svc.CheckOut(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}

// Cancel handles POST /api/bookings/{id}/cancel. Deciders may cancel any
// booking; everyone else only their own.
func (h *BookingHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "authentication required")
		return
	}
	access, ok := AccessFromContext(r.Context())
	if !ok {
		unauthorized(w, "authentication required")
		return
	}

	id := r.PathValue("id")
	if !access.Permissions.Has(PermBookingDecide) {
		booking, err := h.Svc.Get(r.Context(), id)
		if err != nil {
			RenderError(w, err)
			return
		}
		if booking.IdentityKey != domainauth.IdentityKeyOf(sess.Username) {
			forbidden(w, "only the requesting user or a decider may cancel")
			return
		}
	}

	booking, err := h.Svc.Cancel(r.Context(), id)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, booking)
}
