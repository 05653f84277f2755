package httpx

import (
	"net/http"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/service"
)

// WebhookHandlers serves webhook sink admin endpoints.
type WebhookHandlers struct {
	Svc *service.WebhookService
}

// Create handles POST /api/webhook-sinks.
func (h *WebhookHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateWebhookSinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sink, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sink)
}

// Get handles GET /api/webhook-sinks/{id}.
func (h *WebhookHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sink, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sink)
}

// List handles GET /api/webhook-sinks.
func (h *WebhookHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	sinks, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sinks": sinks, "limit": limit, "offset": offset})
}

// SetEnabled handles PUT /api/webhook-sinks/{id}/enabled.
func (h *WebhookHandlers) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	sink, err := h.Svc.SetEnabled(r.Context(), r.PathValue("id"), req.Enabled)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sink)
}

// Delete handles DELETE /api/webhook-sinks/{id}.
func (h *WebhookHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
