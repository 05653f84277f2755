package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gpjen/bookingroom/internal/observability/metrics"
	"github.com/gpjen/bookingroom/internal/service"
)

// Canonical permission keys consulted by the route guard. The wildcard key
// "*" satisfies all of them.
const (
	PermDirectoryAdmin = "directory:admin"
	PermFacilityManage = "facility:manage"
	PermBookingRead    = "booking:read"
	PermBookingSubmit  = "booking:submit"
	PermBookingDecide  = "booking:decide"
	PermOccupancyRead  = "occupancy:read"
	PermWebhookAdmin   = "webhook:admin"
)

// DefaultGuardRules is the static path-to-permission table. Longest prefix
// wins; paths with no entry are open to any provisioned user.
func DefaultGuardRules() []GuardRule {
	return []GuardRule{
		{Prefix: "/api/roles", Permissions: []string{PermDirectoryAdmin}},
		{Prefix: "/api/permissions", Permissions: []string{PermDirectoryAdmin}},
		{Prefix: "/api/assignments", Permissions: []string{PermDirectoryAdmin}},
		{Prefix: "/api/building-grants", Permissions: []string{PermDirectoryAdmin}},
		{Prefix: "/api/buildings", Permissions: []string{PermFacilityManage, PermOccupancyRead}},
		{Prefix: "/api/rooms", Permissions: []string{PermFacilityManage}},
		{Prefix: "/api/beds", Permissions: []string{PermFacilityManage}},
		{Prefix: "/api/occupancy", Permissions: []string{PermOccupancyRead, PermFacilityManage}},
		{Prefix: "/api/bookings", Permissions: []string{PermBookingRead, PermBookingSubmit, PermBookingDecide}},
		{Prefix: "/api/webhook-sinks", Permissions: []string{PermWebhookAdmin}},
	}
}

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth      *service.AuthService
	Resolver  *service.PermissionService
	Directory *service.DirectoryService
	Facility  *service.FacilityService
	Bookings  *service.BookingService
	Webhooks  *service.WebhookService

	GuardRules []GuardRule // nil means DefaultGuardRules
	SessionTTL time.Duration
	Metrics    *metrics.HTTPMetrics
	LoginRate  int // login attempts per minute per IP; 0 means default
	LoginBurst int
	Logger     *slog.Logger
}

// NewRouter builds the HTTP handler tree. Auth endpoints are public with a
// per-IP rate limit on login; everything under /api requires an authorized
// session and passes the route guard.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := services.GuardRules
	if rules == nil {
		rules = DefaultGuardRules()
	}
	guard := NewRouteGuard(rules)

	authHandlers := &AuthHandlers{
		Svc:        services.Auth,
		Resolver:   services.Resolver,
		SessionTTL: services.SessionTTL,
		Logger:     logger,
	}
	directoryHandlers := &DirectoryHandlers{Svc: services.Directory}
	facilityHandlers := &FacilityHandlers{Svc: services.Facility}
	bookingHandlers := &BookingHandlers{Svc: services.Bookings}
	webhookHandlers := &WebhookHandlers{Svc: services.Webhooks}

	loginLimit := LoginRateLimit(services.LoginRate, services.LoginBurst)
	mux.Handle("GET /auth/login", loginLimit(http.HandlerFunc(authHandlers.Login)))
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	// Session-only endpoint: provisioning state is part of the answer, so
	// the guard does not gate it.
	session := RequireSession(services.Auth, services.Metrics)
	mux.Handle("GET /api/me/permissions", session(http.HandlerFunc(authHandlers.Permissions)))

	// Everything else under /api runs behind session authorization plus the
	// route guard.
	api := http.NewServeMux()
	registerDirectoryRoutes(api, directoryHandlers)
	registerFacilityRoutes(api, facilityHandlers)
	registerBookingRoutes(api, bookingHandlers)
	registerWebhookRoutes(api, webhookHandlers)
	guarded := session(guard.Middleware(services.Resolver)(api))
	for _, prefix := range []string{
		"/api/roles", "/api/permissions", "/api/assignments", "/api/building-grants",
		"/api/buildings", "/api/rooms", "/api/beds", "/api/occupancy",
		"/api/bookings", "/api/webhook-sinks",
	} {
		mux.Handle(prefix, guarded)
		mux.Handle(prefix+"/", guarded)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}

	var handler http.Handler = mux
	if services.Metrics != nil {
		handler = Instrument(services.Metrics, "all")(handler)
	}
	handler = Logging(logger)(handler)
	handler = RequestID()(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerDirectoryRoutes(mux *http.ServeMux, h *DirectoryHandlers) {
	mux.HandleFunc("POST /api/roles", h.CreateRole)
	mux.HandleFunc("GET /api/roles", h.ListRoles)
	mux.HandleFunc("GET /api/roles/{id}", h.GetRole)
	mux.HandleFunc("PUT /api/roles/{id}", h.UpdateRole)
	mux.HandleFunc("DELETE /api/roles/{id}", h.DeleteRole)

	mux.HandleFunc("POST /api/permissions", h.CreatePermission)
	mux.HandleFunc("GET /api/permissions", h.ListPermissions)
	mux.HandleFunc("DELETE /api/permissions/{key}", h.DeletePermission)

	mux.HandleFunc("POST /api/assignments", h.AssignRole)
	mux.HandleFunc("GET /api/assignments", h.ListAssignments)
	mux.HandleFunc("DELETE /api/assignments/{id}", h.RevokeAssignment)

	mux.HandleFunc("POST /api/building-grants", h.GrantBuildingAccess)
	mux.HandleFunc("GET /api/building-grants", h.ListBuildingGrants)
	mux.HandleFunc("DELETE /api/building-grants/{id}", h.RevokeBuildingAccess)
}

func registerFacilityRoutes(mux *http.ServeMux, h *FacilityHandlers) {
	mux.HandleFunc("POST /api/buildings", h.CreateBuilding)
	mux.HandleFunc("GET /api/buildings", h.ListBuildings)
	mux.HandleFunc("GET /api/buildings/{id}", h.GetBuilding)
	mux.HandleFunc("POST /api/buildings/{id}/rooms", h.CreateRoom)
	mux.HandleFunc("GET /api/buildings/{id}/rooms", h.ListRooms)

	mux.HandleFunc("POST /api/rooms/{id}/beds", h.CreateBed)
	mux.HandleFunc("GET /api/rooms/{id}/beds", h.ListBeds)
	mux.HandleFunc("PUT /api/beds/{id}/status", h.SetBedStatus)

	mux.HandleFunc("GET /api/occupancy", h.Occupancy)
}

func registerBookingRoutes(mux *http.ServeMux, h *BookingHandlers) {
	mux.HandleFunc("POST /api/bookings", h.Submit)
	mux.HandleFunc("GET /api/bookings", h.List)
	mux.HandleFunc("GET /api/bookings/{id}", h.Get)
	mux.HandleFunc("GET /api/bookings/ref/{reference}", h.GetByReference)

	// Workflow decisions need booking:decide on top of the prefix rule.
	// Cancel stays open here; the handler allows the booking's own
	// requester through without the decide permission.
	decide := RequirePermission(PermBookingDecide)
	mux.Handle("POST /api/bookings/{id}/approve", decide(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /api/bookings/{id}/reject", decide(http.HandlerFunc(h.Reject)))
	mux.Handle("POST /api/bookings/{id}/checkin", decide(http.HandlerFunc(h.CheckIn)))
	mux.Handle("POST /api/bookings/{id}/checkout", decide(http.HandlerFunc(h.CheckOut)))
	mux.HandleFunc("POST /api/bookings/{id}/cancel", h.Cancel)
}

func registerWebhookRoutes(mux *http.ServeMux, h *WebhookHandlers) {
	mux.HandleFunc("POST /api/webhook-sinks", h.Create)
	mux.HandleFunc("GET /api/webhook-sinks", h.List)
	mux.HandleFunc("GET /api/webhook-sinks/{id}", h.Get)
	mux.HandleFunc("PUT /api/webhook-sinks/{id}/enabled", h.SetEnabled)
	mux.HandleFunc("DELETE /api/webhook-sinks/{id}", h.Delete)
}
