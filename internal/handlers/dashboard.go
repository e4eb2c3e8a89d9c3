package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/dashboard-config/internal/dto"
	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/middleware"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/response"
)

type DashboardService interface {
	CreateDashboard(ctx context.Context, uid string, req dto.CreateDashboardRequest) (*models.UserDashboard, error)
	GetDashboard(ctx context.Context, uid, dashboardID string) (*models.UserDashboard, error)
	ListDashboards(ctx context.Context, uid string) ([]*models.UserDashboard, error)
	DeleteDashboard(ctx context.Context, uid, dashboardID string) error
	GetPanel(ctx context.Context, uid, dashboardID string, visibleOnly bool) (dto.PanelResponse, error)
	UpdateDashboardConfig(ctx context.Context, uid, dashboardID string, req dto.UpdateDashboardConfigRequest) (*models.UserDashboard, error)
	UpdateWidgetConfig(ctx context.Context, uid, dashboardID, widgetID string, req dto.UpdateWidgetConfigRequest) (*models.UserDashboard, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListDashboards)
	r.Post("/", h.CreateDashboard)
	r.Get("/{dashboardId}", h.GetDashboard)
	r.Delete("/{dashboardId}", h.DeleteDashboard)
	r.Get("/{dashboardId}/panel", h.GetPanel)
	r.Put("/{dashboardId}/properties", h.UpdateDashboardConfig)
	r.Put("/{dashboardId}/widgets/{widgetId}", h.UpdateWidgetConfig)
	return r
}

func (h *dashboardHandlers) ListDashboards(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	ds, err := h.DashboardSvc.ListDashboards(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, ds)
}

func (h *dashboardHandlers) CreateDashboard(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	d, err := h.DashboardSvc.CreateDashboard(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, d)
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	d, err := h.DashboardSvc.GetDashboard(r.Context(), uid, chi.URLParam(r, "dashboardId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, d)
}

func (h *dashboardHandlers) DeleteDashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.DeleteDashboard(r.Context(), uid, chi.URLParam(r, "dashboardId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// GetPanel serves the property panel. ?visible=true leaves hidden controls out.
func (h *dashboardHandlers) GetPanel(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	visibleOnly := false
	if q := r.URL.Query().Get("visible"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("visible must be a boolean"))
			return
		}
		visibleOnly = v
	}
	panel, err := h.DashboardSvc.GetPanel(r.Context(), uid, chi.URLParam(r, "dashboardId"), visibleOnly)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, panel)
}

func (h *dashboardHandlers) UpdateDashboardConfig(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDashboardConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	uid := middleware.UID(r.Context())
	d, err := h.DashboardSvc.UpdateDashboardConfig(r.Context(), uid, chi.URLParam(r, "dashboardId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, d)
}

func (h *dashboardHandlers) UpdateWidgetConfig(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWidgetConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	uid := middleware.UID(r.Context())
	d, err := h.DashboardSvc.UpdateWidgetConfig(r.Context(), uid,
		chi.URLParam(r, "dashboardId"), chi.URLParam(r, "widgetId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, d)
}
