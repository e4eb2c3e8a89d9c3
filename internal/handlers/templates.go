package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/middleware"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/response"
)

const maxTemplateBytes = 1 << 20

type TemplateService interface {
	ListTemplates(ctx context.Context) ([]*models.DashboardTemplate, error)
	GetTemplate(ctx context.Context, templateID string) (*models.DashboardTemplate, error)
	PutTemplate(ctx context.Context, templateID string, doc []byte) (*models.DashboardTemplate, error)
}

type templateHandlers struct {
	ResponseHandler response.ResponseHandler
	TemplateSvc     TemplateService
	AdminClaim      string
}

func NewTemplateHandlers(deps *Deps) *templateHandlers {
	return &templateHandlers{
		ResponseHandler: deps.ResponseHandler,
		TemplateSvc:     deps.TemplateSvc,
		AdminClaim:      deps.AdminClaim,
	}
}

func (h *templateHandlers) TemplateRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTemplates)
	r.Get("/{templateId}", h.GetTemplate)
	r.With(middleware.RequireClaim(h.AdminClaim, h.ResponseHandler)).Put("/{templateId}", h.PutTemplate)
	return r
}

func (h *templateHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := h.TemplateSvc.ListTemplates(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, ts)
}

func (h *templateHandlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.TemplateSvc.GetTemplate(r.Context(), chi.URLParam(r, "templateId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, t)
}

// PutTemplate accepts the template document as YAML or JSON.
func (h *templateHandlers) PutTemplate(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(io.LimitReader(r.Body, maxTemplateBytes+1))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("failed to read request body"))
		return
	}
	if len(doc) > maxTemplateBytes {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("template document is too large"))
		return
	}
	t, err := h.TemplateSvc.PutTemplate(r.Context(), chi.URLParam(r, "templateId"), doc)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, t)
}
