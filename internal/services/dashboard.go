package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/GregMSThompson/dashboard-config/internal/dto"
	"github.com/GregMSThompson/dashboard-config/internal/engine"
	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/metrics"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/rules"
	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

// dashboardStore is the Firestore storage interface for dashboard instances.
// Update runs fn inside a transaction and may call it more than once.
type dashboardStore interface {
	Create(ctx context.Context, uid string, d *models.UserDashboard) error
	Get(ctx context.Context, uid, dashboardID string) (*models.UserDashboard, error)
	List(ctx context.Context, uid string) ([]*models.UserDashboard, error)
	Update(ctx context.Context, uid, dashboardID string, fn func(*models.UserDashboard) (*models.UserDashboard, error)) (*models.UserDashboard, error)
	Delete(ctx context.Context, uid, dashboardID string) error
}

type templateSource interface {
	Get(ctx context.Context, templateID string) (*models.DashboardTemplate, error)
}

type updateRecorder interface {
	Updated(scope string)
	Rejected(scope string)
	Cascaded(group string, n int)
}

type dashboardService struct {
	store     dashboardStore
	templates templateSource
	metrics   updateRecorder
}

func NewDashboardService(store dashboardStore, templates templateSource, rec updateRecorder) *dashboardService {
	return &dashboardService{store: store, templates: templates, metrics: rec}
}

func (s *dashboardService) engineFor(ctx context.Context, templateID string) (*engine.Engine, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return engine.New(t), nil
}

// CreateDashboard instantiates a template for uid with every option at its
// default value.
func (s *dashboardService) CreateDashboard(ctx context.Context, uid string, req dto.CreateDashboardRequest) (*models.UserDashboard, error) {
	log := logger.FromContext(ctx)
	if req.TemplateID == "" {
		return nil, errs.NewValidationError("templateId is required")
	}
	eng, err := s.engineFor(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	d := eng.NewDashboard(uuid.New().String())
	if err := eng.Validate(d); err != nil {
		log.Error("template defaults do not validate", "template_id", req.TemplateID, "error", err)
		return nil, err
	}
	if err := s.store.Create(ctx, uid, d); err != nil {
		return nil, err
	}
	log.Info("dashboard created", "dashboard_id", d.ID, "template_id", d.TemplateID)
	return d, nil
}

func (s *dashboardService) GetDashboard(ctx context.Context, uid, dashboardID string) (*models.UserDashboard, error) {
	return s.store.Get(ctx, uid, dashboardID)
}

func (s *dashboardService) ListDashboards(ctx context.Context, uid string) ([]*models.UserDashboard, error) {
	return s.store.List(ctx, uid)
}

func (s *dashboardService) DeleteDashboard(ctx context.Context, uid, dashboardID string) error {
	if err := s.store.Delete(ctx, uid, dashboardID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("dashboard deleted", "dashboard_id", dashboardID)
	return nil
}

func (s *dashboardService) UpdateDashboardConfig(ctx context.Context, uid, dashboardID string, req dto.UpdateDashboardConfigRequest) (*models.UserDashboard, error) {
	log := logger.FromContext(ctx).With("dashboard_id", dashboardID, "key", req.Key)
	if err := checkUpdate(req.Key, req.Value); err != nil {
		s.metrics.Rejected(metrics.ScopeDashboard)
		return nil, err
	}
	eng, err := s.engineForDashboard(ctx, uid, dashboardID)
	if err != nil {
		return nil, err
	}

	d, err := s.store.Update(ctx, uid, dashboardID, func(cur *models.UserDashboard) (*models.UserDashboard, error) {
		return eng.UpdateDashboardConfig(cur, req.Key, req.Value)
	})
	if err != nil {
		s.recordFailure(metrics.ScopeDashboard, err)
		log.Warn("dashboard update failed", "error", err)
		return nil, err
	}
	s.metrics.Updated(metrics.ScopeDashboard)
	log.Info("dashboard property updated", "value", req.Value.String(), "version", d.Version)
	return d, nil
}

// UpdateWidgetConfig writes a widget value. When a sync group owns the key
// the write fans out to the group's global key and every declaring widget.
func (s *dashboardService) UpdateWidgetConfig(ctx context.Context, uid, dashboardID, widgetID string, req dto.UpdateWidgetConfigRequest) (*models.UserDashboard, error) {
	log := logger.FromContext(ctx).With("dashboard_id", dashboardID, "widget_id", widgetID, "key", req.Key)
	if widgetID == "" || widgetID == models.GlobalScope {
		s.metrics.Rejected(metrics.ScopeWidget)
		return nil, errs.NewValidationError("a widget id is required")
	}
	if err := checkUpdate(req.Key, req.Value); err != nil {
		s.metrics.Rejected(metrics.ScopeWidget)
		return nil, err
	}
	eng, err := s.engineForDashboard(ctx, uid, dashboardID)
	if err != nil {
		return nil, err
	}

	var (
		group   string
		targets int
	)
	d, err := s.store.Update(ctx, uid, dashboardID, func(cur *models.UserDashboard) (*models.UserDashboard, error) {
		group, targets = "", 0
		if g, ok := eng.ActiveGroup(cur, req.Key); ok {
			group, targets = g.Name, len(eng.SyncTargets(widgetID, req.Key))
		}
		return eng.UpdateWidgetConfig(cur, widgetID, req.Key, req.Value)
	})
	if err != nil {
		s.recordFailure(metrics.ScopeWidget, err)
		log.Warn("widget update failed", "error", err)
		return nil, err
	}
	s.metrics.Updated(metrics.ScopeWidget)
	if group != "" {
		s.metrics.Cascaded(group, targets)
		log.Info("widget update cascaded", "group", group, "widgets", targets, "version", d.Version)
	} else {
		log.Info("widget config updated", "value", req.Value.String(), "version", d.Version)
	}
	return d, nil
}

// GetPanel lists the controls of the dashboard and its widgets with their
// visibility and effective value. With visibleOnly set, hidden controls are
// left out.
func (s *dashboardService) GetPanel(ctx context.Context, uid, dashboardID string, visibleOnly bool) (dto.PanelResponse, error) {
	d, err := s.store.Get(ctx, uid, dashboardID)
	if err != nil {
		return dto.PanelResponse{}, err
	}
	eng, err := s.engineFor(ctx, d.TemplateID)
	if err != nil {
		return dto.PanelResponse{}, err
	}
	t := eng.Template()

	options := func(scope string, all []models.ConfigOption) []models.ConfigOption {
		if visibleOnly {
			return rules.VisibleOptions(t, d, scope)
		}
		return all
	}

	props := options(models.GlobalScope, t.Properties)
	resp := dto.PanelResponse{
		DashboardID: d.ID,
		TemplateID:  d.TemplateID,
		Version:     d.Version,
		Dashboard:   dto.PanelScope{Scope: models.GlobalScope, Controls: make([]dto.PanelControl, 0, len(props))},
		Widgets:     make([]dto.PanelScope, 0, len(t.Widgets)),
	}
	for _, opt := range props {
		c := panelControl(opt)
		c.Visible = rules.ShouldShow(t, d, models.GlobalScope, opt.Key)
		c.Value = eng.ResolveGlobal(d, opt.Key)
		resp.Dashboard.Controls = append(resp.Dashboard.Controls, c)
	}
	for _, w := range t.Widgets {
		opts := options(w.ID, w.ConfigOptions)
		scope := dto.PanelScope{Scope: w.ID, Type: w.Type, Controls: make([]dto.PanelControl, 0, len(opts))}
		for _, opt := range opts {
			c := panelControl(opt)
			c.Visible = rules.ShouldShow(t, d, w.ID, opt.Key)
			c.Value = eng.Resolve(d, w.ID, opt.Key)
			_, c.Synced = eng.ActiveGroup(d, opt.Key)
			scope.Controls = append(scope.Controls, c)
		}
		resp.Widgets = append(resp.Widgets, scope)
	}
	return resp, nil
}

// engineForDashboard loads the engine for the template a dashboard was
// created from. The template id never changes after creation.
func (s *dashboardService) engineForDashboard(ctx context.Context, uid, dashboardID string) (*engine.Engine, error) {
	d, err := s.store.Get(ctx, uid, dashboardID)
	if err != nil {
		return nil, err
	}
	return s.engineFor(ctx, d.TemplateID)
}

func (s *dashboardService) recordFailure(scope string, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		s.metrics.Rejected(scope)
	}
}

func checkUpdate(key string, v models.Value) error {
	if key == "" {
		return errs.NewValidationError("key is required")
	}
	if !v.IsDefined() {
		return errs.NewValidationError("value must be a string, number or boolean")
	}
	return nil
}

func panelControl(opt models.ConfigOption) dto.PanelControl {
	return dto.PanelControl{
		Key:       opt.Key,
		Label:     opt.Label,
		Type:      opt.Type,
		UIControl: opt.UIControl,
		Options:   opt.Options,
		Min:       opt.Min,
		Max:       opt.Max,
		Step:      opt.Step,
	}
}
