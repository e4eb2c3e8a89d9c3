package services

import (
	"context"
	"fmt"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/templates"
	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

type templateStore interface {
	Get(ctx context.Context, templateID string) (*models.DashboardTemplate, error)
	List(ctx context.Context) ([]*models.DashboardTemplate, error)
	Put(ctx context.Context, t *models.DashboardTemplate) error
}

type templateService struct {
	store templateStore
}

func NewTemplateService(store templateStore) *templateService {
	return &templateService{store: store}
}

func (s *templateService) ListTemplates(ctx context.Context) ([]*models.DashboardTemplate, error) {
	return s.store.List(ctx)
}

func (s *templateService) GetTemplate(ctx context.Context, templateID string) (*models.DashboardTemplate, error) {
	return s.store.Get(ctx, templateID)
}

// PutTemplate parses a YAML or JSON template document and stores it under
// templateID, replacing any previous version.
func (s *templateService) PutTemplate(ctx context.Context, templateID string, doc []byte) (*models.DashboardTemplate, error) {
	log := logger.FromContext(ctx).With("template_id", templateID)

	t, err := templates.Parse(doc)
	if err != nil {
		log.Warn("template document rejected", "error", err)
		return nil, err
	}
	if t.ID != templateID {
		return nil, errs.NewValidationError(fmt.Sprintf("document id %q does not match path id %q", t.ID, templateID))
	}
	if err := s.store.Put(ctx, t); err != nil {
		log.Error("failed to store template", "error", err)
		return nil, err
	}
	log.Info("template stored", "widgets", len(t.Widgets), "rules", len(t.ConditionalRules))
	return t, nil
}

// SeedTemplates upserts templates at boot. Each one is validated again so a
// bad document never reaches the store.
func (s *templateService) SeedTemplates(ctx context.Context, ts []*models.DashboardTemplate) error {
	log := logger.FromContext(ctx)
	for _, t := range ts {
		if err := templates.Validate(t); err != nil {
			return err
		}
		if err := s.store.Put(ctx, t); err != nil {
			return fmt.Errorf("seed template %s: %w", t.ID, err)
		}
		log.Info("template seeded", "template_id", t.ID, "name", t.Name)
	}
	return nil
}
