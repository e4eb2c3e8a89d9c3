package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/dashboard-config/internal/config"
	"github.com/GregMSThompson/dashboard-config/internal/metrics"
	"github.com/GregMSThompson/dashboard-config/internal/models"
	"github.com/GregMSThompson/dashboard-config/internal/templates"
	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Metrics   *metrics.Metrics
	Templates []*models.DashboardTemplate
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Metrics = metrics.New()
	bs.Templates, err = LoadTemplates(cfg.TemplateDir)
	if err != nil {
		return bs, err
	}
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

// LoadTemplates returns the built-in template followed by every template in
// dir. A file may override the built-in by reusing its id.
func LoadTemplates(dir string) ([]*models.DashboardTemplate, error) {
	builtin, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("load built-in template: %w", err)
	}
	if dir == "" {
		return []*models.DashboardTemplate{builtin}, nil
	}
	loaded, err := templates.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []*models.DashboardTemplate{builtin}
	for _, t := range loaded {
		if t.ID == builtin.ID {
			out[0] = t
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (bs *Bootstrap) Close() {
	if bs.Firestore != nil {
		if err := bs.Firestore.Close(); err != nil {
			bs.Log.Error("failed to close firestore client", "error", err)
		}
	}
}
