package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/GregMSThompson/dashboard-config/internal/bootstrap"
	"github.com/GregMSThompson/dashboard-config/internal/config"
	"github.com/GregMSThompson/dashboard-config/internal/handlers"
	"github.com/GregMSThompson/dashboard-config/internal/middleware"
	"github.com/GregMSThompson/dashboard-config/internal/response"
	"github.com/GregMSThompson/dashboard-config/internal/router"
	"github.com/GregMSThompson/dashboard-config/internal/services"
	"github.com/GregMSThompson/dashboard-config/internal/store"
	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	tstore := store.NewTemplateStore(bs.Firestore)
	dstore := store.NewDashboardStore(bs.Firestore)

	// services
	tserv := services.NewTemplateService(tstore)
	dserv := services.NewDashboardService(dstore, tstore, bs.Metrics)

	seedCtx, cancel := context.WithTimeout(logger.ToContext(context.Background(), bs.Log), 30*time.Second)
	err = tserv.SeedTemplates(seedCtx, bs.Templates)
	cancel()
	exitOnError("template seeding failed", err, bs.Log)

	// response handler
	rh := response.New(bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.TemplateSvc = tserv
	deps.DashboardSvc = dserv
	deps.AdminClaim = cfg.AdminClaim

	// router
	auth := middleware.NewMiddleware(bs.Firebase)
	r := router.NewRouter(deps, auth.FirebaseAuth, bs.Metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	bs.Log.Info("server starting", "port", cfg.Port, "templates", len(bs.Templates))
	err = srv.ListenAndServe()
	exitOnError("server start failed", err, bs.Log)
}
