package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/dashboard-config/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	TemplateSvc     TemplateService
	DashboardSvc    DashboardService
	AdminClaim      string
}
