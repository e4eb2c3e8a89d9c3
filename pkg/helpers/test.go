package helpers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

// TestCtx returns a context carrying a logger that discards output.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelDebug))
	return logger.ToContext(context.Background(), log)
}
