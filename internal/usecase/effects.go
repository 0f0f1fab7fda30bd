package usecase

import (
	"context"
	"log/slog"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// commit hands changed paths to the syncer. Failures are logged only; local
// files are already in their final state.
func commit(ctx context.Context, syncer ports.Syncer, logger *slog.Logger, paths []string, message string) bool {
	if syncer == nil {
		return true
	}
	if err := syncer.Commit(ctx, paths, message); err != nil {
		logger.Error("sync failed", "message", message, "error", err)
		return false
	}
	logger.Info("synced", "message", message)
	return true
}

func notify(ctx context.Context, notifier ports.Notifier, logger *slog.Logger, message string) {
	if notifier == nil || message == "" {
		return
	}
	if err := notifier.Notify(ctx, message); err != nil {
		logger.Warn("notify failed", "error", err)
	}
}

func logOutcome(logger *slog.Logger, o domain.Outcome) {
	if o.Kind == domain.OutcomeFailed {
		logger.Warn(string(o.Kind), "key", o.Key, "reason", o.Reason)
		return
	}
	logger.Info(string(o.Kind), "key", o.Key, "reason", o.Reason)
}
