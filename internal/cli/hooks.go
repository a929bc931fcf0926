package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentry/pkg/domain"
)

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStatus: func(ctx context.Context, e *domain.StatusEvent) {
			if e.Err != nil {
				logger.Debug("Status", "unit", e.Unit, "unit_id", e.UnitID, "from", e.From, "to", e.To, "err", e.Err)
				return
			}
			logger.Debug("Status", "unit", e.Unit, "unit_id", e.UnitID, "from", e.From, "to", e.To)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			if e.Outcome == domain.StepCrashed {
				logger.Debug("Step (Crashed)", "unit", e.Unit, "err", e.Err)
				return
			}
			logger.Debug("Step", "unit", e.Unit, "outcome", e.Outcome)
		},
		OnChildFinished: func(ctx context.Context, e *domain.ChildEvent) {
			logger.Debug("Child Finished", "unit", e.Unit, "child_id", e.ChildID, "group", e.Group, "tracked", e.Tracked)
		},
	}
}
