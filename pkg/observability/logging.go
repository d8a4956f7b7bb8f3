package observability

import (
	"context"
	"log/slog"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleMatch: func(ctx context.Context, e *domain.RuleEvent) {
			logger.DebugContext(ctx, "rule_match",
				"id", e.InterpretationID,
				"rule", e.Rule,
				"name", e.RuleName,
				"action", e.Action,
			)
		},
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "dispatch", "id", e.InterpretationID, "target", e.Target, "payload", e.Payload, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, "dispatch", "id", e.InterpretationID, "target", e.Target, "payload", e.Payload)
		},
		OnInterpret: func(ctx context.Context, e *domain.InterpretEvent) {
			logger.InfoContext(ctx, "interpret",
				"id", e.InterpretationID,
				"input", e.Annotation.Input,
				"success", e.Annotation.Success,
				"rule", e.Annotation.Rule,
				"action", e.Annotation.Action,
				"duration", e.Duration,
			)
		},
	}
}
