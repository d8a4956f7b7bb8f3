package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRuleMatch EventType = "rule_match"
	EventDispatch  EventType = "dispatch"
	EventInterpret EventType = "interpret"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp        time.Time `json:"timestamp"`
	Type             EventType `json:"type"`
	InterpretationID string    `json:"interpretation_id"`
}

// RuleEvent is emitted when a rule matched and its action is about to run.
type RuleEvent struct {
	EventBase
	Rule     int    `json:"rule"`
	RuleName string `json:"rule_name,omitempty"`
	Action   string `json:"action"`
}

// DispatchEvent is emitted after a command was sent to one entity.
type DispatchEvent struct {
	EventBase
	Target  string `json:"target"`
	Payload any    `json:"payload"`
	Err     error  `json:"-"`
}

// InterpretEvent is emitted once per interpreted utterance.
type InterpretEvent struct {
	EventBase
	Annotation Annotation    `json:"annotation"`
	Duration   time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRuleMatch func(context.Context, *RuleEvent)
	OnDispatch  func(context.Context, *DispatchEvent)
	OnInterpret func(context.Context, *InterpretEvent)
}

// ChainHooks returns hooks that call every non-nil callback of hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var chained LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnRuleMatch != nil {
			prev := chained.OnRuleMatch
			chained.OnRuleMatch = func(ctx context.Context, e *RuleEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRuleMatch(ctx, e)
			}
		}
		if h.OnDispatch != nil {
			prev := chained.OnDispatch
			chained.OnDispatch = func(ctx context.Context, e *DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnDispatch(ctx, e)
			}
		}
		if h.OnInterpret != nil {
			prev := chained.OnInterpret
			chained.OnInterpret = func(ctx context.Context, e *InterpretEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnInterpret(ctx, e)
			}
		}
	}
	return chained
}
