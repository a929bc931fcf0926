package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStatus        EventType = "status"
	EventStep          EventType = "step"
	EventChildFinished EventType = "child_finished"
)

// StepOutcome is the result kind of one performed state-machine step.
type StepOutcome string

const (
	StepNext    StepOutcome = "next"
	StepDone    StepOutcome = "done"
	StepCrashed StepOutcome = "crashed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UnitID    string    `json:"unit_id"`
	Unit      string    `json:"unit"` // Unit kind (type name) or configured name
}

// StatusEvent reports a lifecycle status change.
type StatusEvent struct {
	EventBase
	From Status `json:"from"`
	To   Status `json:"to"`
	Err  error  `json:"-"`
}

// StepEvent reports the outcome of one performed step.
type StepEvent struct {
	EventBase
	Outcome StepOutcome `json:"outcome"`
	Err     error       `json:"-"`
}

// ChildEvent reports that a supervised child terminated.
type ChildEvent struct {
	EventBase
	ChildID string `json:"child_id"`
	Group   any    `json:"group,omitempty"`
	Tracked int    `json:"tracked"` // Children still tracked after removal
}

// LifecycleHooks defines callbacks for runtime observability.
// Hooks run on the goroutine of the unit that emits them.
type LifecycleHooks struct {
	OnStatus        func(context.Context, *StatusEvent)
	OnStep          func(context.Context, *StepEvent)
	OnChildFinished func(context.Context, *ChildEvent)
}

// NewEventBase stamps an event header.
func NewEventBase(t EventType, unitID, unit string) EventBase {
	return EventBase{
		Timestamp: time.Now(),
		Type:      t,
		UnitID:    unitID,
		Unit:      unit,
	}
}

// MergeHooks combines several hook sets; each callback fans out in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range sets {
		if h.OnStatus != nil {
			prev, next := merged.OnStatus, h.OnStatus
			merged.OnStatus = func(ctx context.Context, e *StatusEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnStep != nil {
			prev, next := merged.OnStep, h.OnStep
			merged.OnStep = func(ctx context.Context, e *StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnChildFinished != nil {
			prev, next := merged.OnChildFinished, h.OnChildFinished
			merged.OnChildFinished = func(ctx context.Context, e *ChildEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return merged
}
