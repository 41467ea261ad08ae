package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerKind classifies what causes a workflow to fire.
type TriggerKind string

const (
	TriggerKindSchedule  TriggerKind = "schedule"
	TriggerKindEvent     TriggerKind = "event"
	TriggerKindThreshold TriggerKind = "threshold"
)

var (
	// ErrInvalidTrigger is returned when trigger validation fails.
	ErrInvalidTrigger = errors.New("invalid trigger configuration")

	// ErrInvalidWorkflow is returned when workflow validation fails.
	ErrInvalidWorkflow = errors.New("invalid workflow configuration")
)

// IsInvalidTrigger checks whether an error chain contains ErrInvalidTrigger.
func IsInvalidTrigger(err error) bool {
	return errors.Is(err, ErrInvalidTrigger)
}

// IsInvalidWorkflow checks whether an error chain contains ErrInvalidWorkflow.
func IsInvalidWorkflow(err error) bool {
	return errors.Is(err, ErrInvalidWorkflow)
}

// Trigger is the firing condition of a workflow. The kind selects which
// Config keys are meaningful:
//
//	schedule:  "cron" — standard 5-field cron expression
//	event:     "event" — named event identifier matched against the event source
//	threshold: "field", "operator", "value" — compared against a live metric
//
// Triggers are data, not code; the engine exposes the firing decision and an
// external poller drives the clock.
type Trigger struct {
	Kind   TriggerKind    `json:"kind"   validate:"required,oneof=schedule event threshold"`
	Config map[string]any `json:"config" validate:"required"`
}

// CronExpression returns the cron expression of a schedule trigger.
func (t Trigger) CronExpression() string {
	expr, _ := t.Config["cron"].(string)

	return expr
}

// Validate checks that the trigger carries the configuration its kind needs.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerKindSchedule:
		expr := t.CronExpression()
		if expr == "" {
			return ErrInvalidTrigger
		}

		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
		}
	case TriggerKindEvent:
		if name, _ := t.Config["event"].(string); name == "" {
			return ErrInvalidTrigger
		}
	case TriggerKindThreshold:
		field, _ := t.Config["field"].(string)
		operator, _ := t.Config["operator"].(string)

		if field == "" || operator == "" {
			return ErrInvalidTrigger
		}

		if _, ok := t.Config["value"]; !ok {
			return ErrInvalidTrigger
		}
	default:
		return ErrInvalidTrigger
	}

	return nil
}

// Workflow is a named, toggleable automation composed of ordered catalog
// actions. LastRun and NextRun are mutated only by the engine/scheduler.
type Workflow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"       validate:"required,min=3"`
	Domain    string     `json:"domain"     validate:"required"`
	Trigger   Trigger    `json:"trigger"    validate:"required"`
	ActionIDs []string   `json:"action_ids" validate:"required,min=1"`
	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ComputeNextRun precomputes the next due time for schedule triggers from
// the given reference time. Non-schedule triggers clear NextRun since their
// firing is driven by external events, not the clock.
func (w *Workflow) ComputeNextRun(reference time.Time) error {
	if w.Trigger.Kind != TriggerKindSchedule {
		w.NextRun = nil

		return nil
	}

	schedule, err := cron.ParseStandard(w.Trigger.CronExpression())
	if err != nil {
		return err
	}

	next := schedule.Next(reference)
	w.NextRun = &next

	return nil
}

// IsDue reports whether a schedule trigger is due at the given time.
func (w *Workflow) IsDue(now time.Time) bool {
	return w.Trigger.Kind == TriggerKindSchedule && w.NextRun != nil && !w.NextRun.After(now)
}
