// Package events defines the event types published by the orchestration core.
package events

import (
	"time"

	"github.com/adviso/adviso/pkg/models"
)

type EventType string

// Topic carries every orchestration event.
const Topic = "adviso.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Bulk run lifecycle.
	BulkRunCompletedEvent EventType = "bulk_run.completed"

	// Workflow run lifecycle.
	WorkflowRunCompletedEvent EventType = "workflow.run.completed"

	// Read-model refresh requests emitted after successful runs.
	ReadModelInvalidatedEvent EventType = "readmodel.invalidated"

	// User-visible toast notifications (explicit channel, no ambient singleton).
	NotificationRaisedEvent EventType = "notification.raised"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BulkRunCompleted is published once per finished bulk run, whatever the
// aggregate outcome.
type BulkRunCompleted struct {
	BaseEvent

	RunID          string               `json:"run_id"`
	Domain         string               `json:"domain"`
	Status         models.BulkRunStatus `json:"status"`
	TotalSelected  int                  `json:"total_selected"`
	SucceededCount int                  `json:"succeeded_count"`
}

func (e BulkRunCompleted) GetType() EventType {
	return BulkRunCompletedEvent
}

// WorkflowRunCompleted is published after every workflow execution attempt.
type WorkflowRunCompleted struct {
	BaseEvent

	WorkflowID string                   `json:"workflow_id"`
	LogEntryID string                   `json:"log_entry_id"`
	Status     models.WorkflowRunStatus `json:"status"`
	Scheduled  bool                     `json:"scheduled"`
}

func (e WorkflowRunCompleted) GetType() EventType {
	return WorkflowRunCompletedEvent
}

// ReadModelInvalidated asks read-model consumers to refresh the listed
// domains after a successful run mutated business data.
type ReadModelInvalidated struct {
	BaseEvent

	Domains []string `json:"domains"`
}

func (e ReadModelInvalidated) GetType() EventType {
	return ReadModelInvalidatedEvent
}

// NotificationLevel grades a user-visible notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// NotificationRaised is the explicit toast channel: every user-initiated
// operation ends in exactly one success or failure notification.
type NotificationRaised struct {
	BaseEvent

	Level   NotificationLevel `json:"level"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
}

func (e NotificationRaised) GetType() EventType {
	return NotificationRaisedEvent
}
