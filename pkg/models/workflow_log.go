package models

import "time"

// WorkflowRunStatus is the recorded outcome of one execution attempt.
type WorkflowRunStatus string

const (
	WorkflowRunSuccess WorkflowRunStatus = "success"
	WorkflowRunFailed  WorkflowRunStatus = "failed"
	WorkflowRunSkipped WorkflowRunStatus = "skipped"
)

// WorkflowLogEntry is one append-only record of a completed (or skipped)
// workflow execution attempt. Entries are never mutated after creation and
// are listed newest-first.
type WorkflowLogEntry struct {
	ID         string            `json:"id"`
	WorkflowID string            `json:"workflow_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Status     WorkflowRunStatus `json:"status"`
	Message    string            `json:"message"`
}
