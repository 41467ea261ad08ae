// Package web provides the HTTP surface of the orchestration layer.
package web

import (
	"time"

	"github.com/adviso/adviso/pkg/models"
)

// SendMessageRequest is the body for sending one user message on a session.
type SendMessageRequest struct {
	Domain  string         `json:"domain"  validate:"required"`
	Content string         `json:"content" validate:"required,min=1"`
	Context map[string]any `json:"context,omitempty"`
}

// MessageResponse is one transcript entry. Assistant messages carry the
// split prose plus the decoded visualization, when one was embedded.
type MessageResponse struct {
	ID            string                       `json:"id"`
	SessionID     string                       `json:"session_id"`
	Role          models.MessageRole           `json:"role"`
	Content       string                       `json:"content"`
	Visualization *models.VisualizationPayload `json:"visualization,omitempty"`
	Rendered      any                          `json:"rendered,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// BulkRunRequest is the body for starting a synchronous bulk run.
type BulkRunRequest struct {
	Domain    string   `json:"domain"     validate:"required"`
	ActionIDs []string `json:"action_ids" validate:"required,min=1,unique"`
}

// CreateWorkflowRequest is the body for creating a workflow.
type CreateWorkflowRequest struct {
	Name      string         `json:"name"       validate:"required,min=3"`
	Domain    string         `json:"domain"     validate:"required"`
	Trigger   models.Trigger `json:"trigger"    validate:"required"`
	ActionIDs []string       `json:"action_ids" validate:"required,min=1"`
	Enabled   bool           `json:"enabled"`
}

// UpdateWorkflowRequest supports partial updates. Trigger replacement
// recomputes the next due time.
type UpdateWorkflowRequest struct {
	Name      *string         `json:"name,omitempty"       validate:"omitempty,min=3"`
	Trigger   *models.Trigger `json:"trigger,omitempty"`
	ActionIDs []string        `json:"action_ids,omitempty" validate:"omitempty,min=1"`
}

// WorkflowResponse augments the stored workflow with its lifecycle state.
type WorkflowResponse struct {
	*models.Workflow

	State string `json:"state"`
}
