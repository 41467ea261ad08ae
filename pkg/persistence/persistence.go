// Package persistence provides the data storage abstraction for sessions,
// workflows, and workflow run logs.
package persistence

import (
	"context"

	"github.com/adviso/adviso/pkg/models"
)

// SessionRepository stores conversational sessions and their append-only
// message transcripts.
type SessionRepository interface {
	SaveSession(ctx context.Context, session *models.Session) error
	SessionByID(ctx context.Context, id string) (*models.Session, error)

	// AppendMessage adds one message to the session transcript. The
	// transcript is the single source of truth for ordering: CreatedAt
	// first, insertion order breaking ties.
	AppendMessage(ctx context.Context, message *models.Message) error
	Messages(ctx context.Context, sessionID string) ([]*models.Message, error)
}

// WorkflowRepository stores workflow configurations.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

// WorkflowLogRepository stores the append-only run history. Entries are
// never mutated; listing returns newest-first.
type WorkflowLogRepository interface {
	AppendLogEntry(ctx context.Context, entry *models.WorkflowLogEntry) error
	LogEntries(ctx context.Context, workflowID string) ([]*models.WorkflowLogEntry, error)
}

type Persistence interface {
	SessionRepository() SessionRepository
	WorkflowRepository() WorkflowRepository
	WorkflowLogRepository() WorkflowLogRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
