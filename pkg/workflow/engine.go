// Package workflow models persistent, toggleable automations with a
// trigger, an ordered action list, and an append-only run history.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/catalog"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/events"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/otelhelper"
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrRunFailed is returned when a workflow execution fails. Unlike bulk
// runs, a workflow run is all-or-nothing: one coherent automated task, so
// any action failure fails the whole run.
var ErrRunFailed = errors.New("workflow run failed")

// IsRunFailed checks whether an error chain contains ErrRunFailed.
func IsRunFailed(err error) bool {
	return errors.Is(err, ErrRunFailed)
}

// State is the lifecycle state of a workflow.
type State string

const (
	StateDisabled       State = "disabled"
	StateEnabledIdle    State = "enabled-idle"
	StateEnabledRunning State = "enabled-running"
)

// Engine owns all workflow and run-history writes.
type Engine struct {
	workflows persistence.WorkflowRepository
	logs      persistence.WorkflowLogRepository
	client    ai.Client
	publisher eventbus.EventPublisher
	logger    *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewEngine(
	workflows persistence.WorkflowRepository,
	logs persistence.WorkflowLogRepository,
	client ai.Client,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		workflows: workflows,
		logs:      logs,
		client:    client,
		publisher: publisher,
		logger:    logger.With("module", "workflow_engine"),
		running:   make(map[string]bool),
	}
}

// Create validates and stores a new workflow. Schedule triggers get their
// first NextRun precomputed.
func (e *Engine) Create(ctx context.Context, workflow *models.Workflow) error {
	if len(workflow.ActionIDs) == 0 {
		return models.ErrInvalidWorkflow
	}

	if err := workflow.Trigger.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	if workflow.ID == "" {
		workflow.ID = "wf-" + uuid.New().String()[:8]
	}

	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := workflow.ComputeNextRun(now); err != nil {
		return err
	}

	return e.workflows.SaveWorkflow(ctx, workflow)
}

// Update stores configuration changes and recomputes NextRun when the
// trigger changed.
func (e *Engine) Update(ctx context.Context, workflow *models.Workflow) error {
	if err := workflow.Trigger.Validate(); err != nil {
		return err
	}

	workflow.UpdatedAt = time.Now().UTC()

	if err := workflow.ComputeNextRun(workflow.UpdatedAt); err != nil {
		return err
	}

	return e.workflows.SaveWorkflow(ctx, workflow)
}

// Toggle flips the enabled flag. It never interrupts an in-flight run and
// never touches the run history; it only affects future scheduling.
func (e *Engine) Toggle(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := e.workflows.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.Enabled = !workflow.Enabled
	workflow.UpdatedAt = time.Now().UTC()

	if workflow.Enabled {
		if err := workflow.ComputeNextRun(workflow.UpdatedAt); err != nil {
			return nil, err
		}
	}

	if err := e.workflows.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Workflow toggled", "workflow_id", id, "enabled", workflow.Enabled)

	return workflow, nil
}

// StateOf reports the lifecycle state of a workflow.
func (e *Engine) StateOf(workflow *models.Workflow) State {
	if !workflow.Enabled {
		return StateDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running[workflow.ID] {
		return StateEnabledRunning
	}

	return StateEnabledIdle
}

// RunNow executes a workflow manually. Manual runs are permitted whatever
// the enabled state and never mutate NextRun.
func (e *Engine) RunNow(ctx context.Context, workflowID string) (*models.WorkflowLogEntry, error) {
	workflow, err := e.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, workflow, false)
}

// RunScheduled executes a workflow because its trigger fired. A disabled
// workflow records a skipped entry instead of running; after execution the
// next due time is recomputed.
func (e *Engine) RunScheduled(ctx context.Context, workflowID string) (*models.WorkflowLogEntry, error) {
	workflow, err := e.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.Enabled {
		entry := e.newLogEntry(workflow.ID, models.WorkflowRunSkipped, "workflow disabled at firing time")

		if err := e.logs.AppendLogEntry(ctx, entry); err != nil {
			return nil, err
		}

		// Advance the schedule anyway so a stale due time does not
		// record a skip on every poll.
		if err := workflow.ComputeNextRun(nextRunReference(workflow, entry.Timestamp)); err != nil {
			return nil, err
		}

		if err := e.workflows.SaveWorkflow(ctx, workflow); err != nil {
			return nil, err
		}

		return entry, nil
	}

	entry, err := e.run(ctx, workflow, true)
	if err != nil && !IsRunFailed(err) {
		return nil, err
	}

	return entry, err
}

// run executes each action in order through the AI collaborator. Exactly
// one log entry is appended per attempt and LastRun is always updated;
// NextRun moves only for scheduled firings.
func (e *Engine) run(ctx context.Context, workflow *models.Workflow, scheduled bool) (*models.WorkflowLogEntry, error) {
	tracer := otel.Tracer("workflow_engine")

	ctx, span := otelhelper.StartSpan(ctx, tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.Bool("adviso.workflow.scheduled", scheduled),
	)
	defer span.End()

	e.setRunning(workflow.ID, true)
	defer e.setRunning(workflow.ID, false)

	logger := e.logger.With("workflow_id", workflow.ID, "workflow_name", workflow.Name)
	logger.InfoContext(ctx, "Starting workflow run", "scheduled", scheduled)

	combined, runErr := e.executeActions(ctx, workflow)

	status := models.WorkflowRunSuccess
	message := combined

	if runErr != nil {
		otelhelper.SetError(span, runErr)

		status = models.WorkflowRunFailed
		message = runErr.Error()

		logger.ErrorContext(ctx, "Workflow run failed", "error", runErr)
	} else {
		logger.InfoContext(ctx, "Workflow run completed")
	}

	entry := e.newLogEntry(workflow.ID, status, message)

	if err := e.logs.AppendLogEntry(ctx, entry); err != nil {
		return nil, err
	}

	now := entry.Timestamp
	workflow.LastRun = &now

	if scheduled {
		if err := workflow.ComputeNextRun(nextRunReference(workflow, now)); err != nil {
			return nil, err
		}
	}

	if err := e.workflows.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	e.publishCompletion(ctx, workflow, entry, scheduled)

	if runErr != nil {
		return entry, fmt.Errorf("%w: %w", ErrRunFailed, runErr)
	}

	return entry, nil
}

// executeActions runs the ordered action list, concatenating result texts
// into one combined narrative. The first failure aborts the run.
func (e *Engine) executeActions(ctx context.Context, workflow *models.Workflow) (string, error) {
	var combined strings.Builder

	for _, actionID := range workflow.ActionIDs {
		descriptor, found := catalog.Find(workflow.Domain, actionID)
		if !found {
			return "", fmt.Errorf("action %s not in %s catalog", actionID, workflow.Domain)
		}

		prompt := fmt.Sprintf("%s: %s", descriptor.Title, descriptor.Description)

		text, err := e.client.Invoke(ctx, workflow.Domain, prompt, nil)
		if err != nil {
			return "", fmt.Errorf("action %s: %w", actionID, err)
		}

		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}

		combined.WriteString(text)
	}

	return combined.String(), nil
}

// nextRunReference keeps schedule advancement monotonic: recomputation
// starts from the due slot that fired, even when the engine clock lags
// the poller that decided the firing.
func nextRunReference(workflow *models.Workflow, now time.Time) time.Time {
	if workflow.NextRun != nil && workflow.NextRun.After(now) {
		return *workflow.NextRun
	}

	return now
}

func (e *Engine) setRunning(workflowID string, running bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if running {
		e.running[workflowID] = true
	} else {
		delete(e.running, workflowID)
	}
}

func (e *Engine) newLogEntry(workflowID string, status models.WorkflowRunStatus, message string) *models.WorkflowLogEntry {
	return &models.WorkflowLogEntry{
		ID:         "log-" + uuid.New().String()[:8],
		WorkflowID: workflowID,
		Timestamp:  time.Now().UTC(),
		Status:     status,
		Message:    message,
	}
}

func (e *Engine) publishCompletion(ctx context.Context, workflow *models.Workflow, entry *models.WorkflowLogEntry, scheduled bool) {
	completed := events.WorkflowRunCompleted{
		BaseEvent: events.BaseEvent{
			ID:        "evt-" + uuid.New().String()[:8],
			Type:      events.WorkflowRunCompletedEvent,
			Timestamp: entry.Timestamp,
		},
		WorkflowID: workflow.ID,
		LogEntryID: entry.ID,
		Status:     entry.Status,
		Scheduled:  scheduled,
	}

	if err := e.publisher.Publish(ctx, workflow.ID, completed); err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish workflow run completion", "error", err)
	}

	if entry.Status == models.WorkflowRunSuccess {
		invalidated := events.ReadModelInvalidated{
			BaseEvent: events.BaseEvent{
				ID:        "evt-" + uuid.New().String()[:8],
				Type:      events.ReadModelInvalidatedEvent,
				Timestamp: entry.Timestamp,
			},
			Domains: []string{"inventory", "pricing", "clients", "orders"},
		}

		if err := e.publisher.Publish(ctx, workflow.ID, invalidated); err != nil {
			e.logger.ErrorContext(ctx, "Failed to publish read-model invalidation", "error", err)
		}
	}

	level := events.NotificationSuccess
	message := fmt.Sprintf("Workflow %q completed", workflow.Name)

	if entry.Status == models.WorkflowRunFailed {
		level = events.NotificationError
		message = fmt.Sprintf("Workflow %q failed; it stays enabled for future attempts", workflow.Name)
	}

	notification := events.NotificationRaised{
		BaseEvent: events.BaseEvent{
			ID:        "evt-" + uuid.New().String()[:8],
			Type:      events.NotificationRaisedEvent,
			Timestamp: entry.Timestamp,
		},
		Level:   level,
		Title:   "Workflow run",
		Message: message,
	}

	if err := e.publisher.Publish(ctx, workflow.ID, notification); err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish notification", "error", err)
	}
}
