// Package bulk executes a user-selected set of catalog actions as one unit
// with per-action outcome tracking and incremental progress reporting.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/catalog"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/events"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/otelhelper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const failedActionMessage = "execution failed"

// ErrEmptySelection is returned when a run is requested with no actions.
// Empty runs are rejected before starting; a BulkRun never exists with
// zero selected actions.
var ErrEmptySelection = errors.New("no actions selected")

// Observer receives the run state after each action completes. The run
// pointer is only valid for the duration of the callback.
type Observer func(run *models.BulkRun, actionID string, result models.ActionResult)

// Runner executes selected catalog actions strictly sequentially through
// the AI collaborator.
type Runner struct {
	client    ai.Client
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewRunner(client ai.Client, publisher eventbus.EventPublisher, logger *slog.Logger) *Runner {
	return &Runner{
		client:    client,
		publisher: publisher,
		logger:    logger.With("module", "bulk_runner"),
	}
}

// Run executes the selected actions in the order they were supplied.
// Action k+1 does not start before action k's result is recorded; a failed
// action is recorded and the run proceeds. On completion read-model
// invalidation and notification events are published.
func (r *Runner) Run(ctx context.Context, domain string, selectedIDs []string, observe Observer) (*models.BulkRun, error) {
	if len(selectedIDs) == 0 {
		return nil, ErrEmptySelection
	}

	// The selection is a set: one execution, one result and one progress
	// step per distinct action.
	selectedIDs = dedupeSelection(selectedIDs)

	tracer := otel.Tracer("bulk_runner")

	ctx, span := otelhelper.StartSpan(ctx, tracer, "bulk.run",
		attribute.String(otelhelper.DomainKey, domain),
		attribute.Int("adviso.bulk.selected", len(selectedIDs)),
	)
	defer span.End()

	run := &models.BulkRun{
		ID:                "run-" + uuid.New().String()[:8],
		Domain:            domain,
		SelectedActionIDs: selectedIDs,
		Results:           make(map[string]models.ActionResult, len(selectedIDs)),
		Status:            models.BulkRunStatusRunning,
	}

	logger := r.logger.With("run_id", run.ID, "domain", domain)
	logger.InfoContext(ctx, "Starting bulk run", "selected", len(selectedIDs))

	var narrative strings.Builder

	for _, actionID := range selectedIDs {
		result := r.executeAction(ctx, domain, actionID, logger)

		run.Results[actionID] = result

		if result.Success {
			if narrative.Len() > 0 {
				narrative.WriteString("\n\n")
			}

			narrative.WriteString(result.Message)
		}

		run.ProgressPercent = run.CompletedCount() * 100 / len(selectedIDs)
		run.Narrative = narrative.String()

		if observe != nil {
			observe(run, actionID, result)
		}
	}

	if run.SucceededCount() == len(selectedIDs) {
		run.Status = models.BulkRunStatusFull
	} else {
		run.Status = models.BulkRunStatusPartial
	}

	logger.InfoContext(ctx, "Bulk run completed",
		"status", run.Status,
		"succeeded", run.SucceededCount(),
		"total", len(selectedIDs),
	)

	r.publishCompletion(ctx, run)

	return run, nil
}

// dedupeSelection drops repeated IDs keeping the first occurrence, so the
// selection order survives.
func dedupeSelection(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func (r *Runner) executeAction(ctx context.Context, domain, actionID string, logger *slog.Logger) models.ActionResult {
	tracer := otel.Tracer("bulk_runner")

	ctx, span := otelhelper.StartSpan(ctx, tracer, "bulk.action",
		attribute.String(otelhelper.ActionIDKey, actionID),
	)
	defer span.End()

	descriptor, found := catalog.Find(domain, actionID)
	if !found {
		err := fmt.Errorf("action %s not in %s catalog", actionID, domain)
		otelhelper.SetError(span, err)
		logger.WarnContext(ctx, "Selected action not in catalog", "action_id", actionID)

		return models.ActionResult{Success: false, Message: failedActionMessage}
	}

	prompt := fmt.Sprintf("%s: %s", descriptor.Title, descriptor.Description)

	text, err := r.client.Invoke(ctx, domain, prompt, nil)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Action execution failed", "action_id", actionID, "error", err)

		return models.ActionResult{Success: false, Message: failedActionMessage}
	}

	return models.ActionResult{Success: true, Message: text}
}

func (r *Runner) publishCompletion(ctx context.Context, run *models.BulkRun) {
	now := time.Now().UTC()

	completed := events.BulkRunCompleted{
		BaseEvent: events.BaseEvent{
			ID:        "evt-" + uuid.New().String()[:8],
			Type:      events.BulkRunCompletedEvent,
			Timestamp: now,
		},
		RunID:          run.ID,
		Domain:         run.Domain,
		Status:         run.Status,
		TotalSelected:  len(run.SelectedActionIDs),
		SucceededCount: run.SucceededCount(),
	}

	if err := r.publisher.Publish(ctx, run.ID, completed); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish bulk run completion", "error", err)
	}

	// Any succeeded action may have touched business data; ask the read
	// models to refresh.
	if run.SucceededCount() > 0 {
		invalidated := events.ReadModelInvalidated{
			BaseEvent: events.BaseEvent{
				ID:        "evt-" + uuid.New().String()[:8],
				Type:      events.ReadModelInvalidatedEvent,
				Timestamp: now,
			},
			Domains: []string{"inventory", "pricing", "clients", "orders"},
		}

		if err := r.publisher.Publish(ctx, run.ID, invalidated); err != nil {
			r.logger.ErrorContext(ctx, "Failed to publish read-model invalidation", "error", err)
		}
	}

	level := events.NotificationSuccess
	message := fmt.Sprintf("%d of %d actions completed successfully", run.SucceededCount(), len(run.SelectedActionIDs))

	if run.Status == models.BulkRunStatusPartial {
		level = events.NotificationError
	}

	notification := events.NotificationRaised{
		BaseEvent: events.BaseEvent{
			ID:        "evt-" + uuid.New().String()[:8],
			Type:      events.NotificationRaisedEvent,
			Timestamp: now,
		},
		Level:   level,
		Title:   "Bulk actions finished",
		Message: message,
	}

	if err := r.publisher.Publish(ctx, run.ID, notification); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish notification", "error", err)
	}
}
