// Package main provides the Adviso scheduler, the poller that fires
// workflow triggers against the clock and the live business snapshot.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/adviso/adviso/pkg/persistence"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/workflow"
)

// Scheduler polls the workflow store and fires due triggers. The engine
// owns no clock; this poller feeds it the current time and a fresh
// snapshot each tick.
type Scheduler struct {
	workflows persistence.WorkflowRepository
	engine    *workflow.Engine
	source    readmodel.Source
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time
}

func NewScheduler(
	workflows persistence.WorkflowRepository,
	engine *workflow.Engine,
	source readmodel.Source,
	logger *slog.Logger,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		workflows: workflows,
		engine:    engine,
		source:    source,
		logger:    logger.With("module", "scheduler"),
		interval:  interval,
		now:       time.Now,
	}
}

// Start polls until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.InfoContext(ctx, "Scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Scheduler stopped")

			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick evaluates every workflow once against the current time and a fresh
// snapshot. Each firing runs to completion before the next is evaluated,
// matching the one-run-at-a-time contract of the engine.
func (s *Scheduler) Tick(ctx context.Context) {
	workflows, err := s.workflows.Workflows(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list workflows", "error", err)

		return
	}

	snapshot, err := s.source.Current(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load business snapshot", "error", err)

		return
	}

	now := s.now().UTC()

	for _, wf := range workflows {
		if !workflow.ShouldFire(wf, snapshot, now) {
			continue
		}

		logger := s.logger.With("workflow_id", wf.ID, "workflow_name", wf.Name)
		logger.InfoContext(ctx, "Trigger fired", "kind", wf.Trigger.Kind)

		entry, err := s.engine.RunScheduled(ctx, wf.ID)
		if err != nil && !workflow.IsRunFailed(err) {
			logger.ErrorContext(ctx, "Scheduled run aborted", "error", err)

			continue
		}

		logger.InfoContext(ctx, "Scheduled run recorded", "status", entry.Status)
	}
}
