package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/events"
	"github.com/adviso/adviso/pkg/log"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	failOn  string
	prompts []string
}

func (s *scriptedClient) Invoke(_ context.Context, _, prompt string, _ map[string]any) (string, error) {
	s.prompts = append(s.prompts, prompt)

	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		return "", ai.ErrUnavailable
	}

	return "Done: " + prompt, nil
}

type capturingPublisher struct {
	published []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.published = append(p.published, event)

	return nil
}

type testEnv struct {
	engine    *Engine
	client    *scriptedClient
	publisher *capturingPublisher
	workflows *file.WorkflowRepository
	logs      *file.WorkflowLogRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	client := &scriptedClient{}
	publisher := &capturingPublisher{}

	engine := NewEngine(
		store.WorkflowRepository(),
		store.WorkflowLogRepository(),
		client,
		publisher,
		log.Discard(),
	)

	return &testEnv{
		engine:    engine,
		client:    client,
		publisher: publisher,
		workflows: store.WorkflowRepository().(*file.WorkflowRepository),
		logs:      store.WorkflowLogRepository().(*file.WorkflowLogRepository),
	}
}

func scheduleWorkflow(actionIDs ...string) *models.Workflow {
	return &models.Workflow{
		Name:   "weekly pricing review",
		Domain: "pricing",
		Trigger: models.Trigger{
			Kind:   models.TriggerKindSchedule,
			Config: map[string]any{"cron": "0 9 * * 1"},
		},
		ActionIDs: actionIDs,
		Enabled:   true,
	}
}

func TestCreateComputesNextRun(t *testing.T) {
	env := newTestEnv(t)
	workflow := scheduleWorkflow("adjust-prices")

	require.NoError(t, env.engine.Create(context.Background(), workflow))
	assert.NotEmpty(t, workflow.ID)
	assert.NotNil(t, workflow.NextRun)
}

func TestCreateRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.Create(context.Background(), &models.Workflow{
		Name:   "no actions",
		Domain: "pricing",
		Trigger: models.Trigger{
			Kind:   models.TriggerKindSchedule,
			Config: map[string]any{"cron": "0 9 * * 1"},
		},
	})
	assert.ErrorIs(t, err, models.ErrInvalidWorkflow)

	err = env.engine.Create(context.Background(), &models.Workflow{
		Name:      "bad trigger",
		Domain:    "pricing",
		Trigger:   models.Trigger{Kind: models.TriggerKindSchedule, Config: map[string]any{}},
		ActionIDs: []string{"adjust-prices"},
	})
	assert.Error(t, err)
}

func TestRunNowSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices", "margin-analysis")
	require.NoError(t, env.engine.Create(ctx, workflow))

	originalNextRun := *workflow.NextRun

	entry, err := env.engine.RunNow(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowRunSuccess, entry.Status)
	assert.Contains(t, entry.Message, "Suggest price adjustments")
	assert.Contains(t, entry.Message, "Analyze margins")

	// Manual runs update LastRun but never NextRun.
	stored, err := env.workflows.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastRun)
	require.NotNil(t, stored.NextRun)
	assert.Equal(t, originalNextRun, *stored.NextRun)

	entries, err := env.logs.LogEntries(ctx, workflow.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunNowPermittedWhenDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices")
	workflow.Enabled = false
	require.NoError(t, env.engine.Create(ctx, workflow))

	entry, err := env.engine.RunNow(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowRunSuccess, entry.Status)
}

func TestRunAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.client.failOn = "Analyze margins"

	workflow := scheduleWorkflow("adjust-prices", "margin-analysis", "discount-impact")
	require.NoError(t, env.engine.Create(ctx, workflow))

	entry, err := env.engine.RunNow(ctx, workflow.ID)
	require.Error(t, err)
	assert.True(t, IsRunFailed(err))
	assert.Equal(t, models.WorkflowRunFailed, entry.Status)

	// The failing action aborted the run; the third action never executed.
	assert.Len(t, env.client.prompts, 2)

	// Exactly one log entry per attempt, and the workflow stays enabled.
	entries, err := env.logs.LogEntries(ctx, workflow.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.WorkflowRunFailed, entries[0].Status)

	stored, err := env.workflows.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
	assert.NotNil(t, stored.LastRun)
}

func TestRunScheduledUpdatesNextRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices")
	require.NoError(t, env.engine.Create(ctx, workflow))

	originalNextRun := *workflow.NextRun

	entry, err := env.engine.RunScheduled(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowRunSuccess, entry.Status)

	stored, err := env.workflows.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NextRun)
	assert.NotEqual(t, originalNextRun, *stored.NextRun)
}

func TestRunScheduledSkipsDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices")
	workflow.Enabled = false
	require.NoError(t, env.engine.Create(ctx, workflow))

	entry, err := env.engine.RunScheduled(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowRunSkipped, entry.Status)
	assert.Empty(t, env.client.prompts)
}

func TestTogglePreservesHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices")
	require.NoError(t, env.engine.Create(ctx, workflow))

	_, err := env.engine.RunNow(ctx, workflow.ID)
	require.NoError(t, err)

	toggled, err := env.engine.Toggle(ctx, workflow.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	entries, err := env.logs.LogEntries(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	toggled, err = env.engine.Toggle(ctx, workflow.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Enabled)
	assert.NotNil(t, toggled.NextRun)
}

func TestStateOf(t *testing.T) {
	env := newTestEnv(t)

	workflow := scheduleWorkflow("adjust-prices")
	assert.Equal(t, StateEnabledIdle, env.engine.StateOf(workflow))

	workflow.Enabled = false
	assert.Equal(t, StateDisabled, env.engine.StateOf(workflow))

	workflow.Enabled = true
	workflow.ID = "wf-running"
	env.engine.setRunning("wf-running", true)
	assert.Equal(t, StateEnabledRunning, env.engine.StateOf(workflow))
	env.engine.setRunning("wf-running", false)
	assert.Equal(t, StateEnabledIdle, env.engine.StateOf(workflow))
}

func TestRunPublishesEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workflow := scheduleWorkflow("adjust-prices")
	require.NoError(t, env.engine.Create(ctx, workflow))

	_, err := env.engine.RunNow(ctx, workflow.ID)
	require.NoError(t, err)

	var types []events.EventType
	for _, event := range env.publisher.published {
		types = append(types, event.GetType())
	}

	assert.Contains(t, types, events.WorkflowRunCompletedEvent)
	assert.Contains(t, types, events.ReadModelInvalidatedEvent)
	assert.Contains(t, types, events.NotificationRaisedEvent)
}

func TestRunFailurePublishesErrorNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.client.failOn = "Suggest price adjustments"

	workflow := scheduleWorkflow("adjust-prices")
	require.NoError(t, env.engine.Create(ctx, workflow))

	_, err := env.engine.RunNow(ctx, workflow.ID)
	require.Error(t, err)

	var notification *events.NotificationRaised

	for _, event := range env.publisher.published {
		if raised, ok := event.(events.NotificationRaised); ok {
			notification = &raised
		}
	}

	require.NotNil(t, notification)
	assert.Equal(t, events.NotificationError, notification.Level)
	assert.Contains(t, notification.Message, "stays enabled")
}

func TestRunScheduledAfterFailureKeepsScheduling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.client.failOn = "Suggest price adjustments"

	workflow := scheduleWorkflow("adjust-prices")
	require.NoError(t, env.engine.Create(ctx, workflow))

	entry, err := env.engine.RunScheduled(ctx, workflow.ID)
	require.Error(t, err)
	assert.True(t, IsRunFailed(err))
	assert.Equal(t, models.WorkflowRunFailed, entry.Status)

	stored, err := env.workflows.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
	assert.NotNil(t, stored.NextRun, "failed runs still reschedule")
}

func TestShouldFire(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 1, 0, time.UTC)
	due := now.Add(-time.Minute)

	tests := []struct {
		name     string
		workflow models.Workflow
		snapshot models.BusinessSnapshot
		want     bool
	}{
		{
			name: "schedule due",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindSchedule, Config: map[string]any{"cron": "0 9 * * 1"}},
				NextRun: &due,
			},
			want: true,
		},
		{
			name: "schedule not due",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindSchedule, Config: map[string]any{"cron": "0 9 * * 1"}},
			},
			want: false,
		},
		{
			name: "event observed",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindEvent, Config: map[string]any{"event": "order.created"}},
			},
			snapshot: models.BusinessSnapshot{Events: []string{"order.created"}},
			want:     true,
		},
		{
			name: "event absent",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindEvent, Config: map[string]any{"event": "order.created"}},
			},
			snapshot: models.BusinessSnapshot{Events: []string{"client.updated"}},
			want:     false,
		},
		{
			name: "threshold breached",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindThreshold, Config: map[string]any{
					"field": "stock_level", "operator": "lt", "value": 10.0,
				}},
			},
			snapshot: models.BusinessSnapshot{Metrics: map[string]float64{"stock_level": 4}},
			want:     true,
		},
		{
			name: "threshold holds",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindThreshold, Config: map[string]any{
					"field": "stock_level", "operator": "lt", "value": 10.0,
				}},
			},
			snapshot: models.BusinessSnapshot{Metrics: map[string]float64{"stock_level": 25}},
			want:     false,
		},
		{
			name: "threshold metric missing",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindThreshold, Config: map[string]any{
					"field": "stock_level", "operator": "lt", "value": 10.0,
				}},
			},
			want: false,
		},
		{
			name: "unknown kind never fires",
			workflow: models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKind("webhook"), Config: map[string]any{}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFire(&tt.workflow, tt.snapshot, now))
		})
	}
}

func TestThresholdOperators(t *testing.T) {
	snapshot := models.BusinessSnapshot{Metrics: map[string]float64{"margin": 30}}

	tests := []struct {
		operator string
		value    any
		want     bool
	}{
		{"gt", 20.0, true},
		{"gt", 30.0, false},
		{"gte", 30.0, true},
		{"lt", 40.0, true},
		{"lte", 30, true},
		{"eq", 30.0, true},
		{"eq", 31.0, false},
		{"between", 30.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.operator, func(t *testing.T) {
			workflow := models.Workflow{
				Trigger: models.Trigger{Kind: models.TriggerKindThreshold, Config: map[string]any{
					"field": "margin", "operator": tt.operator, "value": tt.value,
				}},
			}

			assert.Equal(t, tt.want, ShouldFire(&workflow, snapshot, time.Now()))
		})
	}
}
