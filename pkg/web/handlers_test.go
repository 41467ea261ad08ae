package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/bulk"
	"github.com/adviso/adviso/pkg/eventbus"
	"github.com/adviso/adviso/pkg/log"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence/file"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/session"
	"github.com/adviso/adviso/pkg/web"
	"github.com/adviso/adviso/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns a fixed reply, or an error when failing is set.
type scriptedClient struct {
	mu      sync.Mutex
	reply   string
	failing bool
}

func (c *scriptedClient) Invoke(_ context.Context, _, _ string, _ map[string]any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return "", ai.ErrUnavailable
	}

	return c.reply, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error {
	return nil
}

func setupTestApp(t *testing.T) (*fiber.App, *scriptedClient) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	logger := log.Discard()
	client := &scriptedClient{reply: "All good."}
	publisher := discardPublisher{}

	sessions := session.NewManager(persistence.SessionRepository(), client, logger)
	runner := bulk.NewRunner(client, publisher, logger)
	engine := workflow.NewEngine(
		persistence.WorkflowRepository(),
		persistence.WorkflowLogRepository(),
		client,
		publisher,
		logger,
	)
	source := readmodel.NewDemoSource()
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(sessions, runner, engine, source, persistence, validate)

	app := fiber.New()

	s := app.Group("/sessions")
	s.Post("/:id/messages", handlers.SendMessage)
	s.Get("/:id/messages", handlers.GetMessages)

	app.Get("/catalog", handlers.GetCatalogDomains)
	app.Get("/catalog/:domain", handlers.GetCatalog)
	app.Post("/bulk-runs", handlers.CreateBulkRun)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/toggle", handlers.ToggleWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/logs", handlers.GetWorkflowLogs)

	app.Get("/predictions", handlers.GetPredictions)
	app.Get("/health", handlers.HealthCheck)

	return app, client
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body []byte

	if payload != nil {
		if str, ok := payload.(string); ok {
			body = []byte(str)
		} else {
			encoded, err := json.Marshal(payload)
			require.NoError(t, err)

			body = encoded
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, responseBody
}

func TestSendMessageReturnsAssistantReply(t *testing.T) {
	app, client := setupTestApp(t)
	client.reply = "Here is your report."

	resp, body := doJSON(t, app, http.MethodPost, "/sessions/inventory-1/messages", web.SendMessageRequest{
		Domain:  "inventory",
		Content: "How is my stock?",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var message web.MessageResponse
	require.NoError(t, json.Unmarshal(body, &message))

	assert.Equal(t, models.MessageRoleAssistant, message.Role)
	assert.Equal(t, "Here is your report.", message.Content)
	assert.Nil(t, message.Visualization)
}

func TestSendMessageSplitsVisualization(t *testing.T) {
	app, client := setupTestApp(t)
	client.reply = "Prices look stable.\n[VISUALIZATION]{\"type\":\"pricing\",\"data\":{\"current\":10}}\n[VISUALIZATION]\nReview quarterly."

	resp, body := doJSON(t, app, http.MethodPost, "/sessions/pricing-1/messages", web.SendMessageRequest{
		Domain:  "pricing",
		Content: "Price check",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var message web.MessageResponse
	require.NoError(t, json.Unmarshal(body, &message))

	assert.NotContains(t, message.Content, "[VISUALIZATION]")
	require.NotNil(t, message.Visualization)
	assert.Equal(t, models.VisualizationPricing, message.Visualization.Type)
	assert.NotNil(t, message.Rendered)
}

func TestSendMessageFailureReturnsBadGateway(t *testing.T) {
	app, client := setupTestApp(t)
	client.failing = true

	resp, _ := doJSON(t, app, http.MethodPost, "/sessions/inventory-2/messages", web.SendMessageRequest{
		Domain:  "inventory",
		Content: "Hello",
	})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The failed exchange must not appear in the transcript.
	client.failing = false

	historyResp, body := doJSON(t, app, http.MethodGet, "/sessions/inventory-2/messages", nil)
	if historyResp.StatusCode == http.StatusOK {
		var history struct {
			Messages []web.MessageResponse `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &history))
		assert.Empty(t, history.Messages)
	} else {
		assert.Equal(t, http.StatusNotFound, historyResp.StatusCode)
	}
}

func TestSendMessageValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name    string
		payload any
	}{
		{name: "missing content", payload: web.SendMessageRequest{Domain: "inventory"}},
		{name: "missing domain", payload: web.SendMessageRequest{Content: "hi"}},
		{name: "invalid json", payload: "not-json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/sessions/s-1/messages", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetMessagesOrdersTranscript(t *testing.T) {
	app, client := setupTestApp(t)

	client.reply = "First answer."
	doJSON(t, app, http.MethodPost, "/sessions/orders-1/messages", web.SendMessageRequest{
		Domain:  "orders",
		Content: "First question",
	})

	client.reply = "Second answer."
	doJSON(t, app, http.MethodPost, "/sessions/orders-1/messages", web.SendMessageRequest{
		Domain:  "orders",
		Content: "Second question",
	})

	resp, body := doJSON(t, app, http.MethodGet, "/sessions/orders-1/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		Messages []web.MessageResponse `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history.Messages, 4)

	assert.Equal(t, models.MessageRoleUser, history.Messages[0].Role)
	assert.Equal(t, "First question", history.Messages[0].Content)
	assert.Equal(t, "Second answer.", history.Messages[3].Content)
}

func TestGetCatalogKnownDomain(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/catalog/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Domain  string                    `json:"domain"`
		Actions []models.ActionDescriptor `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "inventory", result.Domain)
	assert.NotEmpty(t, result.Actions)
}

func TestGetCatalogUnknownDomainEmpty(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/catalog/payroll", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Actions []models.ActionDescriptor `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Empty(t, result.Actions)
}

func TestCreateBulkRun(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/bulk-runs", web.BulkRunRequest{
		Domain:    "inventory",
		ActionIDs: []string{"restock-report", "dead-stock-review"},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var run models.BulkRun
	require.NoError(t, json.Unmarshal(body, &run))

	assert.Equal(t, models.BulkRunStatusFull, run.Status)
	assert.Equal(t, 100, run.ProgressPercent)
	assert.Len(t, run.Results, 2)
}

func TestCreateBulkRunRejectsEmptySelection(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/bulk-runs", map[string]any{
		"domain":     "inventory",
		"action_ids": []string{},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateBulkRunRejectsDuplicateSelection(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/bulk-runs", web.BulkRunRequest{
		Domain:    "inventory",
		ActionIDs: []string{"restock-report", "restock-report"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func newWorkflowRequest() web.CreateWorkflowRequest {
	return web.CreateWorkflowRequest{
		Name:   "Morning restock check",
		Domain: "inventory",
		Trigger: models.Trigger{
			Kind:   models.TriggerKindSchedule,
			Config: map[string]any{"cron": "0 9 * * *"},
		},
		ActionIDs: []string{"restock-report"},
		Enabled:   true,
	}
}

func TestWorkflowLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/", newWorkflowRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created web.WorkflowResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "enabled-idle", created.State)
	assert.NotNil(t, created.NextRun)

	// Toggle off.
	resp, body = doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled web.WorkflowResponse
	require.NoError(t, json.Unmarshal(body, &toggled))
	assert.False(t, toggled.Enabled)
	assert.Equal(t, "disabled", toggled.State)

	// Manual run works while disabled.
	resp, body = doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/run", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry models.WorkflowLogEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, models.WorkflowRunSuccess, entry.Status)

	// Log history lists the run.
	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs struct {
		Entries []models.WorkflowLogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(body, &logs))
	require.Len(t, logs.Entries, 1)

	// Delete.
	req := httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil)

	deleteResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)
	_ = deleteResp.Body.Close()

	resp, _ = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateWorkflowValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name   string
		mutate func(req *web.CreateWorkflowRequest)
	}{
		{name: "short name", mutate: func(req *web.CreateWorkflowRequest) { req.Name = "ab" }},
		{name: "no actions", mutate: func(req *web.CreateWorkflowRequest) { req.ActionIDs = nil }},
		{name: "bad cron", mutate: func(req *web.CreateWorkflowRequest) {
			req.Trigger.Config = map[string]any{"cron": "not a cron"}
		}},
		{name: "unknown trigger kind", mutate: func(req *web.CreateWorkflowRequest) {
			req.Trigger.Kind = models.TriggerKind("webhook")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newWorkflowRequest()
			tt.mutate(&req)

			resp, _ := doJSON(t, app, http.MethodPost, "/workflows/", req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpdateWorkflowPartial(t *testing.T) {
	app, _ := setupTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/workflows/", newWorkflowRequest())

	var created web.WorkflowResponse
	require.NoError(t, json.Unmarshal(body, &created))

	newName := "Evening restock check"

	resp, body := doJSON(t, app, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Name: &newName,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated web.WorkflowResponse
	require.NoError(t, json.Unmarshal(body, &updated))

	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, created.ActionIDs, updated.ActionIDs)
}

func TestRunWorkflowFailureStillReturnsLogEntry(t *testing.T) {
	app, client := setupTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/workflows/", newWorkflowRequest())

	var created web.WorkflowResponse
	require.NoError(t, json.Unmarshal(body, &created))

	client.failing = true

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/run", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry models.WorkflowLogEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, models.WorkflowRunFailed, entry.Status)
}

func TestGetPredictions(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/predictions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Predictions []models.Prediction `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	// The demo snapshot trips the low stock and inactive client rules.
	assert.NotEmpty(t, result.Predictions)
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWorkflowNotFoundResponses(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/workflows/wf-missing"},
		{http.MethodPost, "/workflows/wf-missing/toggle"},
		{http.MethodPost, "/workflows/wf-missing/run"},
		{http.MethodGet, "/workflows/wf-missing/logs"},
	} {
		resp, _ := doJSON(t, app, tt.method, tt.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tt.path)
	}
}
