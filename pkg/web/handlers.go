package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/adviso/adviso/pkg/bulk"
	"github.com/adviso/adviso/pkg/catalog"
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/adviso/adviso/pkg/predict"
	"github.com/adviso/adviso/pkg/readmodel"
	"github.com/adviso/adviso/pkg/session"
	"github.com/adviso/adviso/pkg/viz"
	"github.com/adviso/adviso/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	sessions    *session.Manager
	runner      *bulk.Runner
	engine      *workflow.Engine
	source      readmodel.Source
	renderers   *viz.Registry
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	sessions *session.Manager,
	runner *bulk.Runner,
	engine *workflow.Engine,
	source readmodel.Source,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		sessions:    sessions,
		runner:      runner,
		engine:      engine,
		source:      source,
		renderers:   viz.NewRegistry(),
		persistence: persistence,
		validator:   validator,
	}
}

// SendMessage forwards one user message on a session. The assistant reply
// is returned with any embedded visualization already split out.
func (h *APIHandlers) SendMessage(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	var req SendMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	contextData := req.Context
	if contextData == nil {
		if fetched, err := h.source.BusinessContext(c.Context(), req.Domain); err == nil {
			contextData = fetched
		}
	}

	reply, err := h.sessions.Send(c.Context(), sessionID, req.Domain, req.Content, contextData)
	if err != nil {
		if errors.Is(err, session.ErrEmptyMessage) {
			return badRequest(c, "Message content is required")
		}

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.toMessageResponse(reply))
}

// GetMessages returns the session transcript in conversational order.
func (h *APIHandlers) GetMessages(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	messages, err := h.sessions.History(c.Context(), sessionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, h.toMessageResponse(message))
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"messages":   responses,
	})
}

// toMessageResponse splits assistant content into prose plus decoded
// visualization. User messages pass through untouched.
func (h *APIHandlers) toMessageResponse(message *models.Message) MessageResponse {
	response := MessageResponse{
		ID:        message.ID,
		SessionID: message.SessionID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}

	if message.Role != models.MessageRoleAssistant {
		return response
	}

	prose, payload := viz.Split(message.Content)
	response.Content = prose
	response.Visualization = payload

	if payload != nil {
		if rendered, ok := h.renderers.Render(payload); ok {
			response.Rendered = rendered
		}
	}

	return response
}

// GetCatalog lists the action descriptors of a domain. Unknown domains get
// an empty list, not an error.
func (h *APIHandlers) GetCatalog(c fiber.Ctx) error {
	domain := c.Params("domain")
	if domain == "" {
		return badRequest(c, "Domain is required")
	}

	return c.JSON(fiber.Map{
		"domain":  domain,
		"actions": catalog.ActionsFor(domain),
	})
}

// GetCatalogDomains lists every domain with a populated catalog.
func (h *APIHandlers) GetCatalogDomains(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"domains": catalog.Domains()})
}

// CreateBulkRun executes a bulk action run synchronously and returns the
// finished run summary.
func (h *APIHandlers) CreateBulkRun(c fiber.Ctx) error {
	var req BulkRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	run, err := h.runner.Run(c.Context(), req.Domain, req.ActionIDs, nil)
	if err != nil {
		if errors.Is(err, bulk.ErrEmptySelection) {
			return badRequest(c, "At least one action must be selected")
		}

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(run)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.WorkflowRepository().Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	responses := make([]WorkflowResponse, 0, len(workflows))
	for _, wf := range workflows {
		responses = append(responses, h.toWorkflowResponse(wf))
	}

	return c.JSON(fiber.Map{"workflows": responses})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.toWorkflowResponse(wf))
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	wf := &models.Workflow{
		Name:      req.Name,
		Domain:    req.Domain,
		Trigger:   req.Trigger,
		ActionIDs: req.ActionIDs,
		Enabled:   req.Enabled,
	}

	if err := h.engine.Create(c.Context(), wf); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.toWorkflowResponse(wf))
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Trigger != nil {
		existing.Trigger = *req.Trigger
	}

	if req.ActionIDs != nil {
		existing.ActionIDs = req.ActionIDs
	}

	if err := h.engine.Update(c.Context(), existing); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.toWorkflowResponse(existing))
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.persistence.WorkflowRepository().DeleteWorkflow(c.Context(), id); err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleWorkflow flips the enabled flag without touching the run history.
func (h *APIHandlers) ToggleWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.engine.Toggle(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.toWorkflowResponse(wf))
}

// RunWorkflow triggers a manual run. The attempt is recorded in the log
// whatever the outcome.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	entry, err := h.engine.RunNow(c.Context(), id)
	if err != nil && !workflow.IsRunFailed(err) {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetWorkflowLogs returns the run history newest-first. A workflow that
// never ran gets an empty list.
func (h *APIHandlers) GetWorkflowLogs(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	entries, err := h.persistence.WorkflowLogRepository().LogEntries(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": id,
		"entries":     entries,
	})
}

// GetPredictions derives the current prediction set from a fresh snapshot.
func (h *APIHandlers) GetPredictions(c fiber.Ctx) error {
	snapshot, err := h.source.Current(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"predictions": predict.Derive(snapshot)})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Adviso API is healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Adviso API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) toWorkflowResponse(wf *models.Workflow) WorkflowResponse {
	return WorkflowResponse{
		Workflow: wf,
		State:    string(h.engine.StateOf(wf)),
	}
}
