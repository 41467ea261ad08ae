package web

import (
	"github.com/adviso/adviso/pkg/models"
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/adviso/adviso/pkg/session"
	"github.com/adviso/adviso/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps orchestration errors onto problem documents.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case session.IsBusy(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("session_busy").
			WithDetail("a send is already pending on this session")

		return c.Status(fiber.StatusConflict).JSON(problem)

	case session.IsSendFailed(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("send_failed").
			WithDetail("the assistant could not be reached; the transcript is unchanged")

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case persistence.IsSessionNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("session_not_found").
			WithDetail("session not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("workflow_not_found").
			WithDetail("workflow not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case models.IsInvalidTrigger(err), models.IsInvalidWorkflow(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case workflow.IsRunFailed(err):
		// The run attempt is recorded in the log; surface the failure
		// without pretending the request itself was malformed.
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("workflow_run_failed").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
