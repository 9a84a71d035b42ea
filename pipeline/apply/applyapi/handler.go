package applyapi

import (
	"github.com/applyflow/applyflow/pipeline/apply/applysrv"
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for queue introspection
type Handlers struct {
	service *applysrv.Service
}

// NewHandlers creates a new apply handlers instance
func NewHandlers(service *applysrv.Service) *Handlers {
	return &Handlers{service: service}
}

// GetJobStatus returns the current state of one of the candidate's jobs
// GET /api/apply/jobs/:id
func (h *Handlers) GetJobStatus(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	jobID := kernel.NewJobID(c.Params("id"))
	resp, err := h.service.GetJobStatus(c.Context(), candidateID, jobID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQueueDepth reports job counts per status
// GET /api/apply/queue/depth
func (h *Handlers) GetQueueDepth(c *fiber.Ctx) error {
	resp, err := h.service.GetQueueDepth(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RegisterRoutes registers apply queue routes on the app
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	group := app.Group("/api/apply", authMiddleware)
	group.Get("/jobs/:id", handlers.GetJobStatus)
	group.Get("/queue/depth", handlers.GetQueueDepth)
}
