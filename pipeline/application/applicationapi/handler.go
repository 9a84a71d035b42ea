package applicationapi

import (
	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for application record queries
type Handlers struct {
	repo application.Repository
}

// NewHandlers creates a new application handlers instance
func NewHandlers(repo application.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// List returns the candidate's application records
// GET /api/applications
func (h *Handlers) List(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", kernel.DefaultPageSize),
	}

	resp, err := h.repo.ListByCandidate(c.Context(), candidateID, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get returns a single application record
// GET /api/applications/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	id := kernel.NewApplicationID(c.Params("id"))
	resp, err := h.repo.GetByID(c.Context(), candidateID, id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RegisterRoutes registers application record routes on the app
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	group := app.Group("/api/applications", authMiddleware)
	group.Get("/", handlers.List)
	group.Get("/:id", handlers.Get)
}
