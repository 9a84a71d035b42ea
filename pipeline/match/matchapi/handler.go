package matchapi

import (
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pipeline/match"
	"github.com/applyflow/applyflow/pipeline/match/matchsrv"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for match operations
type Handlers struct {
	service *matchsrv.Service
}

// NewHandlers creates a new match handlers instance
func NewHandlers(service *matchsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// ListPending returns the candidate's unreviewed matches
// GET /api/matches/pending
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	resp, err := h.service.ListPending(c.Context(), candidateID, paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListReviewed returns the candidate's reviewed matches
// GET /api/matches/reviewed
func (h *Handlers) ListReviewed(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	resp, err := h.service.ListReviewed(c.Context(), candidateID, paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get returns a single match
// GET /api/matches/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	matchID := kernel.NewMatchID(c.Params("id"))
	resp, err := h.service.GetMatch(c.Context(), candidateID, matchID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Review approves or rejects a pending match
// POST /api/matches/:id/review
func (h *Handlers) Review(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	var req match.ReviewMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return match.ErrInvalidReview().WithDetail("parse_error", err.Error())
	}

	matchID := kernel.NewMatchID(c.Params("id"))
	resp, err := h.service.Review(c.Context(), candidateID, matchID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func paginationFrom(c *fiber.Ctx) kernel.PaginationOptions {
	return kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", kernel.DefaultPageSize),
	}
}

// RegisterRoutes registers match routes on the app
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	group := app.Group("/api/matches", authMiddleware)
	group.Get("/pending", handlers.ListPending)
	group.Get("/reviewed", handlers.ListReviewed)
	group.Get("/:id", handlers.Get)
	group.Post("/:id/review", handlers.Review)
}
