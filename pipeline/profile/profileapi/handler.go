package profileapi

import (
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pipeline/profile/profilesrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for profile operations
type Handlers struct {
	service *profilesrv.Service
}

// NewHandlers creates a new profile handlers instance
func NewHandlers(service *profilesrv.Service) *Handlers {
	return &Handlers{service: service}
}

// ProcessDocument triggers résumé processing for the authenticated candidate
// POST /api/profile/process
func (h *Handlers) ProcessDocument(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	var req profile.ProcessDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return profile.ErrInvalidProfile().WithDetail("parse_error", err.Error())
	}
	req.CandidateID = candidateID

	if req.FilePath == "" || req.FileType == "" {
		return profile.ErrInvalidProfile().WithDetail("reason", "file_path and file_type are required")
	}

	resp, err := h.service.ProcessDocument(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetProfile returns the authenticated candidate's profile
// GET /api/profile
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	resp, err := h.service.GetProfile(c.Context(), candidateID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// UpdatePreferences updates candidate-set matching preferences
// PATCH /api/profile/preferences
func (h *Handlers) UpdatePreferences(c *fiber.Ctx) error {
	candidateID, ok := candidateauth.GetCandidateID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing candidate identity")
	}

	var req profile.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return profile.ErrInvalidProfile().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.UpdatePreferences(c.Context(), candidateID, req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// RegisterRoutes registers profile routes on the app
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	group := app.Group("/api/profile", authMiddleware)
	group.Get("/", handlers.GetProfile)
	group.Post("/process", handlers.ProcessDocument)
	group.Patch("/preferences", handlers.UpdatePreferences)
}
