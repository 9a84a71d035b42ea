package listingapi

import (
	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pipeline/listing/listingsrv"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for listing operations
type Handlers struct {
	service *listingsrv.Service
}

// NewHandlers creates a new listing handlers instance
func NewHandlers(service *listingsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// Ingest accepts a listing pushed by the discovery collaborator
// POST /api/listings
func (h *Handlers) Ingest(c *fiber.Ctx) error {
	var req listing.IngestListingRequest
	if err := c.BodyParser(&req); err != nil {
		return listing.ErrInvalidListing().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Ingest(c.Context(), req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if resp.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

// Get returns a single listing
// GET /api/listings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id := kernel.NewListingID(c.Params("id"))
	resp, err := h.service.GetListing(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// List returns active listings with pagination
// GET /api/listings
func (h *Handlers) List(c *fiber.Ctx) error {
	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", kernel.DefaultPageSize),
	}

	resp, err := h.service.ListActive(c.Context(), pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Deactivate marks a listing closed
// DELETE /api/listings/:id
func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	id := kernel.NewListingID(c.Params("id"))
	if err := h.service.Deactivate(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Search runs semantic search over active listings
// POST /api/listings/search
func (h *Handlers) Search(c *fiber.Ctx) error {
	var req listing.SearchListingsRequest
	if err := c.BodyParser(&req); err != nil {
		return listing.ErrInvalidListing().WithDetail("parse_error", err.Error())
	}

	results, err := h.service.Search(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": results})
}

// RegisterRoutes registers listing routes on the app
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	group := app.Group("/api/listings")
	group.Post("/", handlers.Ingest)
	group.Get("/", handlers.List)
	group.Post("/search", handlers.Search)
	group.Get("/:id", handlers.Get)
	group.Delete("/:id", handlers.Deactivate)
}
