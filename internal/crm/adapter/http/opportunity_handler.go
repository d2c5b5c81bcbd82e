package http

import (
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// OpportunityHandler serves the opportunity CRUD, listing and sync endpoints.
type OpportunityHandler struct {
	engine *usecase.Engine
	logger logger.Logger
}

// NewOpportunityHandler creates the opportunity endpoint handler.
func NewOpportunityHandler(engine *usecase.Engine, log logger.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		engine: engine,
		logger: log.WithComponent("http.opportunity"),
	}
}

// RegisterRoutes mounts the opportunity routes on a location-scoped group.
func (h *OpportunityHandler) RegisterRoutes(location fiber.Router) {
	opportunities := location.Group("/opportunities")
	opportunities.Get("/", h.List)
	opportunities.Post("/", h.Create)
	opportunities.Post("/sync", h.Sync)
	opportunities.Get("/board/:pipelineId", h.Board)
	opportunities.Get("/:opportunityId", h.Get)
	opportunities.Put("/:opportunityId", h.Update)
	opportunities.Delete("/:opportunityId", h.Delete)
	opportunities.Put("/:opportunityId/status", h.UpdateStatus)
}

func listFilter(c *fiber.Ctx) repository.OpportunityFilter {
	filter := repository.OpportunityFilter{
		PipelineID:      c.Query("pipelineId"),
		PipelineStageID: c.Query("pipelineStageId"),
		Status:          c.Query("status"),
		Search:          c.Query("search"),
		SortField:       c.Query("sortField"),
		SortOrder:       c.Query("sortOrder", "desc"),
		Page:            c.QueryInt("page", 1),
		Limit:           c.QueryInt("limit", 20),
	}
	// Guard the page math below against explicit non-positive values.
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	return filter
}

// List pages through the mirrored opportunities of the tenant.
// GET /api/location/:locationId/opportunities
func (h *OpportunityHandler) List(c *fiber.Ctx) error {
	filter := listFilter(c)
	opportunities, total, err := h.engine.ListOpportunities(c.UserContext(), c.Params("locationId"), filter)
	if err != nil {
		return writeError(c, err)
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}
	return c.JSON(fiber.Map{
		"opportunities": opportunities,
		"meta": fiber.Map{
			"total":      total,
			"page":       filter.Page,
			"limit":      filter.Limit,
			"totalPages": totalPages,
		},
	})
}

// Board returns one pipeline's board, one page per stage.
// GET /api/location/:locationId/opportunities/board/:pipelineId
func (h *OpportunityHandler) Board(c *fiber.Ctx) error {
	pages, err := h.engine.ListBoard(c.UserContext(), c.Params("locationId"), c.Params("pipelineId"), listFilter(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stages": pages})
}

// Get reads a single mirrored opportunity.
// GET /api/location/:locationId/opportunities/:opportunityId
func (h *OpportunityHandler) Get(c *fiber.Ctx) error {
	opportunity, err := h.engine.GetOpportunity(c.UserContext(), c.Params("locationId"), c.Params("opportunityId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"opportunity": opportunity})
}

// Create creates the opportunity remotely and mirrors it.
// POST /api/location/:locationId/opportunities
func (h *OpportunityHandler) Create(c *fiber.Ctx) error {
	var form model.OpportunityForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.engine.CreateOpportunity(c.UserContext(), c.Params("locationId"), &form)
	if err != nil {
		return writeError(c, err)
	}

	body := fiber.Map{"opportunity": result.Opportunity}
	if len(result.Warnings) > 0 {
		body["warnings"] = result.Warnings
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// Update runs the single-record update protocol.
// PUT /api/location/:locationId/opportunities/:opportunityId
func (h *OpportunityHandler) Update(c *fiber.Ctx) error {
	var form model.OpportunityForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.engine.UpdateOpportunity(c.UserContext(), c.Params("locationId"), c.Params("opportunityId"), &form)
	if err != nil {
		return writeError(c, err)
	}

	body := fiber.Map{"opportunity": result.Opportunity}
	if len(result.Warnings) > 0 {
		body["warnings"] = result.Warnings
	}
	return c.JSON(body)
}

// Delete removes the opportunity remote-first.
// DELETE /api/location/:locationId/opportunities/:opportunityId
func (h *OpportunityHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.DeleteOpportunity(c.UserContext(), c.Params("locationId"), c.Params("opportunityId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// UpdateStatus changes only the status, remote-first.
// PUT /api/location/:locationId/opportunities/:opportunityId/status
func (h *OpportunityHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	opportunity, err := h.engine.UpdateOpportunityStatus(c.UserContext(), c.Params("locationId"), c.Params("opportunityId"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "opportunity": opportunity})
}

// Sync drains the remote and rebuilds the mirror.
// POST /api/location/:locationId/opportunities/sync
func (h *OpportunityHandler) Sync(c *fiber.Ctx) error {
	result, err := h.engine.SyncOpportunities(c.UserContext(), c.Params("locationId"), c.Query("pipelineId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"total":   result.Total,
		"synced":  result.Synced,
		"errors":  result.Failed,
	})
}
