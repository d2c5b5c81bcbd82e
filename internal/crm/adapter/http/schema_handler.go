package http

import (
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// SchemaHandler serves pipeline and custom-field definitions for a tenant.
type SchemaHandler struct {
	engine *usecase.Engine
	logger logger.Logger
}

// NewSchemaHandler creates the schema endpoint handler.
func NewSchemaHandler(engine *usecase.Engine, log logger.Logger) *SchemaHandler {
	return &SchemaHandler{
		engine: engine,
		logger: log.WithComponent("http.schema"),
	}
}

// RegisterRoutes mounts the schema routes on a location-scoped group.
func (h *SchemaHandler) RegisterRoutes(location fiber.Router) {
	location.Get("/pipelines", h.ListPipelines)
	location.Post("/pipelines/sync", h.SyncPipelines)
	location.Get("/custom-fields", h.GetCustomFields)
}

// ListPipelines serves the mirrored pipeline definitions.
// GET /api/location/:locationId/pipelines
func (h *SchemaHandler) ListPipelines(c *fiber.Ctx) error {
	pipelines, err := h.engine.ListPipelines(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"pipelines": pipelines})
}

// SyncPipelines refreshes the pipeline mirror from the remote.
// POST /api/location/:locationId/pipelines/sync
func (h *SchemaHandler) SyncPipelines(c *fiber.Ctx) error {
	pipelines, err := h.engine.SyncPipelines(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "pipelines": pipelines})
}

// GetCustomFields serves the custom-field cache, refreshing when it is
// unusable or ?refresh=true is passed.
// GET /api/location/:locationId/custom-fields?model=opportunity
func (h *SchemaHandler) GetCustomFields(c *fiber.Ctx) error {
	fieldModel := model.FieldModel(c.Query("model", string(model.FieldModelOpportunity)))
	if fieldModel != model.FieldModelOpportunity && fieldModel != model.FieldModelContact {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "model must be opportunity or contact"})
	}

	partition, err := h.engine.GetCustomFields(c.UserContext(), c.Params("locationId"), fieldModel, c.QueryBool("refresh"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(partition)
}
