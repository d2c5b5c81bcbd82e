package http

import (
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler serves tenant connection and settings endpoints.
type LocationHandler struct {
	engine *usecase.Engine
	logger logger.Logger
}

// NewLocationHandler creates the tenant endpoint handler.
func NewLocationHandler(engine *usecase.Engine, log logger.Logger) *LocationHandler {
	return &LocationHandler{
		engine: engine,
		logger: log.WithComponent("http.location"),
	}
}

// RegisterRoutes mounts the tenant routes on a location-scoped group.
func (h *LocationHandler) RegisterRoutes(location fiber.Router) {
	location.Get("/", h.CheckLocation)
	location.Post("/api-key", h.StoreAPIKey)
	location.Get("/settings", h.GetSettings)
	location.Put("/settings", h.UpdateSettings)
}

// CheckLocation reports the tenant's connection state, creating the tenant
// record on first sight.
// GET /api/location/:locationId
func (h *LocationHandler) CheckLocation(c *fiber.Ctx) error {
	status, err := h.engine.CheckOrCreateLocation(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"exists":    true,
		"hasApiKey": status.HasCredential,
		"location":  status,
	})
}

// StoreAPIKey validates and stores the tenant credential.
// POST /api/location/:locationId/api-key
func (h *LocationHandler) StoreAPIKey(c *fiber.Ctx) error {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := h.engine.StoreCredential(c.UserContext(), c.Params("locationId"), req.APIKey)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"location": status,
	})
}

// GetSettings returns the tenant's board settings.
// GET /api/location/:locationId/settings
func (h *LocationHandler) GetSettings(c *fiber.Ctx) error {
	location, err := h.engine.GetSettings(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(settingsResponse(location))
}

// UpdateSettings applies a partial settings update.
// PUT /api/location/:locationId/settings
func (h *LocationHandler) UpdateSettings(c *fiber.Ctx) error {
	var patch model.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	location, err := h.engine.UpdateSettings(c.UserContext(), c.Params("locationId"), &patch)
	if err != nil {
		return writeError(c, err)
	}
	response := settingsResponse(location)
	response["success"] = true
	return c.JSON(response)
}

func settingsResponse(location *model.Location) fiber.Map {
	return fiber.Map{
		"paginationEnabled":  location.PaginationEnabled,
		"pageSize":           location.PageSize,
		"paginationPerStage": location.PaginationPerStage,
		"sortField":          location.SortField,
		"sortOrder":          location.SortOrder,
		"cardFieldSettings":  location.CardFieldSettings,
		"quickActions":       location.QuickActions,
	}
}
