package http

import (
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// DirectoryHandler serves pass-through lookups against the remote directory
// (contacts, users, tags).
type DirectoryHandler struct {
	engine *usecase.Engine
	logger logger.Logger
}

// NewDirectoryHandler creates the directory endpoint handler.
func NewDirectoryHandler(engine *usecase.Engine, log logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		engine: engine,
		logger: log.WithComponent("http.directory"),
	}
}

// RegisterRoutes mounts the directory routes on a location-scoped group.
func (h *DirectoryHandler) RegisterRoutes(location fiber.Router) {
	location.Get("/contacts", h.ListContacts)
	location.Get("/users", h.ListUsers)
	location.Get("/tags", h.ListTags)
}

// ListContacts searches remote contacts by free-text query.
// GET /api/location/:locationId/contacts?query=
func (h *DirectoryHandler) ListContacts(c *fiber.Ctx) error {
	page, err := h.engine.ListContacts(c.UserContext(), c.Params("locationId"), c.Query("query"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// ListUsers lists the remote users of the tenant.
// GET /api/location/:locationId/users
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.engine.ListUsers(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// ListTags lists the remote tag definitions of the tenant.
// GET /api/location/:locationId/tags
func (h *DirectoryHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.engine.ListTags(c.UserContext(), c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}
