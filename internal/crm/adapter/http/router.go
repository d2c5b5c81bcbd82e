package http

import (
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Router bundles all tenant-scoped handlers of the mirror API.
type Router struct {
	location    *LocationHandler
	opportunity *OpportunityHandler
	schema      *SchemaHandler
	directory   *DirectoryHandler
	logger      logger.Logger
}

// NewRouter wires the handlers around a single engine instance.
func NewRouter(engine *usecase.Engine, log logger.Logger) *Router {
	return &Router{
		location:    NewLocationHandler(engine, log),
		opportunity: NewOpportunityHandler(engine, log),
		schema:      NewSchemaHandler(engine, log),
		directory:   NewDirectoryHandler(engine, log),
		logger:      log.WithComponent("http.router"),
	}
}

// RegisterRoutes mounts the whole API under /api/location/:locationId. Every
// route below the group runs the tenant middleware, so handlers can rely on
// the locationId param being present.
func (r *Router) RegisterRoutes(app fiber.Router) {
	app.Use(RequestIDMiddleware())

	location := app.Group("/api/location/:locationId", TenantMiddleware(r.logger))
	r.location.RegisterRoutes(location)
	r.opportunity.RegisterRoutes(location)
	r.schema.RegisterRoutes(location)
	r.directory.RegisterRoutes(location)
}
