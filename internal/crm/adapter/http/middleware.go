package http

import (
	"crm-mirror/internal/shared/logger"
	"crm-mirror/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDMiddleware tags every request with an ID for log correlation. An
// inbound X-Request-ID is honored so upstream proxies can trace calls.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("X-Request-ID", requestID)
		c.SetUserContext(utils.WithRequestID(c.UserContext(), requestID))
		return c.Next()
	}
}

// TenantMiddleware extracts the locationId path parameter into the request
// context. All tenant-scoped routes sit behind it.
func TenantMiddleware(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := c.Params("locationId")
		if locationID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "locationId is required",
			})
		}
		c.SetUserContext(utils.WithLocationID(c.UserContext(), locationID))
		return c.Next()
	}
}
