package http

import (
	"errors"

	apperrors "crm-mirror/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// writeError maps an application error onto an HTTP response. Typed AppErrors
// carry their own status; known sentinels get their canonical status; anything
// else is a 500 with a generic message.
func writeError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body := fiber.Map{"error": appErr.Message}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		return c.Status(appErr.HTTPCode).JSON(body)
	}

	switch {
	case errors.Is(err, apperrors.ErrLocationNotFound),
		errors.Is(err, apperrors.ErrOpportunityNotFound),
		errors.Is(err, apperrors.ErrPipelineNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCredentialMissing):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
