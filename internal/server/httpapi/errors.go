package httpapi

import (
	"errors"

	"github.com/anypart/marketplace/internal/common"
	"github.com/gofiber/fiber/v3"
)

func writeUnauthenticated(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "authentication required",
	})
}

// writeError maps service errors to HTTP responses. Unmatched errors become
// an opaque 500 so internals never leak to clients.
func (s *Server) writeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken):
		return writeUnauthenticated(c)
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "not found",
		})
	case errors.Is(err, common.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "already exists",
		})
	case errors.Is(err, common.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"success": false,
			"message": "insufficient credits",
		})
	case errors.Is(err, common.ErrInvalidSignature):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid signature",
		})
	}
	s.logger.Error(c.Context(), "request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "internal error",
	})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
