package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends the error body shape the web client expects: a bare
// {"error": message} with the given status code.
func ErrorResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// MsgResponse sends the alternate {"msg": message} error body. A handful of
// endpoints use this key instead of "error" and the client matches on it.
func MsgResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"msg": message,
	})
}

// ServerErrorResponse sends a generic 500 response
func ServerErrorResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusInternalServerError)
}

// UnhandledErrorResponse sends the structured body used by the global fiber
// error handler for anything the route handlers did not map themselves.
func UnhandledErrorResponse(c *fiber.Ctx, status int, message, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
