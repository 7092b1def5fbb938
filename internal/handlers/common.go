package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/utils"
)

// msgKeyMessages lists the error messages the web client matches under the
// "msg" body key instead of "error". The split is historical; both shapes
// are part of the observed API surface.
var msgKeyMessages = map[string]struct{}{
	"All fields are required":     {},
	"User not found":              {},
	"One or more users not found": {},
}

// respondDomainError maps a service-layer error onto the HTTP surface.
func respondDomainError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidID):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	var de *services.DomainError
	if errors.As(err, &de) {
		if _, ok := msgKeyMessages[de.Message]; ok {
			return utils.MsgResponse(c, de.Message, status)
		}
		return utils.ErrorResponse(c, de.Message, status)
	}

	return utils.ErrorResponse(c, "Server error", status)
}
