package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/models"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles user directory routes
type UserHandler struct {
	DB *gorm.DB
}

// CreateUser handles POST /api/users
// @Summary Register a directory account
// @Description Creates the local account row for an identity that signed up through the authorizer. Role is fixed at creation.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body object true "email, firstName, lastName, role"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var body struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	user, err := services.CreateUser(h.DB, body.Email, body.FirstName, body.LastName, models.Role(body.Role))
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": "User Created.",
		"user":    user,
	})
}

// ListClients handles GET /api/users/clients
// @Summary List client accounts
// @Description Returns every client-role user, for building an application's applicant list
// @Tags Users
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /users/clients [get]
func (h *UserHandler) ListClients(c *fiber.Ctx) error {
	clients, err := services.ListClients(h.DB)
	if err != nil {
		return utils.ServerErrorResponse(c, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(clients)
}
