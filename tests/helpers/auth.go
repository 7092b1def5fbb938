package helpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/middleware"
	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// TestAuthHeader names the requester for test requests, bypassing the
// external authorizer. The value is the user's email.
const TestAuthHeader = "X-Test-User"

// TestAuth resolves the requester from the test header instead of a
// session cookie. Requests without the header are rejected like an
// unauthenticated request would be.
func TestAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Get(TestAuthHeader)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, "email = ?", email).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(middleware.RequesterKey, &user)
		return c.Next()
	}
}
