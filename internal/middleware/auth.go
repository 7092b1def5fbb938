package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/models"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/types"
	"gorm.io/gorm"
)

// RequesterKey is the context local holding the resolved *models.User.
const RequesterKey = "requester"

// RequireAuth resolves the requesting identity. The session cookie is
// validated against the external authorizer, then the identity's email is
// mapped to the local directory row. Role and ownership checks happen per
// operation in the service layer, not here.
func RequireAuth(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The authorizer client needs a request to learn the redirect URL
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				return &types.CustomError{
					Code:    fiber.StatusServiceUnavailable,
					Message: fmt.Sprintf("Authorizer unavailable: %v", err),
					Type:    "authorization.init",
				}
			}
		}

		session := c.Cookies("cookie_session")
		if session == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Authorizer cookie \"cookie_session\" not found",
				Type:    "authorization.session",
			}
		}

		email, err := services.ValidateSession(session)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    "authorization.session",
			}
		}

		requester, err := services.FindUserByEmail(db, email)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "No account for authenticated identity",
				Type:    "authorization.directory",
			}
		}

		c.Locals(RequesterKey, requester)

		return c.Next()
	}
}

// Requester returns the resolved user set by RequireAuth, or nil.
func Requester(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(RequesterKey).(*models.User)
	return user
}
