package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/storage"
	"gorm.io/gorm"
)

// HealthHandler handles the health probe route
type HealthHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.ObjectStore
}

// Health handles GET /api/health
// @Summary Service health
// @Description Probes the database, the object store, and the authorizer
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Store)

	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(result)
}
