package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/middleware"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/types"
	"github.com/leasedesk/leasedesk/internal/utils"
	"gorm.io/gorm"
)

// ApplicationHandler handles lease application routes
type ApplicationHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// ListClientApplications handles GET /api/applications/client
// @Summary List applications for the requesting client
// @Description Returns every application the authenticated client appears in as an applicant
// @Tags Applications
// @Produce json
// @Success 200 {array} models.LeaseApplication
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /applications/client [get]
func (h *ApplicationHandler) ListClientApplications(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	apps, err := services.ListApplicationsForClient(h.DB, requester.ID)
	if err != nil {
		return utils.ServerErrorResponse(c, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(apps)
}

// ListAgentApplications handles GET /api/applications/agent
// @Summary List applications owned by the requesting agent
// @Tags Applications
// @Produce json
// @Success 200 {array} models.LeaseApplication
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /applications/agent [get]
func (h *ApplicationHandler) ListAgentApplications(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	apps, err := services.ListApplicationsForAgent(h.DB, requester.ID)
	if err != nil {
		return utils.ServerErrorResponse(c, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(apps)
}

// CreateApplication handles POST /api/applications
// @Summary Create a lease application
// @Description Creates an application owned by the requesting agent with the given applicant ids
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body object true "location and userIds"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		Location string                 `json:"location"`
		UserIDs  types.FlexList[string] `json:"userIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	app, err := services.CreateApplication(h.DB, requester.ID, body.Location, body.UserIDs.Slice())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     "Application Created.",
		"application": app,
	})
}

// DeleteApplication handles DELETE /api/applications/:id
// @Summary Delete a lease application
// @Description Deletes an application owned by the requesting agent; task handling follows the configured delete policy
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	err := services.DeleteApplication(h.DB, requester.ID, c.Params("id"), h.Cfg.AppDeleteTaskPolicy)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": "Application Deleted",
	})
}

// UpdateApplication handles PUT /api/applications/update/:id
// @Summary Update a lease application
// @Description Replaces the location and applicant set; applicants are resolved from emails and must all be clients
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param body body object true "location and userEmails"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /applications/update/{id} [put]
func (h *ApplicationHandler) UpdateApplication(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		Location   string                 `json:"location"`
		UserEmails types.FlexList[string] `json:"userEmails"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	err := services.UpdateApplication(h.DB, requester.ID, c.Params("id"), body.Location, body.UserEmails.Slice())
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": "Application Updated",
	})
}
