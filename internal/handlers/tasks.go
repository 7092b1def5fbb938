package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/middleware"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/storage"
	"github.com/leasedesk/leasedesk/internal/utils"
	"gorm.io/gorm"
)

// uploadFieldName is the multipart field the web client uses for documents.
const uploadFieldName = "file-upload"

// TaskHandler handles task routes. Store is the process-wide attachment
// store instance, owned by main and passed in here.
type TaskHandler struct {
	DB    *gorm.DB
	Store *storage.ObjectStore
}

// AssignTask handles POST /api/tasks
// @Summary Assign a task to a client
// @Description Creates a pending task inside an application owned by the requesting agent
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body object true "title, description, type, assigned_to, applicationId"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks [post]
func (h *TaskHandler) AssignTask(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Type          string `json:"type"`
		AssignedTo    string `json:"assigned_to"`
		ApplicationID string `json:"applicationId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	task, err := services.AssignTask(h.DB, requester.ID, body.Title, body.Description, body.Type, body.AssignedTo, body.ApplicationID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": "Task Created.",
		"task":    task,
	})
}

// ListClientTasks handles GET /api/tasks/client/:clientId/:applicationId
// @Summary List a client's tasks within an application
// @Tags Tasks
// @Produce json
// @Param clientId path string true "Client ID"
// @Param applicationId path string true "Application ID"
// @Success 200 {array} models.Task
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/client/{clientId}/{applicationId} [get]
func (h *TaskHandler) ListClientTasks(c *fiber.Ctx) error {
	tasks, err := services.ListTasksForClient(h.DB, c.Params("clientId"), c.Params("applicationId"))
	if err != nil {
		return utils.ServerErrorResponse(c, "Server error")
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

// ListApplicationTasks handles GET /api/tasks/application/:applicationId
// @Summary List every task of an application
// @Tags Tasks
// @Produce json
// @Param applicationId path string true "Application ID"
// @Success 200 {array} models.Task
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/application/{applicationId} [get]
func (h *TaskHandler) ListApplicationTasks(c *fiber.Ctx) error {
	tasks, err := services.ListTasksForApplication(h.DB, c.Params("applicationId"))
	if err != nil {
		return utils.ServerErrorResponse(c, "Server error")
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

// GetTaskDetails handles GET /api/tasks/:taskId
// @Summary Get the full task record
// @Tags Tasks
// @Produce json
// @Param taskId path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/{taskId} [get]
func (h *TaskHandler) GetTaskDetails(c *fiber.Ctx) error {
	task, err := services.GetTaskDetails(h.DB, c.Params("taskId"))
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}

// ListTaskEvents handles GET /api/tasks/:taskId/events
// @Summary List the audit trail of a task
// @Tags Tasks
// @Produce json
// @Param taskId path string true "Task ID"
// @Success 200 {array} models.TaskEvent
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/{taskId}/events [get]
func (h *TaskHandler) ListTaskEvents(c *fiber.Ctx) error {
	events, err := services.ListTaskEvents(h.DB, c.Params("taskId"))
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(events)
}

// UploadDocument handles POST /api/tasks/upload (multipart)
// @Summary Upload a document for a task
// @Description Streams the file to the object store, then binds its URL and MIME type to the task. An optional status must be one of pending, submitted, completed.
// @Tags Tasks
// @Accept mpfd
// @Produce json
// @Param file-upload formData file true "Document"
// @Param taskId formData string true "Task ID"
// @Param status formData string false "New task status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/upload [post]
func (h *TaskHandler) UploadDocument(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	fileHeader, err := c.FormFile(uploadFieldName)
	if err != nil {
		return utils.ErrorResponse(c, "No file uploaded", fiber.StatusBadRequest)
	}

	taskID := c.FormValue("taskId")
	if taskID == "" {
		return utils.ErrorResponse(c, "Task ID is required", fiber.StatusBadRequest)
	}
	status := c.FormValue("status")

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}
	defer file.Close()

	// The object is written before the task record. If the record update
	// below fails the object is orphaned; there is no compensation.
	fileURL, err := h.Store.Put(c.Context(), uploadFieldName, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return utils.ServerErrorResponse(c, "Error uploading file")
	}

	task, err := services.AttachFile(h.DB, requester.ID, taskID, fileURL,
		fileHeader.Header.Get("Content-Type"), status)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "File uploaded and task updated successfully",
		"task":    task,
	})
}

// GetFile handles POST /api/tasks/file
// @Summary Fetch a stored document
// @Description Streams the object behind a stored attachment URL back to the caller
// @Tags Tasks
// @Accept json
// @Produce octet-stream
// @Param body body object true "url and fileType"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/file [post]
func (h *TaskHandler) GetFile(c *fiber.Ctx) error {
	var body struct {
		URL      string `json:"url"`
		FileType string `json:"fileType"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	if body.URL == "" {
		return utils.ErrorResponse(c, "File URL is required", fiber.StatusBadRequest)
	}

	key := storage.KeyFromURL(body.URL)

	stream, err := h.Store.Get(c.Context(), key)
	if err != nil {
		return utils.ServerErrorResponse(c, "Error fetching file")
	}

	c.Set(fiber.HeaderContentType, body.FileType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", key))

	return c.SendStream(stream)
}

// SubmitTask handles POST /api/tasks/submit
// @Summary Submit a task for review
// @Description Moves the task to submitted; only the assigned client may submit
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body object true "taskId"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/submit [post]
func (h *TaskHandler) SubmitTask(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		TaskID string `json:"taskId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	task, err := services.SubmitTask(h.DB, requester.ID, body.TaskID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task submitted successfully",
		"task":    task,
	})
}

// ApproveTask handles POST /api/tasks/approve
// @Summary Approve a submitted task
// @Description Moves the task to completed; only the owning agent may approve
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body object true "taskId"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/approve [post]
func (h *TaskHandler) ApproveTask(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		TaskID string `json:"taskId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	task, err := services.ApproveTask(h.DB, requester.ID, body.TaskID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task approved successfully",
		"task":    task,
	})
}

// SendBackTask handles POST /api/tasks/sendback
// @Summary Send a task back to the client
// @Description Returns the task to pending with reviewer comments; only the owning agent may send back
// @Tags Tasks
// @Accept json
// @Produce json
// @Param body body object true "taskId and comments"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security CookieAuth
// @Router /tasks/sendback [post]
func (h *TaskHandler) SendBackTask(c *fiber.Ctx) error {
	requester := middleware.Requester(c)

	var body struct {
		TaskID   string `json:"taskId"`
		Comments string `json:"comments"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest)
	}

	_, err := services.SendBackTask(h.DB, requester.ID, body.TaskID, body.Comments)
	if err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task sent back to pending with comments.",
	})
}
