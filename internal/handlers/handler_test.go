package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/database"
	"github.com/leasedesk/leasedesk/internal/handlers"
	"github.com/leasedesk/leasedesk/tests/helpers"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestApp builds a fiber app with the production routes mounted over an
// in-memory database. Authentication is replaced with the test header
// resolver; the object store routes are mounted but exercised in e2e only.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{AppDeleteTaskPolicy: config.DeleteTaskRetain}

	app := fiber.New()

	userHandler := &handlers.UserHandler{DB: db}
	appHandler := &handlers.ApplicationHandler{DB: db, Cfg: cfg}
	taskHandler := &handlers.TaskHandler{DB: db}

	api := app.Group("/api")
	api.Post("/users", userHandler.CreateUser)

	auth := helpers.TestAuth(db)
	api.Get("/users/clients", auth, userHandler.ListClients)

	applications := api.Group("/applications", auth)
	applications.Get("/client", appHandler.ListClientApplications)
	applications.Get("/agent", appHandler.ListAgentApplications)
	applications.Post("/", appHandler.CreateApplication)
	applications.Delete("/:id", appHandler.DeleteApplication)
	applications.Put("/update/:id", appHandler.UpdateApplication)

	tasks := api.Group("/tasks", auth)
	tasks.Post("/", taskHandler.AssignTask)
	tasks.Get("/client/:clientId/:applicationId", taskHandler.ListClientTasks)
	tasks.Get("/application/:applicationId", taskHandler.ListApplicationTasks)
	tasks.Post("/submit", taskHandler.SubmitTask)
	tasks.Post("/approve", taskHandler.ApproveTask)
	tasks.Post("/sendback", taskHandler.SendBackTask)
	tasks.Get("/:taskId/events", taskHandler.ListTaskEvents)
	tasks.Get("/:taskId", taskHandler.GetTaskDetails)

	return app, db
}

// doJSON issues a JSON request as the given user and decodes the response
// body into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, target, asUser string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reqBody)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser != "" {
		req.Header.Set(helpers.TestAuthHeader, asUser)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, target, err)
	}

	body := decodeBody(t, resp)
	return resp, body
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if len(raw) == 0 {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		// Array responses are decoded by the caller
		return map[string]interface{}{"_raw": string(raw)}
	}
	return body
}

// doJSONList is doJSON for endpoints that respond with a bare array.
func doJSONList(t *testing.T, app *fiber.App, method, target, asUser string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if asUser != "" {
		req.Header.Set(helpers.TestAuthHeader, asUser)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, target, err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("Expected array response, got %s", raw)
	}
	return resp, list
}
