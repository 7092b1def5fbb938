package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/database"
	"github.com/leasedesk/leasedesk/internal/handlers"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/storage"
	"github.com/leasedesk/leasedesk/tests/helpers"
	"gorm.io/gorm"
)

// TestE2EWithFullStack runs the service against containerized MariaDB and
// MinIO. The external authorizer is replaced with the test header resolver;
// everything else is the production wiring.
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	tc.SetEnv()
	t.Setenv("AUTHZ_URL", "http://localhost:65535")
	t.Setenv("AUTHZ_CLIENT_ID", "e2e-unused")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(db)

	store, err := storage.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create object store: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("Failed to ensure bucket: %v", err)
	}

	app := buildApp(db, cfg, store)

	t.Run("DatabaseAndStoreHealth", func(t *testing.T) {
		result := services.HealthCheck(cfg, db, store)
		if result.Database != "ok" {
			t.Errorf("Database unhealthy: %+v", result)
		}
		if result.ObjectStore != "ok" {
			t.Errorf("Object store unhealthy: %+v", result)
		}
	})

	t.Run("LeaseWorkflow", func(t *testing.T) {
		testLeaseWorkflow(t, app)
	})
}

// buildApp wires the production routes with test authentication.
func buildApp(db *gorm.DB, cfg *config.Config, store *storage.ObjectStore) *fiber.App {
	app := fiber.New()

	userHandler := &handlers.UserHandler{DB: db}
	appHandler := &handlers.ApplicationHandler{DB: db, Cfg: cfg}
	taskHandler := &handlers.TaskHandler{DB: db, Store: store}

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
	tasks.Post("/upload", taskHandler.UploadDocument)
	tasks.Post("/file", taskHandler.GetFile)
	tasks.Post("/submit", taskHandler.SubmitTask)
	tasks.Post("/approve", taskHandler.ApproveTask)
	tasks.Post("/sendback", taskHandler.SendBackTask)
	tasks.Get("/:taskId/events", taskHandler.ListTaskEvents)
	tasks.Get("/:taskId", taskHandler.GetTaskDetails)

	return app
}

// testLeaseWorkflow walks the whole agent/client flow: register, create an
// application, assign a task, upload the document, review it.
func testLeaseWorkflow(t *testing.T, app *fiber.App) {
	const (
		agentEmail  = "agent@example.com"
		clientEmail = "client@example.com"
	)

	// Register both parties
	registerUser(t, app, agentEmail, "Ada", "Lovelace", "Agent")
	registerUser(t, app, clientEmail, "Grace", "Hopper", "Client")

	// The agent finds the client in the directory
	clients := requestList(t, app, http.MethodGet, "/api/users/clients", agentEmail)
	if len(clients) != 1 {
		t.Fatalf("Expected 1 client in directory, got %d", len(clients))
	}
	clientID := clients[0]["_id"].(string)

	// Create the application
	body := requestJSON(t, app, http.MethodPost, "/api/applications/", agentEmail, map[string]interface{}{
		"location": "12 Harbour View",
		"userIds":  []string{clientID},
	}, http.StatusOK)
	application := body["application"].(map[string]interface{})
	appID := application["_id"].(string)

	// The client sees it
	clientApps := requestList(t, app, http.MethodGet, "/api/applications/client", clientEmail)
	if len(clientApps) != 1 {
		t.Fatalf("Client should see 1 application, got %d", len(clientApps))
	}

	// Assign a document task
	body = requestJSON(t, app, http.MethodPost, "/api/tasks/", agentEmail, map[string]interface{}{
		"title":         "Proof of income",
		"description":   "Last three payslips",
		"type":          "document",
		"assigned_to":   clientID,
		"applicationId": appID,
	}, http.StatusOK)
	task := body["task"].(map[string]interface{})
	taskID := task["_id"].(string)

	// The client uploads a document, moving the task to submitted
	fileURL := uploadDocument(t, app, clientEmail, taskID, "payslips.pdf", "fake pdf bytes")

	// The stored document streams back
	resp := doRequest(t, app, http.MethodPost, "/api/tasks/file", clientEmail,
		mustJSON(t, map[string]interface{}{"url": fileURL, "fileType": "application/pdf"}), "application/json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("File fetch: expected 200, got %d", resp.StatusCode)
	}
	content, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(content) != "fake pdf bytes" {
		t.Errorf("Fetched content mismatch: %q", content)
	}

	// The agent sends it back with comments
	requestJSON(t, app, http.MethodPost, "/api/tasks/sendback", agentEmail, map[string]interface{}{
		"taskId":   taskID,
		"comments": "Payslips are older than three months",
	}, http.StatusOK)

	// The client resubmits
	requestJSON(t, app, http.MethodPost, "/api/tasks/submit", clientEmail, map[string]interface{}{
		"taskId": taskID,
	}, http.StatusOK)

	// The agent approves
	body = requestJSON(t, app, http.MethodPost, "/api/tasks/approve", agentEmail, map[string]interface{}{
		"taskId": taskID,
	}, http.StatusOK)
	approved := body["task"].(map[string]interface{})
	if approved["status"] != "completed" {
		t.Errorf("Expected completed task, got %v", approved["status"])
	}

	// The audit trail recorded the whole exchange
	events := requestList(t, app, http.MethodGet, "/api/tasks/"+taskID+"/events", agentEmail)
	if len(events) < 4 {
		t.Errorf("Expected at least 4 audit events, got %d", len(events))
	}
}

func registerUser(t *testing.T, app *fiber.App, email, firstName, lastName, role string) {
	t.Helper()
	requestJSON(t, app, http.MethodPost, "/api/users", "", map[string]interface{}{
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
		"role":      role,
	}, http.StatusOK)
}

func uploadDocument(t *testing.T, app *fiber.App, asUser, taskID, filename, content string) string {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file-upload", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, strings.NewReader(content)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.WriteField("taskId", taskID)
	writer.WriteField("status", "submitted")
	writer.Close()

	resp := doRequest(t, app, http.MethodPost, "/api/tasks/upload", asUser, buf.Bytes(), writer.FormDataContentType())
	body := decodeMap(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Upload: expected 200, got %d: %v", resp.StatusCode, body)
	}

	task := body["task"].(map[string]interface{})
	fileURL, _ := task["fileUrl"].(string)
	if fileURL == "" {
		t.Fatalf("Upload did not record a file URL: %v", task)
	}
	if task["status"] != "submitted" {
		t.Errorf("Upload with status: expected submitted, got %v", task["status"])
	}
	return fileURL
}

func requestJSON(t *testing.T, app *fiber.App, method, target, asUser string, payload map[string]interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	resp := doRequest(t, app, method, target, asUser, mustJSON(t, payload), "application/json")
	body := decodeMap(t, resp)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d: %v", method, target, wantStatus, resp.StatusCode, body)
	}
	return body
}

func requestList(t *testing.T, app *fiber.App, method, target, asUser string) []map[string]interface{} {
	t.Helper()

	resp := doRequest(t, app, method, target, asUser, nil, "")
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: expected 200, got %d: %s", method, target, resp.StatusCode, raw)
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("Expected array response from %s, got %s", target, raw)
	}
	return list
}

func mustJSON(t *testing.T, payload map[string]interface{}) []byte {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return raw
}

func doRequest(t *testing.T, app *fiber.App, method, target, asUser string, body []byte, contentType string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if asUser != "" {
		req.Header.Set(helpers.TestAuthHeader, asUser)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, target, err)
	}
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	var body map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("Response is not a JSON object: %s", raw)
		}
	}
	return body
}
