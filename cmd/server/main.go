package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/database"
	"github.com/leasedesk/leasedesk/internal/handlers"
	"github.com/leasedesk/leasedesk/internal/middleware"
	"github.com/leasedesk/leasedesk/internal/storage"
	"github.com/leasedesk/leasedesk/internal/types"
	"github.com/leasedesk/leasedesk/internal/utils"

	_ "github.com/leasedesk/leasedesk/docs/api" // Swagger docs
)

// @title LeaseDesk API
// @version 1.0.0
// @description Property lease management service: applications, tasks, document review
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/leasedesk/leasedesk

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to the attachment store. The single instance is owned here
	// and passed to the handlers that need it.
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to prepare attachment bucket: %v", err)
	}
	cancel()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("leasedesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	appHandler := &handlers.ApplicationHandler{DB: db, Cfg: cfg}
	taskHandler := &handlers.TaskHandler{DB: db, Store: store}
	userHandler := &handlers.UserHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg, Store: store}

	// Health (unauthenticated, used by the container probe)
	api.Get("/health", healthHandler.Health)

	// User directory routes; signup sync stays open, the roster does not
	api.Post("/users", userHandler.CreateUser)
	api.Get("/users/clients", middleware.RequireAuth(cfg, db), userHandler.ListClients)

	// Lease application routes
	applications := api.Group("/applications", middleware.RequireAuth(cfg, db))
	applications.Get("/client", appHandler.ListClientApplications)
	applications.Get("/agent", appHandler.ListAgentApplications)
	applications.Post("/", appHandler.CreateApplication)
	applications.Delete("/:id", appHandler.DeleteApplication)
	applications.Put("/update/:id", appHandler.UpdateApplication)

	// Task routes; static segments are registered before the :taskId catch-all
	tasks := api.Group("/tasks", middleware.RequireAuth(cfg, db))
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

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	switch e := err.(type) {
	case *types.CustomError:
		code = e.Code
		message = e.Message
		errorType = e.Type
	case *fiber.Error:
		code = e.Code
		message = e.Message
	}

	return utils.UnhandledErrorResponse(c, code, message, errorType)
}
