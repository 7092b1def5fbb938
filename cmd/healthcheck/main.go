package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/database"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/internal/storage"
)

func main() {
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

	// Connect to the attachment store
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(cfg, db, store)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
