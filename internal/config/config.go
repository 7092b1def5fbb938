package config

import (
	"fmt"
	"os"
	"strconv"
)

// DeleteTaskPolicy controls what happens to a lease application's tasks when
// the application itself is deleted.
type DeleteTaskPolicy string

const (
	// DeleteTaskRetain leaves the tasks in place as independent history.
	DeleteTaskRetain DeleteTaskPolicy = "retain"
	// DeleteTaskCascade removes the tasks along with the application.
	DeleteTaskCascade DeleteTaskPolicy = "cascade"
	// DeleteTaskRestrict refuses to delete an application that still has tasks.
	DeleteTaskRestrict DeleteTaskPolicy = "restrict"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Object store configuration (S3-compatible)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// Authorizer configuration
	AuthzURL      string
	AuthzClientID string

	// Domain policies
	AppDeleteTaskPolicy DeleteTaskPolicy
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		DBType:              getEnv("DB_TYPE", "mysql"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBDatabase:          getEnv("DB_DATABASE", ""),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            getEnv("S3_BUCKET_REGION", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:            getEnv("S3_BUCKET_NAME", ""),
		S3UseSSL:            getEnvAsBool("S3_USE_SSL", true),
		AuthzURL:            getEnv("AUTHZ_URL", ""),
		AuthzClientID:       getEnv("AUTHZ_CLIENT_ID", ""),
		AppDeleteTaskPolicy: DeleteTaskPolicy(getEnv("APP_DELETE_TASK_POLICY", string(DeleteTaskRetain))),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is required")
	}
	if cfg.AuthzURL == "" {
		return nil, fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}

	switch cfg.AppDeleteTaskPolicy {
	case DeleteTaskRetain, DeleteTaskCascade, DeleteTaskRestrict:
	default:
		return nil, fmt.Errorf("APP_DELETE_TASK_POLICY must be retain, cascade, or restrict")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
