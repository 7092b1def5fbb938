package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/leasedesk/leasedesk/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mariadbImage = "mariadb:11.4"
	minioImage   = "minio/minio:RELEASE.2024-12-18T13-15-44Z"

	dbRootPassword = "root-secret"
	dbName         = "leasedesk"
	dbUser         = "leasedesk"
	dbPassword     = "leasedesk"

	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
	minioBucket   = "leasedesk-documents"
)

// TestContainers holds the containerized backing services for e2e runs:
// a MariaDB initialized with the embedded DDL and a MinIO object store.
type TestContainers struct {
	MariaDB testcontainers.Container
	MinIO   testcontainers.Container

	DBHost     string
	DBPort     string
	S3Endpoint string
}

// CreateAllTestContainers starts the backing service containers. The
// testing.T is optional; the dev harness command passes nil.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()

	// Probe the docker daemon first for a clearer failure mode
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	if _, err := dockerClient.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker daemon unreachable: %w", err)
	}
	defer dockerClient.Close()

	tc := &TestContainers{}

	mariadb, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mariadbImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": dbRootPassword,
			},
			Files: []testcontainers.ContainerFile{
				{
					Reader:            strings.NewReader(data.InitdbMariaDBTables),
					ContainerFilePath: "/docker-entrypoint-initdb.d/001-ddl-tables.sql",
					FileMode:          0o644,
				},
				{
					Reader:            strings.NewReader(data.InitdbMariaDBPrivileges),
					ContainerFilePath: "/docker-entrypoint-initdb.d/002-ddl-privileges.sql",
					FileMode:          0o644,
				},
			},
			WaitingFor: wait.ForListeningPort(nat.Port("3306/tcp")).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("mariadb container: %w", err)
	}
	tc.MariaDB = mariadb

	minio, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        minioImage,
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			WaitingFor: wait.ForListeningPort(nat.Port("9000/tcp")).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("minio container: %w", err)
	}
	tc.MinIO = minio

	host, err := mariadb.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	dbPort, err := mariadb.MappedPort(ctx, nat.Port("3306/tcp"))
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	tc.DBHost = host
	tc.DBPort = dbPort.Port()

	minioHost, err := minio.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	minioPort, err := minio.MappedPort(ctx, nat.Port("9000/tcp"))
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	tc.S3Endpoint = fmt.Sprintf("%s:%s", minioHost, minioPort.Port())

	if err := tc.waitForDatabase(); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	log.Printf("Test containers ready: mariadb=%s:%s minio=%s", tc.DBHost, tc.DBPort, tc.S3Endpoint)

	return tc, nil
}

// SetEnv points the service configuration at the containers.
func (tc *TestContainers) SetEnv() {
	os.Setenv("DB_TYPE", "mariadb")
	os.Setenv("DB_HOST", tc.DBHost)
	os.Setenv("DB_PORT", tc.DBPort)
	os.Setenv("DB_DATABASE", dbName)
	os.Setenv("DB_USER", dbUser)
	os.Setenv("DB_PASSWORD", dbPassword)
	os.Setenv("S3_ENDPOINT", tc.S3Endpoint)
	os.Setenv("S3_ACCESS_KEY", minioUser)
	os.Setenv("S3_SECRET_ACCESS_KEY", minioPassword)
	os.Setenv("S3_BUCKET_NAME", minioBucket)
	os.Setenv("S3_USE_SSL", "false")
}

// Terminate stops all containers, ignoring errors on the way down.
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.MinIO != nil {
		if err := tc.MinIO.Terminate(ctx); err != nil && t != nil {
			t.Logf("minio terminate: %v", err)
		}
	}
	if tc.MariaDB != nil {
		if err := tc.MariaDB.Terminate(ctx); err != nil && t != nil {
			t.Logf("mariadb terminate: %v", err)
		}
	}
}

// waitForDatabase polls until the init scripts have run and the service
// account can connect.
func (tc *TestContainers) waitForDatabase() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPassword, tc.DBHost, tc.DBPort, dbName)

	var lastErr error
	for i := 0; i < 60; i++ {
		db, err := sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		time.Sleep(2 * time.Second)
	}
	return fmt.Errorf("database never became ready: %w", lastErr)
}
