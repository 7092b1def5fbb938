package services_test

import (
	"errors"
	"testing"

	"github.com/leasedesk/leasedesk/internal/models"
	"github.com/leasedesk/leasedesk/internal/services"
	"github.com/leasedesk/leasedesk/tests/helpers"
)

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	user, err := services.CreateUser(db, "agent@example.com", "Ada", "Lovelace", models.RoleAgent)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected a generated id")
	}
	if user.Role != models.RoleAgent {
		t.Errorf("Expected Agent role, got %s", user.Role)
	}

	got, err := services.FindUserByEmail(db, "agent@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Lookup returned a different user: %s vs %s", got.ID, user.ID)
	}
}

func TestCreateUserValidation(t *testing.T) {
	db := setupTestDB(t)

	if _, err := services.CreateUser(db, "", "Ada", "Lovelace", models.RoleAgent); !errors.Is(err, services.ErrValidation) {
		t.Errorf("Expected ErrValidation for missing email, got %v", err)
	}
	if _, err := services.CreateUser(db, "x@example.com", "Ada", "Lovelace", "Admin"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown role, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	helpers.CreateClient(t, db, "client@example.com")

	_, err := services.CreateUser(db, "client@example.com", "Ada", "Lovelace", models.RoleClient)
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("Expected ErrValidation for duplicate email, got %v", err)
	}
}

func TestFindUserByEmailNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.FindUserByEmail(db, "nobody@example.com")
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListClients(t *testing.T) {
	db := setupTestDB(t)
	helpers.CreateAgent(t, db, "agent@example.com")
	helpers.CreateClient(t, db, "zoe@example.com")
	helpers.CreateClient(t, db, "amy@example.com")

	clients, err := services.ListClients(db)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(clients))
	}
	for _, c := range clients {
		if c.Role != models.RoleClient {
			t.Errorf("Agent leaked into client list: %s", c.Email)
		}
	}
}
