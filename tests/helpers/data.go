package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// CreateAgent inserts an agent-role user
func CreateAgent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	return createUser(t, db, email, models.RoleAgent)
}

// CreateClient inserts a client-role user
func CreateClient(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	return createUser(t, db, email, models.RoleClient)
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Role:      role,
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create %s user: %v", role, err)
	}
	return user
}

// CreateApplication inserts a lease application owned by the agent with
// the given applicants.
func CreateApplication(t *testing.T, db *gorm.DB, agent models.User, location string, applicants ...models.User) models.LeaseApplication {
	t.Helper()
	app := models.LeaseApplication{
		ID:       uuid.NewString(),
		AgentID:  agent.ID,
		Location: location,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}
	for _, applicant := range applicants {
		err := db.Table("lease_application_users").Create(map[string]interface{}{
			"lease_application_id": app.ID,
			"user_id":              applicant.ID,
		}).Error
		if err != nil {
			t.Fatalf("Failed to add applicant: %v", err)
		}
	}
	return app
}

// CreateTask inserts a pending task in the application for the client.
func CreateTask(t *testing.T, db *gorm.DB, app models.LeaseApplication, assignee models.User, title string) models.Task {
	t.Helper()
	task := models.Task{
		ID:                 uuid.NewString(),
		Title:              title,
		Type:               "document",
		AssignedTo:         assignee.ID,
		LeaseApplicationID: app.ID,
		Status:             models.TaskPending,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}
