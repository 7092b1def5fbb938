package services

import (
	"github.com/google/uuid"
	"github.com/leasedesk/leasedesk/internal/config"
	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// applicationUserJoin mirrors the many2many join table between applications
// and applicant users. Rows are written directly so applicant ids supplied
// at creation are stored verbatim, without an existence check.
const applicationUserJoinTable = "lease_application_users"

// ListApplicationsForAgent returns every application owned by the agent,
// with the agent and applicant references resolved.
func ListApplicationsForAgent(db *gorm.DB, agentID string) ([]models.LeaseApplication, error) {
	var apps []models.LeaseApplication
	err := db.Preload("Agent").Preload("Users").
		Where("agent_id = ?", agentID).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListApplicationsForClient returns every application the client appears in
// as an applicant.
func ListApplicationsForClient(db *gorm.DB, clientID string) ([]models.LeaseApplication, error) {
	var apps []models.LeaseApplication
	err := db.Preload("Agent").Preload("Users").
		Joins("JOIN "+applicationUserJoinTable+" lau ON lau.lease_application_id = lease_applications.id").
		Where("lau.user_id = ?", clientID).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication creates a lease application owned by the requester.
// Only agents may create applications. The supplied applicant ids are
// stored as given.
func CreateApplication(db *gorm.DB, requesterID, location string, userIDs []string) (*models.LeaseApplication, error) {
	if err := authorize(db, OpApplicationCreate, requesterID, authzTarget{}); err != nil {
		return nil, err
	}

	app := models.LeaseApplication{
		ID:       uuid.NewString(),
		AgentID:  requesterID,
		Location: location,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			err := tx.Table(applicationUserJoinTable).Create(map[string]interface{}{
				"lease_application_id": app.ID,
				"user_id":              userID,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// DeleteApplication removes an application owned by the requester. What
// happens to the application's tasks is governed by the configured policy:
// retain leaves them as history, cascade removes them, restrict refuses
// the delete while tasks remain.
func DeleteApplication(db *gorm.DB, requesterID, appID string, taskPolicy config.DeleteTaskPolicy) error {
	if uuid.Validate(appID) != nil {
		return invalidIDError("Invalid ID")
	}

	var app models.LeaseApplication
	if err := db.First(&app, "id = ?", appID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFoundError("Application Not Found")
		}
		return err
	}

	if err := authorize(db, OpApplicationDelete, requesterID, authzTarget{application: &app}); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		switch taskPolicy {
		case config.DeleteTaskRestrict:
			var count int64
			if err := tx.Model(&models.Task{}).Where("lease_application_id = ?", app.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationError("Application still has tasks")
			}
		case config.DeleteTaskCascade:
			if err := tx.Where("lease_application_id = ?", app.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec("DELETE FROM "+applicationUserJoinTable+" WHERE lease_application_id = ?", app.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&app).Error
	})
}

// UpdateApplication replaces the location and applicant set of an
// application owned by the requester. Applicants are supplied by email;
// every email must resolve to an existing client user or nothing changes.
func UpdateApplication(db *gorm.DB, requesterID, appID, location string, userEmails []string) error {
	if uuid.Validate(appID) != nil {
		return invalidIDError("Invalid ID")
	}

	if location == "" || len(userEmails) == 0 {
		return validationError("All fields are required")
	}

	var app models.LeaseApplication
	if err := db.First(&app, "id = ?", appID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFoundError("Application Not Found")
		}
		return err
	}

	if err := authorize(db, OpApplicationUpdate, requesterID, authzTarget{application: &app}); err != nil {
		return err
	}

	var users []models.User
	if err := db.Where("email IN ?", userEmails).Find(&users).Error; err != nil {
		return err
	}
	if len(users) != len(userEmails) {
		return notFoundError("One or more users not found")
	}
	for _, user := range users {
		if user.Role != models.RoleClient {
			return validationError("All users must be clients")
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&app).Update("location", location).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+applicationUserJoinTable+" WHERE lease_application_id = ?", app.ID).Error; err != nil {
			return err
		}
		for _, user := range users {
			err := tx.Table(applicationUserJoinTable).Create(map[string]interface{}{
				"lease_application_id": app.ID,
				"user_id":              user.ID,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetApplication looks up a single application with references resolved.
func GetApplication(db *gorm.DB, appID string) (*models.LeaseApplication, error) {
	if uuid.Validate(appID) != nil {
		return nil, invalidIDError("Invalid ID")
	}

	var app models.LeaseApplication
	err := db.Preload("Agent").Preload("Users").First(&app, "id = ?", appID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Application Not Found")
		}
		return nil, err
	}
	return &app, nil
}
