package services

import (
	"github.com/google/uuid"
	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// CreateUser registers a directory account for an identity that signed up
// through the authorizer. The role is fixed at creation.
func CreateUser(db *gorm.DB, email, firstName, lastName string, role models.Role) (*models.User, error) {
	if email == "" || firstName == "" || lastName == "" {
		return nil, validationError("All fields are required")
	}
	if !role.Valid() {
		return nil, validationError("Role must be Agent or Client")
	}

	var existing models.User
	err := db.First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, validationError("Email already in use")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user := models.User{
		ID:        uuid.NewString(),
		Role:      role,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUser looks up a user by identifier
func GetUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail looks up a user by email
func FindUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// ListClients returns all client-role users, for agents building the
// applicant list of a new application.
func ListClients(db *gorm.DB) ([]models.User, error) {
	var clients []models.User
	if err := db.Where("role = ?", models.RoleClient).Order("last_name, first_name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
