package models

import (
	"time"
)

// Role is the account role assigned at signup. It never changes afterwards.
type Role string

const (
	RoleAgent  Role = "Agent"
	RoleClient Role = "Client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleClient
}

// User is a directory account. Credentials live in the external authorizer;
// this row carries the role and profile fields the API needs.
type User struct {
	ID        string `gorm:"primaryKey;type:char(36)" json:"_id"`
	Role      Role   `gorm:"size:16;not null" json:"role"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName string `gorm:"size:255" json:"firstName"`
	LastName  string `gorm:"size:255" json:"lastName"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
