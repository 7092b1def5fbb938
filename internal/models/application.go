package models

import (
	"time"
)

// LeaseApplication is a property lease engagement linking one owning agent
// to a set of client applicants.
type LeaseApplication struct {
	ID        string `gorm:"primaryKey;type:char(36)" json:"_id"`
	AgentID   string `gorm:"type:char(36);not null;index" json:"-"`
	Agent     *User  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Location  string `gorm:"size:512;not null" json:"location"`
	Users     []User `gorm:"many2many:lease_application_users;" json:"users"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for LeaseApplication
func (LeaseApplication) TableName() string {
	return "lease_applications"
}
