package models

import (
	"time"
)

// TaskStatus is the task lifecycle state. Every write boundary validates
// against this closed set; free-form status strings are rejected.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskSubmitted TaskStatus = "submitted"
	TaskCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the three lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskSubmitted, TaskCompleted:
		return true
	}
	return false
}

// Task is a unit of work inside a lease application, assigned to one client.
// File fields are set by the upload flow independent of status transitions.
type Task struct {
	ID                 string     `gorm:"primaryKey;type:char(36)" json:"_id"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Description        string     `gorm:"size:1024" json:"description"`
	Type               string     `gorm:"size:64;not null" json:"type"`
	AssignedTo         string     `gorm:"type:char(36);not null;index" json:"assigned_to"`
	LeaseApplicationID string     `gorm:"type:char(36);not null;index;column:lease_application_id" json:"leaseApplication"`
	Status             TaskStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	FileURL            string     `gorm:"size:1024" json:"fileUrl"`
	FileType           string     `gorm:"size:128" json:"fileType"`
	Comments           string     `gorm:"size:1024" json:"comments"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TaskEvent is an audit row appended on every task status transition and
// file attach. Events outlive the task record.
type TaskEvent struct {
	ID        string `gorm:"primaryKey;type:char(36)" json:"_id"`
	TaskID    string `gorm:"type:char(36);not null;index" json:"taskId"`
	Action    string `gorm:"size:32;not null" json:"action"`
	ActorID   string `gorm:"type:char(36)" json:"actorId"`
	Payload   JSON   `gorm:"type:json" json:"payload"`
	CreatedAt time.Time
}

// TableName overrides the table name for TaskEvent
func (TaskEvent) TableName() string {
	return "task_events"
}
