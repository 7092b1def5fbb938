package services

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// Task event actions recorded in the audit trail.
const (
	EventAssigned   = "assigned"
	EventSubmitted  = "submitted"
	EventApproved   = "approved"
	EventSentBack   = "sent_back"
	EventFileUpload = "file_upload"
)

// AssignTask creates a task inside an application, assigned to a client.
// The requester must be the agent that owns the application.
func AssignTask(db *gorm.DB, requesterID, title, description, taskType, assignedTo, applicationID string) (*models.Task, error) {
	if title == "" || taskType == "" || assignedTo == "" || applicationID == "" {
		return nil, validationError("All fields are required")
	}

	if uuid.Validate(applicationID) != nil {
		return nil, invalidIDError("Invalid ID")
	}

	var app models.LeaseApplication
	if err := db.First(&app, "id = ?", applicationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Application Not Found")
		}
		return nil, err
	}

	if err := authorize(db, OpTaskAssign, requesterID, authzTarget{application: &app}); err != nil {
		return nil, err
	}

	var assignee models.User
	if err := db.First(&assignee, "id = ?", assignedTo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	if assignee.Role != models.RoleClient {
		return nil, validationError("User must be a client")
	}

	task := models.Task{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        description,
		Type:               taskType,
		AssignedTo:         assignee.ID,
		LeaseApplicationID: app.ID,
		Status:             models.TaskPending,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	recordTaskEvent(db, &task, EventAssigned, requesterID, map[string]interface{}{
		"assigned_to": assignee.ID,
	})

	return &task, nil
}

// ListTasksForClient returns the tasks assigned to a client within one
// application.
func ListTasksForClient(db *gorm.DB, clientID, applicationID string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("assigned_to = ? AND lease_application_id = ?", clientID, applicationID).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListTasksForApplication returns every task of an application, any assignee.
func ListTasksForApplication(db *gorm.DB, applicationID string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("lease_application_id = ?", applicationID).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTaskDetails returns the full task record.
func GetTaskDetails(db *gorm.DB, taskID string) (*models.Task, error) {
	if uuid.Validate(taskID) != nil {
		return nil, invalidIDError("Invalid Task ID")
	}

	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

// SubmitTask moves a task to submitted. Only the assigned client may submit.
func SubmitTask(db *gorm.DB, requesterID, taskID string) (*models.Task, error) {
	task, err := findTaskForUpdate(db, taskID)
	if err != nil {
		return nil, err
	}

	if err := authorize(db, OpTaskSubmit, requesterID, authzTarget{task: task}); err != nil {
		return nil, err
	}

	task.Status = models.TaskSubmitted
	if err := db.Model(task).Update("status", task.Status).Error; err != nil {
		return nil, err
	}

	recordTaskEvent(db, task, EventSubmitted, requesterID, nil)

	return task, nil
}

// ApproveTask moves a task to completed. Only the owning agent may approve.
// Approving an already-completed task is a no-op that succeeds.
func ApproveTask(db *gorm.DB, requesterID, taskID string) (*models.Task, error) {
	task, err := findTaskForUpdate(db, taskID)
	if err != nil {
		return nil, err
	}

	if err := authorize(db, OpTaskApprove, requesterID, authzTarget{task: task}); err != nil {
		return nil, err
	}

	task.Status = models.TaskCompleted
	if err := db.Model(task).Update("status", task.Status).Error; err != nil {
		return nil, err
	}

	recordTaskEvent(db, task, EventApproved, requesterID, nil)

	return task, nil
}

// SendBackTask returns a task to pending with reviewer comments. Only the
// owning agent may send a task back. Comments are overwritten, not appended;
// the previous text survives in the event trail.
func SendBackTask(db *gorm.DB, requesterID, taskID, comments string) (*models.Task, error) {
	task, err := findTaskForUpdate(db, taskID)
	if err != nil {
		return nil, err
	}

	if err := authorize(db, OpTaskSendBack, requesterID, authzTarget{task: task}); err != nil {
		return nil, err
	}

	previous := task.Comments
	task.Status = models.TaskPending
	task.Comments = comments
	err = db.Model(task).Updates(map[string]interface{}{
		"status":   task.Status,
		"comments": task.Comments,
	}).Error
	if err != nil {
		return nil, err
	}

	recordTaskEvent(db, task, EventSentBack, requesterID, map[string]interface{}{
		"comments":          comments,
		"previous_comments": previous,
	})

	return task, nil
}

// AttachFile binds an uploaded object's URL and MIME type to the task, and
// optionally sets the status. The status must be one of the legal lifecycle
// states; anything else is rejected before the record is touched.
func AttachFile(db *gorm.DB, requesterID, taskID, fileURL, fileType, status string) (*models.Task, error) {
	task, err := findTaskForUpdate(db, taskID)
	if err != nil {
		return nil, err
	}

	if err := authorize(db, OpTaskAttachFile, requesterID, authzTarget{task: task}); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"file_url":  fileURL,
		"file_type": fileType,
	}
	if status != "" {
		next := models.TaskStatus(status)
		if !next.Valid() {
			return nil, validationError("Invalid status")
		}
		task.Status = next
		updates["status"] = next
	}

	task.FileURL = fileURL
	task.FileType = fileType
	if err := db.Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}

	recordTaskEvent(db, task, EventFileUpload, requesterID, map[string]interface{}{
		"file_url":  fileURL,
		"file_type": fileType,
	})

	return task, nil
}

// ListTaskEvents returns the audit trail of a task, oldest first.
func ListTaskEvents(db *gorm.DB, taskID string) ([]models.TaskEvent, error) {
	if uuid.Validate(taskID) != nil {
		return nil, invalidIDError("Invalid Task ID")
	}

	var events []models.TaskEvent
	err := db.Where("task_id = ?", taskID).Order("created_at").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// findTaskForUpdate validates the id and loads the task for a mutation.
func findTaskForUpdate(db *gorm.DB, taskID string) (*models.Task, error) {
	if taskID == "" {
		return nil, validationError("Task ID is required")
	}
	if uuid.Validate(taskID) != nil {
		return nil, invalidIDError("Invalid Task ID")
	}

	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

// recordTaskEvent appends an audit row. Failures are logged, never surfaced:
// the mutation already happened and the trail is advisory.
func recordTaskEvent(db *gorm.DB, task *models.Task, action, actorID string, payload map[string]interface{}) {
	event := models.TaskEvent{
		ID:      uuid.NewString(),
		TaskID:  task.ID,
		Action:  action,
		ActorID: actorID,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("task event payload marshal failed for task %s: %v", task.ID, err)
		} else {
			event.Payload = models.NewJSON(raw)
		}
	}

	if err := db.Create(&event).Error; err != nil {
		log.Printf("task event write failed for task %s: %v", task.ID, err)
	}
}
