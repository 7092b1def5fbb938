package services

import (
	"fmt"

	"github.com/leasedesk/leasedesk/internal/models"
	"gorm.io/gorm"
)

// Operation names a state-changing service operation for policy lookup.
type Operation string

const (
	OpApplicationCreate Operation = "application.create"
	OpApplicationUpdate Operation = "application.update"
	OpApplicationDelete Operation = "application.delete"
	OpTaskAssign        Operation = "task.assign"
	OpTaskSubmit        Operation = "task.submit"
	OpTaskApprove       Operation = "task.approve"
	OpTaskSendBack      Operation = "task.sendback"
	OpTaskAttachFile    Operation = "task.attachfile"
)

// Relationship is a capability the requester must hold on the resource.
type Relationship int

const (
	// RelRoleAgent requires the requester's directory role to be Agent.
	RelRoleAgent Relationship = iota
	// RelOwnerAgent requires the requester to be the agent that owns the
	// lease application the resource belongs to.
	RelOwnerAgent
	// RelAssigneeClient requires the requester to be the client the task
	// is assigned to.
	RelAssigneeClient
)

// operationPolicy declares, per operation, the relationships the requester
// must hold. All listed relationships must hold (task.assign keeps the
// historical owner-plus-role double check).
var operationPolicy = map[Operation][]Relationship{
	OpApplicationCreate: {RelRoleAgent},
	OpApplicationUpdate: {RelOwnerAgent},
	OpApplicationDelete: {RelOwnerAgent},
	OpTaskAssign:        {RelOwnerAgent, RelRoleAgent},
	OpTaskSubmit:        {RelAssigneeClient},
	OpTaskApprove:       {RelOwnerAgent},
	OpTaskSendBack:      {RelOwnerAgent},
	OpTaskAttachFile:    {RelAssigneeClient},
}

// authzTarget carries the resources a relationship check may need. Either
// field may be nil when the operation has no such resource in scope.
type authzTarget struct {
	application *models.LeaseApplication
	task        *models.Task
}

// authorize evaluates the declared policy for op against the requester.
// Returns ErrUnauthorized when any required relationship does not hold.
func authorize(db *gorm.DB, op Operation, requesterID string, target authzTarget) error {
	rels, ok := operationPolicy[op]
	if !ok {
		return fmt.Errorf("no policy declared for operation %s", op)
	}

	for _, rel := range rels {
		if err := checkRelationship(db, rel, requesterID, target); err != nil {
			return err
		}
	}

	return nil
}

func checkRelationship(db *gorm.DB, rel Relationship, requesterID string, target authzTarget) error {
	switch rel {
	case RelRoleAgent:
		var requester models.User
		if err := db.First(&requester, "id = ?", requesterID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return unauthorizedError()
			}
			return err
		}
		if requester.Role != models.RoleAgent {
			return unauthorizedError()
		}

	case RelOwnerAgent:
		app := target.application
		if app == nil && target.task != nil {
			// Resolve the task's parent application. A task orphaned by an
			// application delete under the retain policy has no owner left,
			// so nobody holds this relationship on it.
			var parent models.LeaseApplication
			err := db.First(&parent, "id = ?", target.task.LeaseApplicationID).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return unauthorizedError()
				}
				return err
			}
			app = &parent
		}
		if app == nil || app.AgentID != requesterID {
			return unauthorizedError()
		}

	case RelAssigneeClient:
		if target.task == nil || target.task.AssignedTo != requesterID {
			return unauthorizedError()
		}

	default:
		return fmt.Errorf("unknown relationship %d", rel)
	}

	return nil
}
