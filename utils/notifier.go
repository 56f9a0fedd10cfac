package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kanbanly/models"
)

// Notifier writes user-addressed notification rows as side effects of
// mutating operations. Writes are synchronous: a failed notification fails
// the operation that triggered it.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

func (n *Notifier) create(notification *models.Notification) error {
	if err := n.DB.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("type", notification.Type).Error("failed to create notification")
		return err
	}
	return nil
}

// BoardInvitation notifies a user they were added to a board.
func (n *Notifier) BoardInvitation(userID uint, board *models.Board) error {
	return n.create(&models.Notification{
		Type:    models.NotificationBoardInvitation,
		Title:   "Board Invitation",
		Message: fmt.Sprintf("You have been invited to join the board \"%s\"", board.Name),
		UserID:  userID,
		Payload: models.NotificationPayload{
			BoardID:   board.ID,
			BoardName: board.Name,
		},
	})
}

// BoardRemoval notifies a user they were removed from a board.
func (n *Notifier) BoardRemoval(userID uint, board *models.Board) error {
	return n.create(&models.Notification{
		Type:    models.NotificationBoardRemoval,
		Title:   "Removed from Board",
		Message: fmt.Sprintf("You have been removed from the board \"%s\"", board.Name),
		UserID:  userID,
		Payload: models.NotificationPayload{
			BoardID:   board.ID,
			BoardName: board.Name,
		},
	})
}

// TaskAssigned notifies the assignee of a new pending assignment. The
// assignment ID lands in its own column so accept/reject can find and
// collapse this notice later.
func (n *Notifier) TaskAssigned(userID uint, task *models.Task, assigner *models.User, assignmentID uint) error {
	assignerName := "Unknown"
	if assigner != nil {
		assignerName = assigner.Username
	}
	var actorID uint
	if assigner != nil {
		actorID = assigner.ID
	}
	return n.create(&models.Notification{
		Type:         models.NotificationTaskAssignment,
		Title:        "New Task Assignment",
		Message:      fmt.Sprintf("You have been assigned to task \"%s\" by %s", task.Title, assignerName),
		UserID:       userID,
		TaskID:       &task.ID,
		AssignmentID: &assignmentID,
		Payload: models.NotificationPayload{
			TaskID:    task.ID,
			TaskTitle: task.Title,
			ActorID:   actorID,
		},
	})
}

// AssignmentAccepted notifies the assigner that the assignee accepted.
func (n *Notifier) AssignmentAccepted(userID uint, task *models.Task, actorID, assignmentID uint) error {
	return n.create(&models.Notification{
		Type:         models.NotificationAssignmentAccepted,
		Title:        "Task Assignment Accepted",
		Message:      fmt.Sprintf("User has accepted the task assignment for \"%s\"", task.Title),
		UserID:       userID,
		TaskID:       &task.ID,
		AssignmentID: &assignmentID,
		Payload: models.NotificationPayload{
			TaskID:    task.ID,
			TaskTitle: task.Title,
			ActorID:   actorID,
		},
	})
}

// AssignmentRejected notifies the assigner that the assignee rejected.
func (n *Notifier) AssignmentRejected(userID uint, task *models.Task, actorID, assignmentID uint) error {
	return n.create(&models.Notification{
		Type:         models.NotificationAssignmentRejected,
		Title:        "Task Assignment Rejected",
		Message:      fmt.Sprintf("User has rejected the task assignment for \"%s\"", task.Title),
		UserID:       userID,
		TaskID:       &task.ID,
		AssignmentID: &assignmentID,
		Payload: models.NotificationPayload{
			TaskID:    task.ID,
			TaskTitle: task.Title,
			ActorID:   actorID,
		},
	})
}

// ClearAssignmentNotice deletes the pending TASK_ASSIGNMENT notification for
// an assignment before its accept/reject successor is written, so the two
// states collapse into one notification instead of accumulating.
func (n *Notifier) ClearAssignmentNotice(userID, assignmentID uint) error {
	return n.DB.
		Where("user_id = ? AND type = ? AND assignment_id = ?", userID, models.NotificationTaskAssignment, assignmentID).
		Delete(&models.Notification{}).Error
}
