package models

import "time"

// Notification types emitted by mutating operations.
const (
	NotificationBoardInvitation    = "BOARD_INVITATION"
	NotificationBoardRemoval       = "BOARD_REMOVAL"
	NotificationTaskAssignment     = "TASK_ASSIGNMENT"
	NotificationAssignmentAccepted = "TASK_ASSIGNMENT_ACCEPTED"
	NotificationAssignmentRejected = "TASK_ASSIGNMENT_REJECTED"
)

// NotificationPayload is the typed context attached to a notification.
// Fields are populated per type; zero values are omitted on the wire.
type NotificationPayload struct {
	TaskID    uint   `json:"taskId,omitempty"`
	TaskTitle string `json:"taskTitle,omitempty"`
	BoardID   uint   `json:"boardId,omitempty"`
	BoardName string `json:"boardName,omitempty"`
	ActorID   uint   `json:"actorId,omitempty"`
}

// Notification is a user-addressed message row. TaskID and AssignmentID are
// plain columns without foreign keys: notifications outlive the entities
// they describe. AssignmentID correlates accept/reject with the original
// assignment notice.
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Type         string              `gorm:"not null" json:"type"`
	Title        string              `gorm:"not null" json:"title"`
	Message      string              `gorm:"not null" json:"message"`
	Payload      NotificationPayload `gorm:"serializer:json" json:"payload"`
	IsRead       bool                `gorm:"not null;default:false" json:"isRead"`
	UserID       uint                `gorm:"not null;index" json:"userId"`
	TaskID       *uint               `json:"taskId,omitempty"`
	AssignmentID *uint               `gorm:"index" json:"assignmentId,omitempty"`
}
