package models

import "time"

// Assignment statuses. A rejected assignment is deleted rather than kept in a
// terminal state so the same user can be re-assigned later.
const (
	AssignmentPending  = "PENDING"
	AssignmentAccepted = "ACCEPTED"
)

// Task belongs to exactly one column at a time.
type Task struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `gorm:"not null" json:"position"`
	ColumnID    uint   `gorm:"not null;index" json:"columnId"`
	CreatedBy   *uint  `json:"createdBy,omitempty"`

	// Relations
	Column   Column       `gorm:"foreignKey:ColumnID" json:"column,omitempty"`
	Creator  *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members  []TaskMember `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	TaskTags []TaskTag    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"taskTags,omitempty"`
}

// TaskMember tracks a user's assignment to a task. At most one row per
// (task, user) pair exists at a time.
type TaskMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	TaskID uint   `gorm:"not null;uniqueIndex:idx_task_members_pair" json:"taskId"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_task_members_pair" json:"userId"`
	Status string `gorm:"not null;default:PENDING" json:"status"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
