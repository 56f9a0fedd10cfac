package models

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#3B82F6"

// Tag is a board-scoped label. Names are unique within a board.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string `gorm:"not null;uniqueIndex:idx_tags_board_name" json:"name"`
	Color   string `gorm:"not null;default:#3B82F6" json:"color"`
	BoardID uint   `gorm:"not null;uniqueIndex:idx_tags_board_name" json:"boardId"`

	// Relations
	Board    Board     `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	TaskTags []TaskTag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"taskTags,omitempty"`
}

// TaskTag links a tag to a task, unique per pair.
type TaskTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	TaskID uint `gorm:"not null;uniqueIndex:idx_task_tags_pair" json:"taskId"`
	TagID  uint `gorm:"not null;uniqueIndex:idx_task_tags_pair" json:"tagId"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Tag  Tag  `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
