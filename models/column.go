package models

import "time"

// Column is an ordered bucket of tasks within a board. Position is a
// positive integer ordering key assigned by append (max+1); absolute values
// carry no meaning beyond relative order and gaps are never compacted.
type Column struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `gorm:"not null" json:"name"`
	Position int    `gorm:"not null" json:"position"`
	BoardID  uint   `gorm:"not null;index" json:"boardId"`

	// Relations
	Board Board  `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}
