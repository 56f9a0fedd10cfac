package models

import "time"

// Board is the top-level container. The owner is not a BoardMember row;
// ownership is a separate predicate branch everywhere access is checked.
type Board struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string `gorm:"not null" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"ownerId"`

	// Relations
	Owner   User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Columns []Column      `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Members []BoardMember `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Tags    []Tag         `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

// BoardMember grants a non-owner user access to a board. The unique pair
// index is what turns a duplicate invite into a conflict.
type BoardMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BoardID uint `gorm:"not null;uniqueIndex:idx_board_members_pair" json:"boardId"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_board_members_pair" json:"userId"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
