package utils

import (
	"gorm.io/gorm"

	"kanbanly/models"
)

// boardAccessSQL is the single owner-or-member predicate every entity lookup
// goes through. Column and task lookups reuse it transitively by joining up
// to the owning board.
const boardAccessSQL = "boards.owner_id = ? OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?)"

// CanAccessBoard reports whether userID owns the board or holds a membership
// row on it.
func CanAccessBoard(db *gorm.DB, userID, boardID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Board{}).
		Where("boards.id = ?", boardID).
		Where(boardAccessSQL, userID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsBoardOwner reports whether userID owns the board. Required for board
// rename/delete and member management.
func IsBoardOwner(db *gorm.DB, userID, boardID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Board{}).
		Where("id = ? AND owner_id = ?", boardID, userID).
		Count(&count).Error
	return count > 0, err
}

// FindAccessibleBoard returns the board iff userID can access it.
// Absent and denied deliberately collapse into gorm.ErrRecordNotFound so the
// API never leaks whether a resource exists.
func FindAccessibleBoard(db *gorm.DB, userID, boardID uint) (*models.Board, error) {
	var board models.Board
	err := db.Where("boards.id = ?", boardID).
		Where(boardAccessSQL, userID, userID).
		First(&board).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// FindOwnedBoard returns the board iff userID is its owner, with the same
// not-found conflation as FindAccessibleBoard.
func FindOwnedBoard(db *gorm.DB, userID, boardID uint) (*models.Board, error) {
	var board models.Board
	err := db.Where("id = ? AND owner_id = ?", boardID, userID).First(&board).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// FindAccessibleColumn walks column→board.
func FindAccessibleColumn(db *gorm.DB, userID, columnID uint) (*models.Column, error) {
	var column models.Column
	err := db.Joins("JOIN boards ON boards.id = columns.board_id").
		Where("columns.id = ?", columnID).
		Where(boardAccessSQL, userID, userID).
		First(&column).Error
	if err != nil {
		return nil, err
	}
	return &column, nil
}

// FindAccessibleTask walks task→column→board.
func FindAccessibleTask(db *gorm.DB, userID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := db.Joins("JOIN columns ON columns.id = tasks.column_id").
		Joins("JOIN boards ON boards.id = columns.board_id").
		Where("tasks.id = ?", taskID).
		Where(boardAccessSQL, userID, userID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindAccessibleTag walks tag→board.
func FindAccessibleTag(db *gorm.DB, userID, tagID uint) (*models.Tag, error) {
	var tag models.Tag
	err := db.Joins("JOIN boards ON boards.id = tags.board_id").
		Where("tags.id = ?", tagID).
		Where(boardAccessSQL, userID, userID).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// TaskBoardID resolves the board a task belongs to, without an access check.
func TaskBoardID(db *gorm.DB, taskID uint) (uint, error) {
	var column models.Column
	err := db.Select("columns.board_id").
		Joins("JOIN tasks ON tasks.column_id = columns.id").
		Where("tasks.id = ?", taskID).
		First(&column).Error
	if err != nil {
		return 0, err
	}
	return column.BoardID, nil
}
