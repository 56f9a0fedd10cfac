package utils

import (
	"errors"

	"gorm.io/gorm"

	"kanbanly/models"
)

// Position management for siblings (columns within a board, tasks within a
// column). Positions are positive integers; relative order is all that
// matters. Appends are read-then-write and intentionally not serialized —
// concurrent creates can race to the same position, and reads break ties by
// id. Multi-row mutations (reorder, move) run inside one transaction so a
// crash cannot leave them half-applied.

// NextColumnPosition returns max(position)+1 within the board, or 1 when the
// board has no columns.
func NextColumnPosition(db *gorm.DB, boardID uint) (int, error) {
	var last models.Column
	err := db.Where("board_id = ?", boardID).Order("position desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Position + 1, nil
}

// NextTaskPosition returns max(position)+1 within the column, or 1 when the
// column is empty.
func NextTaskPosition(db *gorm.DB, columnID uint) (int, error) {
	var last models.Task
	err := db.Where("column_id = ?", columnID).Order("position desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Position + 1, nil
}

// ReorderColumns assigns position = index+1 for each supplied column ID.
// The ID list is not validated against the existing sibling set, but updates
// are scoped to the board, so foreign IDs are ignored.
func ReorderColumns(db *gorm.DB, boardID uint, columnIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range columnIDs {
			err := tx.Model(&models.Column{}).
				Where("id = ? AND board_id = ?", id, boardID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderTasks assigns position = index+1 for each supplied task ID within
// the column, with the same scoping rule as ReorderColumns.
func ReorderTasks(db *gorm.DB, columnID uint, taskIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range taskIDs {
			err := tx.Model(&models.Task{}).
				Where("id = ? AND column_id = ?", id, columnID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveTaskToTop moves the task into destColumnID at position 1. When the
// destination differs from the current column, every task already there is
// shifted down by one first. Source column positions are left as-is; gaps
// are permitted and never compacted. A same-column move still forces the
// task to position 1.
func MoveTaskToTop(db *gorm.DB, task *models.Task, destColumnID uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if task.ColumnID != destColumnID {
			err := tx.Model(&models.Task{}).
				Where("column_id = ?", destColumnID).
				UpdateColumn("position", gorm.Expr("position + 1")).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{"column_id": destColumnID, "position": 1}).Error
	})
	if err != nil {
		return err
	}
	task.ColumnID = destColumnID
	task.Position = 1
	return nil
}
