package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type ColumnController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewColumnController(db *gorm.DB, logger *log.Logger) *ColumnController {
	return &ColumnController{DB: db, Logger: logger}
}

func withColumnTasks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.position ASC")
		}).
		Preload("Tasks.Members.User").
		Preload("Tasks.TaskTags.Tag")
}

func (cc *ColumnController) CreateColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		Name    string `json:"name" validate:"required,min=1,max=100"`
		BoardID uint   `json:"boardId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleBoard(cc.DB, user.ID, req.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	position, err := utils.NextColumnPosition(cc.DB, req.BoardID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute position", err)
	}

	column := models.Column{
		Name:     req.Name,
		Position: position,
		BoardID:  req.BoardID,
	}
	if err := cc.DB.Create(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create column", err)
	}

	if err := withColumnTasks(cc.DB).First(&column, column.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load column", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Column created successfully",
		"column":  column,
	})
}

func (cc *ColumnController) GetColumnsByBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("boardId"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	if _, err := utils.FindAccessibleBoard(cc.DB, user.ID, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var columns []models.Column
	err := withColumnTasks(cc.DB).
		Where("board_id = ?", boardID).
		Order("position ASC").
		Find(&columns).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch columns", err)
	}

	return c.JSON(fiber.Map{"columns": columns})
}

func (cc *ColumnController) GetColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	columnID := utils.ParseUint(c.Params("id"))
	if columnID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column ID", nil)
	}

	column, err := utils.FindAccessibleColumn(cc.DB, user.ID, columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	if err := withColumnTasks(cc.DB).First(column, column.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load column", err)
	}

	return c.JSON(fiber.Map{"column": column})
}

func (cc *ColumnController) UpdateColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	columnID := utils.ParseUint(c.Params("id"))
	if columnID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column ID", nil)
	}

	var req struct {
		Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	column, err := utils.FindAccessibleColumn(cc.DB, user.ID, columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	if req.Name != nil {
		if err := cc.DB.Model(column).Update("name", *req.Name).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update column", err)
		}
	}

	if err := withColumnTasks(cc.DB).First(column, column.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load column", err)
	}

	return c.JSON(fiber.Map{
		"message": "Column updated successfully",
		"column":  column,
	})
}

func (cc *ColumnController) DeleteColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	columnID := utils.ParseUint(c.Params("id"))
	if columnID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column ID", nil)
	}

	column, err := utils.FindAccessibleColumn(cc.DB, user.ID, columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("column_id = ?", column.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("column_id = ?", column.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Column{}, column.ID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete column", err)
	}

	return c.JSON(fiber.Map{"message": "Column deleted successfully"})
}

func (cc *ColumnController) ReorderColumns(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("boardId"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	var req struct {
		ColumnIDs []uint `json:"columnIds" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleBoard(cc.DB, user.ID, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	if err := utils.ReorderColumns(cc.DB, boardID, req.ColumnIDs); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reorder columns", err)
	}

	return c.JSON(fiber.Map{"message": "Columns reordered successfully"})
}
