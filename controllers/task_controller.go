package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, logger *log.Logger) *TaskController {
	return &TaskController{DB: db, Logger: logger}
}

func withTaskRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Column").
		Preload("Creator").
		Preload("Members.User").
		Preload("TaskTags.Tag")
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		Title       string `json:"title" validate:"required,min=1,max=200"`
		Description string `json:"description"`
		Position    int    `json:"position"`
		ColumnID    uint   `json:"columnId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleColumn(tc.DB, user.ID, req.ColumnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	// Callers may pin a position; otherwise append to the end of the column.
	position := req.Position
	if position <= 0 {
		var err error
		position, err = utils.NextTaskPosition(tc.DB, req.ColumnID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute position", err)
		}
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Position:    position,
		ColumnID:    req.ColumnID,
		CreatedBy:   &user.ID,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	if err := withTaskRelations(tc.DB).First(&task, task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (tc *TaskController) GetTasksByColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	columnID := utils.ParseUint(c.Params("columnId"))
	if columnID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column ID", nil)
	}

	if _, err := utils.FindAccessibleColumn(tc.DB, user.ID, columnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	var tasks []models.Task
	err := withTaskRelations(tc.DB).
		Where("column_id = ?", columnID).
		Order("position ASC").
		Find(&tasks).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(fiber.Map{"tasks": tasks})
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	task, err := utils.FindAccessibleTask(tc.DB, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	if err := withTaskRelations(tc.DB).First(task, task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}

	return c.JSON(fiber.Map{"task": task})
}

func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	// Partial update: absent fields keep their current value.
	var req struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
		Description *string `json:"description"`
		Position    *int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	task, err := utils.FindAccessibleTask(tc.DB, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) > 0 {
		if err := tc.DB.Model(task).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
		}
	}

	if err := withTaskRelations(tc.DB).First(task, task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}

	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	task, err := utils.FindAccessibleTask(tc.DB, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, task.ID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// MoveTask moves a task into a column at the top position. Existing tasks in
// the destination shift down only when the task changes columns.
func (tc *TaskController) MoveTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	var req struct {
		ColumnID uint `json:"columnId" validate:"required"`
		Position *int `json:"position" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Column ID and position are required", nil)
	}

	task, err := utils.FindAccessibleTask(tc.DB, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	if _, err := utils.FindAccessibleColumn(tc.DB, user.ID, req.ColumnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	if err := utils.MoveTaskToTop(tc.DB, task, req.ColumnID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move task", err)
	}

	if err := withTaskRelations(tc.DB).First(task, task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}

	return c.JSON(fiber.Map{
		"message": "Task moved successfully",
		"task":    task,
	})
}

func (tc *TaskController) ReorderTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	columnID := utils.ParseUint(c.Params("columnId"))
	if columnID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column ID", nil)
	}

	var req struct {
		TaskIDs []uint `json:"taskIds" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleColumn(tc.DB, user.ID, columnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch column", err)
	}

	if err := utils.ReorderTasks(tc.DB, columnID, req.TaskIDs); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reorder tasks", err)
	}

	return c.JSON(fiber.Map{"message": "Tasks reordered successfully"})
}
