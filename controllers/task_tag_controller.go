package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type TaskTagController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskTagController(db *gorm.DB, logger *log.Logger) *TaskTagController {
	return &TaskTagController{DB: db, Logger: logger}
}

func (ttc *TaskTagController) AddTagToTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		TaskID uint `json:"taskId" validate:"required"`
		TagID  uint `json:"tagId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleTask(ttc.DB, user.ID, req.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	if _, err := utils.FindAccessibleTag(ttc.DB, user.ID, req.TagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag", err)
	}

	var existing models.TaskTag
	err := ttc.DB.Where("task_id = ? AND tag_id = ?", req.TaskID, req.TagID).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Tag is already assigned to this task", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check tag assignment", err)
	}

	taskTag := models.TaskTag{
		TaskID: req.TaskID,
		TagID:  req.TagID,
	}
	if err := ttc.DB.Create(&taskTag).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add tag to task", err)
	}

	if err := ttc.DB.Preload("Task").Preload("Tag").First(&taskTag, taskTag.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tag assignment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tag added to task successfully",
		"taskTag": taskTag,
	})
}

func (ttc *TaskTagController) RemoveTagFromTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	tagID := utils.ParseUint(c.Params("tagId"))
	if taskID == 0 || tagID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task or tag ID", nil)
	}

	if _, err := utils.FindAccessibleTask(ttc.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	var taskTag models.TaskTag
	err := ttc.DB.Where("task_id = ? AND tag_id = ?", taskID, tagID).First(&taskTag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag is not assigned to this task", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag assignment", err)
	}

	if err := ttc.DB.Delete(&models.TaskTag{}, taskTag.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove tag from task", err)
	}

	return c.JSON(fiber.Map{"message": "Tag removed from task successfully"})
}

func (ttc *TaskTagController) GetTaskTags(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	if _, err := utils.FindAccessibleTask(ttc.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	var taskTags []models.TaskTag
	err := ttc.DB.Preload("Tag").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&taskTags).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task tags", err)
	}

	return c.JSON(fiber.Map{"taskTags": taskTags})
}

// GetTasksByTag lists tasks carrying a tag. Tags are board-scoped, so tag
// access implies access to every linked task.
func (ttc *TaskTagController) GetTasksByTag(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	tagID := utils.ParseUint(c.Params("tagId"))
	if tagID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", nil)
	}

	if _, err := utils.FindAccessibleTag(ttc.DB, user.ID, tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag", err)
	}

	var taskTags []models.TaskTag
	err := ttc.DB.
		Preload("Task.Column").
		Preload("Task.Members.User").
		Preload("Task.TaskTags.Tag").
		Where("tag_id = ?", tagID).
		Order("id DESC").
		Find(&taskTags).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	tasks := make([]models.Task, 0, len(taskTags))
	for i := range taskTags {
		tasks = append(tasks, taskTags[i].Task)
	}

	return c.JSON(fiber.Map{"tasks": tasks})
}
