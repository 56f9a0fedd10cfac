package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type TaskMemberController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewTaskMemberController(db *gorm.DB, logger *log.Logger) *TaskMemberController {
	return &TaskMemberController{DB: db, Logger: logger, Notifier: utils.NewNotifier(db)}
}

func (tmc *TaskMemberController) AssignTaskMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		TaskID uint `json:"taskId" validate:"required"`
		UserID uint `json:"userId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	task, err := utils.FindAccessibleTask(tmc.DB, user.ID, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	assignment, err := createAssignment(tmc.DB, tmc.Notifier, task, req.UserID, user)
	if err != nil {
		return assignmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "User assigned to task successfully",
		"assignment": assignment,
	})
}

func (tmc *TaskMemberController) GetTaskMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	if _, err := utils.FindAccessibleTask(tmc.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	var members []models.TaskMember
	err := tmc.DB.Preload("User").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task members", err)
	}

	return c.JSON(fiber.Map{"taskMembers": members})
}

func (tmc *TaskMemberController) RemoveTaskMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	targetID := utils.ParseUint(c.Params("memberId"))
	if taskID == 0 || targetID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task or member ID", nil)
	}

	if _, err := utils.FindAccessibleTask(tmc.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	var member models.TaskMember
	err := tmc.DB.Where("task_id = ? AND user_id = ?", taskID, targetID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignment", err)
	}

	if err := tmc.DB.Delete(&models.TaskMember{}, member.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove assignment", err)
	}

	return c.JSON(fiber.Map{"message": "User removed from task successfully"})
}
