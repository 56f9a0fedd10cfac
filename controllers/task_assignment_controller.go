package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

var (
	errNotBoardMember  = errors.New("user is not a member of this board")
	errAlreadyAssigned = errors.New("user is already assigned to this task")
)

type TaskAssignmentController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewTaskAssignmentController(db *gorm.DB, logger *log.Logger) *TaskAssignmentController {
	return &TaskAssignmentController{DB: db, Logger: logger, Notifier: utils.NewNotifier(db)}
}

// createAssignment is the single path for assigning a user to a task. The
// assignee must hold a BoardMember row on the task's board (the owner is not
// a member and cannot be assigned), the pair must not already exist, and the
// assignee gets a pending-assignment notification.
func createAssignment(db *gorm.DB, notifier *utils.Notifier, task *models.Task, assigneeID uint, actor *models.User) (*models.TaskMember, error) {
	boardID, err := utils.TaskBoardID(db, task.ID)
	if err != nil {
		return nil, err
	}

	var membership models.BoardMember
	err = db.Where("board_id = ? AND user_id = ?", boardID, assigneeID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotBoardMember
	}
	if err != nil {
		return nil, err
	}

	var existing models.TaskMember
	err = db.Where("task_id = ? AND user_id = ?", task.ID, assigneeID).First(&existing).Error
	if err == nil {
		return nil, errAlreadyAssigned
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assignment := models.TaskMember{
		TaskID: task.ID,
		UserID: assigneeID,
		Status: models.AssignmentPending,
	}
	if err := db.Create(&assignment).Error; err != nil {
		return nil, err
	}

	// The notification names the task creator as assigner when one exists,
	// falling back to whoever performed the assignment.
	assigner := actor
	if task.CreatedBy != nil && *task.CreatedBy != actor.ID {
		var creator models.User
		if err := db.First(&creator, *task.CreatedBy).Error; err == nil {
			assigner = &creator
		}
	}
	if err := notifier.TaskAssigned(assigneeID, task, assigner, assignment.ID); err != nil {
		return nil, err
	}

	if err := db.Preload("User").First(&assignment, assignment.ID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func assignmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errNotBoardMember):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User is not a member of this board", nil)
	case errors.Is(err, errAlreadyAssigned):
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already assigned to this task", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign user", err)
	}
}

func (tac *TaskAssignmentController) AssignUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	assigneeID := utils.ParseUint(c.Params("userId"))
	if taskID == 0 || assigneeID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task or user ID", nil)
	}

	task, err := utils.FindAccessibleTask(tac.DB, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	assignment, err := createAssignment(tac.DB, tac.Notifier, task, assigneeID, user)
	if err != nil {
		return assignmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "User assigned to task successfully",
		"assignment": assignment,
	})
}

func (tac *TaskAssignmentController) UnassignUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	assigneeID := utils.ParseUint(c.Params("userId"))
	if taskID == 0 || assigneeID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task or user ID", nil)
	}

	if _, err := utils.FindAccessibleTask(tac.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	err := tac.DB.Where("task_id = ? AND user_id = ?", taskID, assigneeID).Delete(&models.TaskMember{}).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unassign user", err)
	}

	return c.JSON(fiber.Map{"message": "User unassigned from task successfully"})
}

func (tac *TaskAssignmentController) GetTaskAssignments(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	if _, err := utils.FindAccessibleTask(tac.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	var assignments []models.TaskMember
	err := tac.DB.Preload("User").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignments", err)
	}

	return c.JSON(fiber.Map{"assignments": assignments})
}

// GetAvailableUsers lists board members not yet holding an accepted
// assignment on the task. The owner is not a member and is never a candidate.
// Pending assignees stay listed so re-assignment attempts surface the
// conflict instead of silently hiding them.
func (tac *TaskAssignmentController) GetAvailableUsers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("taskId"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	if _, err := utils.FindAccessibleTask(tac.DB, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	boardID, err := utils.TaskBoardID(tac.DB, taskID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve board", err)
	}

	var board models.Board
	if err := tac.DB.Preload("Members.User").First(&board, boardID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var acceptedIDs []uint
	err = tac.DB.Model(&models.TaskMember{}).
		Where("task_id = ? AND status = ?", taskID, models.AssignmentAccepted).
		Pluck("user_id", &acceptedIDs).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignments", err)
	}
	accepted := make(map[uint]struct{}, len(acceptedIDs))
	for _, id := range acceptedIDs {
		accepted[id] = struct{}{}
	}

	available := make([]models.PublicUser, 0, len(board.Members))
	for i := range board.Members {
		if _, ok := accepted[board.Members[i].UserID]; ok {
			continue
		}
		available = append(available, board.Members[i].User.Public())
	}

	return c.JSON(fiber.Map{"users": available})
}

func (tac *TaskAssignmentController) AcceptAssignment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	assignmentID := utils.ParseUint(c.Params("assignmentId"))
	if assignmentID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid assignment ID", nil)
	}

	// Only the assignee can act on a pending assignment; anything else 404s.
	var assignment models.TaskMember
	err := tac.DB.Preload("Task").
		Where("id = ? AND user_id = ? AND status = ?", assignmentID, user.ID, models.AssignmentPending).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found or already processed", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignment", err)
	}

	if err := tac.DB.Model(&assignment).Update("status", models.AssignmentAccepted).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to accept assignment", err)
	}

	if err := tac.Notifier.ClearAssignmentNotice(user.ID, assignment.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear notification", err)
	}

	recipient, err := tac.assignmentCounterparty(&assignment.Task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve recipient", err)
	}
	if err := tac.Notifier.AssignmentAccepted(recipient, &assignment.Task, user.ID, assignment.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notification", err)
	}

	if err := tac.DB.Preload("User").First(&assignment, assignment.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load assignment", err)
	}

	return c.JSON(fiber.Map{
		"message":    "Assignment accepted successfully",
		"assignment": assignment,
	})
}

func (tac *TaskAssignmentController) RejectAssignment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	assignmentID := utils.ParseUint(c.Params("assignmentId"))
	if assignmentID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid assignment ID", nil)
	}

	var assignment models.TaskMember
	err := tac.DB.Preload("Task").
		Where("id = ? AND user_id = ? AND status = ?", assignmentID, user.ID, models.AssignmentPending).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found or already processed", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignment", err)
	}

	// Rejection removes the row entirely so the user can be re-assigned later.
	if err := tac.DB.Delete(&models.TaskMember{}, assignment.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reject assignment", err)
	}

	if err := tac.Notifier.ClearAssignmentNotice(user.ID, assignment.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear notification", err)
	}

	recipient, err := tac.assignmentCounterparty(&assignment.Task)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve recipient", err)
	}
	if err := tac.Notifier.AssignmentRejected(recipient, &assignment.Task, user.ID, assignment.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notification", err)
	}

	return c.JSON(fiber.Map{"message": "Assignment rejected successfully"})
}

// assignmentCounterparty picks who hears about an accept/reject: the task
// creator when known, the board owner otherwise.
func (tac *TaskAssignmentController) assignmentCounterparty(task *models.Task) (uint, error) {
	if task.CreatedBy != nil {
		return *task.CreatedBy, nil
	}
	boardID, err := utils.TaskBoardID(tac.DB, task.ID)
	if err != nil {
		return 0, err
	}
	var board models.Board
	if err := tac.DB.Select("owner_id").First(&board, boardID).Error; err != nil {
		return 0, err
	}
	return board.OwnerID, nil
}
