package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type BoardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBoardController(db *gorm.DB, logger *log.Logger) *BoardController {
	return &BoardController{DB: db, Logger: logger}
}

// withBoardTree preloads the full nested view of a board: columns in creation
// order, tasks by position, plus members and tag links on each task.
func withBoardTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Members.User").
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("columns.id ASC")
		}).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.position ASC")
		}).
		Preload("Columns.Tasks.Members.User").
		Preload("Columns.Tasks.TaskTags.Tag")
}

func (bc *BoardController) CreateBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		Name string `json:"name" validate:"required,min=1,max=100"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	board := models.Board{
		Name:    req.Name,
		OwnerID: user.ID,
	}
	if err := bc.DB.Create(&board).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create board", err)
	}

	if err := withBoardTree(bc.DB).First(&board, board.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load board", err)
	}

	bc.Logger.Printf("board %d created by user %d", board.ID, user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Board created successfully",
		"board":   board,
	})
}

func (bc *BoardController) GetBoards(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var boards []models.Board
	err := withBoardTree(bc.DB).
		Where("boards.owner_id = ? OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?)", user.ID, user.ID).
		Order("boards.created_at DESC").
		Find(&boards).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch boards", err)
	}

	return c.JSON(fiber.Map{"boards": boards})
}

func (bc *BoardController) GetBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("id"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	board, err := utils.FindAccessibleBoard(bc.DB, user.ID, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	if err := withBoardTree(bc.DB).First(board, board.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load board", err)
	}

	return c.JSON(fiber.Map{"board": board})
}

func (bc *BoardController) UpdateBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("id"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
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

	// Rename is owner-only; members get the same 404 as strangers.
	board, err := utils.FindOwnedBoard(bc.DB, user.ID, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or you are not the owner", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	if req.Name != nil {
		if err := bc.DB.Model(board).Update("name", *req.Name).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update board", err)
		}
	}

	if err := withBoardTree(bc.DB).First(board, board.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load board", err)
	}

	return c.JSON(fiber.Map{
		"message": "Board updated successfully",
		"board":   board,
	})
}

func (bc *BoardController) DeleteBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("id"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	board, err := utils.FindOwnedBoard(bc.DB, user.ID, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or you are not the owner", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	if err := deleteBoardCascade(bc.DB, board.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete board", err)
	}

	bc.Logger.Printf("board %d deleted by user %d", board.ID, user.ID)

	return c.JSON(fiber.Map{"message": "Board deleted successfully"})
}

// deleteBoardCascade removes a board and every row hanging off it, deepest
// children first, in one transaction.
func deleteBoardCascade(db *gorm.DB, boardID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("tasks.id").
			Joins("JOIN columns ON columns.id = tasks.column_id").
			Where("columns.board_id = ?", boardID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		columnIDs := tx.Model(&models.Column{}).Select("id").Where("board_id = ?", boardID)
		if err := tx.Where("column_id IN (?)", columnIDs).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.Column{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, boardID).Error
	})
}
