package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type TagController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTagController(db *gorm.DB, logger *log.Logger) *TagController {
	return &TagController{DB: db, Logger: logger}
}

func (tgc *TagController) CreateTag(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		Name    string `json:"name" validate:"required,min=1,max=50"`
		Color   string `json:"color" validate:"omitempty,hexcolor"`
		BoardID uint   `json:"boardId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := utils.FindAccessibleBoard(tgc.DB, user.ID, req.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var existing models.Tag
	err := tgc.DB.Where("board_id = ? AND name = ?", req.BoardID, req.Name).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A tag with this name already exists on this board", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check tag", err)
	}

	color := req.Color
	if color == "" {
		color = models.DefaultTagColor
	}

	tag := models.Tag{
		Name:    req.Name,
		Color:   color,
		BoardID: req.BoardID,
	}
	if err := tgc.DB.Create(&tag).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create tag", err)
	}

	if err := tgc.DB.Preload("Board").First(&tag, tag.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tag", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tag created successfully",
		"tag":     tag,
	})
}

// GetTags lists tags across every board the caller can see, optionally
// filtered by a case-insensitive name search.
func (tgc *TagController) GetTags(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	q := tgc.DB.
		Joins("JOIN boards ON boards.id = tags.board_id").
		Where("boards.owner_id = ? OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?)", user.ID, user.ID)

	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(tags.name) LIKE LOWER(?)", "%"+search+"%")
	}

	var tags []models.Tag
	err := q.Preload("Board").Preload("TaskTags.Task").
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tags", err)
	}

	return c.JSON(fiber.Map{"tags": tags})
}

func (tgc *TagController) GetTagsByBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("boardId"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	if _, err := utils.FindAccessibleBoard(tgc.DB, user.ID, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var tags []models.Tag
	err := tgc.DB.Preload("TaskTags.Task").
		Where("board_id = ?", boardID).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tags", err)
	}

	return c.JSON(fiber.Map{"tags": tags})
}

func (tgc *TagController) GetTag(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	tagID := utils.ParseUint(c.Params("id"))
	if tagID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", nil)
	}

	tag, err := utils.FindAccessibleTag(tgc.DB, user.ID, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag", err)
	}

	if err := tgc.DB.Preload("Board").Preload("TaskTags.Task").First(tag, tag.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tag", err)
	}

	return c.JSON(fiber.Map{"tag": tag})
}

func (tgc *TagController) UpdateTag(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	tagID := utils.ParseUint(c.Params("id"))
	if tagID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", nil)
	}

	var req struct {
		Name  *string `json:"name" validate:"omitempty,min=1,max=50"`
		Color *string `json:"color" validate:"omitempty,hexcolor"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	tag, err := utils.FindAccessibleTag(tgc.DB, user.ID, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag", err)
	}

	if req.Name != nil && *req.Name != tag.Name {
		var conflict models.Tag
		err := tgc.DB.Where("board_id = ? AND name = ? AND id <> ?", tag.BoardID, *req.Name, tag.ID).First(&conflict).Error
		if err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "A tag with this name already exists on this board", nil)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check tag", err)
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) > 0 {
		if err := tgc.DB.Model(tag).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update tag", err)
		}
	}

	if err := tgc.DB.Preload("Board").Preload("TaskTags.Task").First(tag, tag.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tag", err)
	}

	return c.JSON(fiber.Map{
		"message": "Tag updated successfully",
		"tag":     tag,
	})
}

// DeleteTag removes the tag and its task links, returning the deleted tag so
// clients can reconcile their local state.
func (tgc *TagController) DeleteTag(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	tagID := utils.ParseUint(c.Params("id"))
	if tagID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", nil)
	}

	tag, err := utils.FindAccessibleTag(tgc.DB, user.ID, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Tag not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tag", err)
	}

	err = tgc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, tag.ID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete tag", err)
	}

	return c.JSON(fiber.Map{
		"message": "Tag deleted successfully",
		"tag":     tag,
	})
}
