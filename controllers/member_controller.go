package controller

import (
	"errors"
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type MemberController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewMemberController(db *gorm.DB, logger *log.Logger) *MemberController {
	return &MemberController{DB: db, Logger: logger, Notifier: utils.NewNotifier(db)}
}

func (mc *MemberController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req struct {
		BoardID uint   `json:"boardId" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", nil)
	}

	board, err := utils.FindOwnedBoard(mc.DB, user.ID, req.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or you are not the owner", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var invitee models.User
	if err := mc.DB.Where("email = ?", req.Email).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found with this email", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	if invitee.ID == user.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You cannot invite yourself to the board", nil)
	}

	var existing models.BoardMember
	err = mc.DB.Where("board_id = ? AND user_id = ?", board.ID, invitee.ID).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already a member of this board", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}

	member := models.BoardMember{
		BoardID: board.ID,
		UserID:  invitee.ID,
	}
	if err := mc.DB.Create(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add member", err)
	}

	if err := mc.Notifier.BoardInvitation(invitee.ID, board); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notification", err)
	}

	// Email delivery is best-effort and must not block or fail the invite.
	go func(email, inviter, boardName string) {
		if err := utils.SendBoardInviteEmail(email, inviter, boardName); err != nil {
			logrus.WithError(err).WithField("email", email).Warn("invite email failed")
		}
	}(invitee.Email, user.Username, board.Name)

	if err := mc.DB.Preload("User").Preload("Board").First(&member, member.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load member", err)
	}

	mc.Logger.Printf("user %d invited to board %d by owner %d", invitee.ID, board.ID, user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Member added successfully",
		"member":  member,
	})
}

// GetBoardMembers lists membership rows plus a synthetic row for the owner,
// who has no BoardMember record. The owner row uses id 0 and isOwner true.
func (mc *MemberController) GetBoardMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("boardId"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	board, err := utils.FindAccessibleBoard(mc.DB, user.ID, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Board not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch board", err)
	}

	var members []models.BoardMember
	err = mc.DB.Preload("User").
		Where("board_id = ?", board.ID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch members", err)
	}

	var owner models.User
	if err := mc.DB.First(&owner, board.OwnerID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch owner", err)
	}

	entries := make([]fiber.Map, 0, len(members)+1)
	for _, m := range members {
		entries = append(entries, fiber.Map{
			"id":      m.ID,
			"boardId": m.BoardID,
			"userId":  m.UserID,
			"user": fiber.Map{
				"id":       m.User.ID,
				"username": m.User.Username,
				"email":    m.User.Email,
				"isOwner":  false,
			},
		})
	}
	entries = append(entries, fiber.Map{
		"id":      0,
		"boardId": board.ID,
		"userId":  owner.ID,
		"user": fiber.Map{
			"id":       owner.ID,
			"username": owner.Username,
			"email":    owner.Email,
			"isOwner":  true,
		},
	})

	return c.JSON(fiber.Map{"members": entries})
}

func (mc *MemberController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	memberID := utils.ParseUint(c.Params("memberId"))
	if memberID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID", nil)
	}

	var member models.BoardMember
	err := mc.DB.Preload("Board").First(&member, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found or access denied", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch member", err)
	}

	ok, err := utils.CanAccessBoard(mc.DB, user.ID, member.BoardID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check access", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found or access denied", nil)
	}

	// Visible to members, but removal stays owner-only.
	if member.Board.OwnerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the board owner can remove members", nil)
	}

	if err := mc.DB.Delete(&models.BoardMember{}, member.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
	}

	if err := mc.Notifier.BoardRemoval(member.UserID, &member.Board); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notification", err)
	}

	return c.JSON(fiber.Map{"message": "Member removed successfully"})
}

func (mc *MemberController) LeaveBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	boardID := utils.ParseUint(c.Params("boardId"))
	if boardID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid board ID", nil)
	}

	owner, err := utils.IsBoardOwner(mc.DB, user.ID, boardID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check ownership", err)
	}
	if owner {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Board owner cannot leave the board. Transfer ownership first.", nil)
	}

	var member models.BoardMember
	err = mc.DB.Where("board_id = ? AND user_id = ?", boardID, user.ID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not a member of this board", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch membership", err)
	}

	if err := mc.DB.Delete(&models.BoardMember{}, member.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to leave board", err)
	}

	return c.JSON(fiber.Map{"message": "Left board successfully"})
}

// SearchUsers matches usernames and emails case-insensitively, excluding the
// caller, capped at 10 results.
func (mc *MemberController) SearchUsers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := c.Query("query")
	if query == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Search query is required", nil)
	}

	pattern := "%" + query + "%"
	var users []models.User
	err := mc.DB.
		Where("id <> ?", user.ID).
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Limit(10).
		Find(&users).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to search users", err)
	}

	results := make([]models.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].Public())
	}

	return c.JSON(fiber.Map{"users": results})
}
