package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, logger *log.Logger) *NotificationController {
	return &NotificationController{DB: db, Logger: logger}
}

func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly := c.QueryBool("unreadOnly", false)

	q := nc.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count notifications", err)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}

	var unreadCount int64
	err = nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unreadCount).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count unread notifications", err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
		"unreadCount": unreadCount,
	})
}

func (nc *NotificationController) GetNotificationStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var total, unread int64
	if err := nc.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count notifications", err)
	}
	err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count unread notifications", err)
	}

	return c.JSON(fiber.Map{
		"total":  total,
		"unread": unread,
		"read":   total - unread,
	})
}

func (nc *NotificationController) GetNotification(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID := utils.ParseUint(c.Params("id"))
	if notificationID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", nil)
	}

	var notification models.Notification
	err := nc.DB.Where("id = ? AND user_id = ?", notificationID, user.ID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	return c.JSON(fiber.Map{"notification": notification})
}

func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID := utils.ParseUint(c.Params("id"))
	if notificationID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", nil)
	}

	var notification models.Notification
	err := nc.DB.Where("id = ? AND user_id = ?", notificationID, user.ID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	if err := nc.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notification as read", err)
	}

	return c.JSON(fiber.Map{
		"message":      "Notification marked as read",
		"notification": notification,
	})
}

func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notifications as read", err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID := utils.ParseUint(c.Params("id"))
	if notificationID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", nil)
	}

	var notification models.Notification
	err := nc.DB.Where("id = ? AND user_id = ?", notificationID, user.ID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	if err := nc.DB.Delete(&models.Notification{}, notification.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete notification", err)
	}

	return c.JSON(fiber.Map{"message": "Notification deleted successfully"})
}

func (nc *NotificationController) DeleteAllNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := nc.DB.Where("user_id = ?", user.ID).Delete(&models.Notification{}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete notifications", err)
	}

	return c.JSON(fiber.Map{"message": "All notifications deleted successfully"})
}
