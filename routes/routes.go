package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "kanbanly/controllers"
	"kanbanly/middleware"
)

// SetupRoutes mounts the API. Auth routes are registered first and stay
// public (aside from /me); everything else under /api requires a valid token.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	flags := log.Ldate | log.Ltime | log.Lshortfile

	authController := controller.NewAuthController(db, log.New(os.Stdout, "AUTH: ", flags))
	boardController := controller.NewBoardController(db, log.New(os.Stdout, "BOARD: ", flags))
	columnController := controller.NewColumnController(db, log.New(os.Stdout, "COLUMN: ", flags))
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", flags))
	memberController := controller.NewMemberController(db, log.New(os.Stdout, "MEMBER: ", flags))
	taskMemberController := controller.NewTaskMemberController(db, log.New(os.Stdout, "TASK-MEMBER: ", flags))
	taskAssignmentController := controller.NewTaskAssignmentController(db, log.New(os.Stdout, "ASSIGNMENT: ", flags))
	tagController := controller.NewTagController(db, log.New(os.Stdout, "TAG: ", flags))
	taskTagController := controller.NewTaskTagController(db, log.New(os.Stdout, "TASK-TAG: ", flags))
	notificationController := controller.NewNotificationController(db, log.New(os.Stdout, "NOTIFICATION: ", flags))

	auth := app.Group("/api/auth", middleware.AuthRateLimiter())
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/refresh", authController.RefreshToken)
	auth.Get("/me", middleware.Protected(db), authController.GetCurrentUser)

	api := app.Group("/api", middleware.Protected(db))

	boards := api.Group("/boards")
	boards.Post("/", boardController.CreateBoard)
	boards.Get("/", boardController.GetBoards)
	boards.Get("/:id", boardController.GetBoard)
	boards.Put("/:id", boardController.UpdateBoard)
	boards.Delete("/:id", boardController.DeleteBoard)

	columns := api.Group("/columns")
	columns.Post("/", columnController.CreateColumn)
	columns.Get("/board/:boardId", columnController.GetColumnsByBoard)
	columns.Put("/reorder/:boardId", columnController.ReorderColumns)
	columns.Get("/:id", columnController.GetColumn)
	columns.Put("/:id", columnController.UpdateColumn)
	columns.Delete("/:id", columnController.DeleteColumn)

	tasks := api.Group("/tasks")
	tasks.Post("/", taskController.CreateTask)
	tasks.Get("/column/:columnId", taskController.GetTasksByColumn)
	tasks.Put("/reorder/:columnId", taskController.ReorderTasks)
	tasks.Put("/:id/move", taskController.MoveTask)
	tasks.Get("/:id", taskController.GetTask)
	tasks.Put("/:id", taskController.UpdateTask)
	tasks.Delete("/:id", taskController.DeleteTask)

	members := api.Group("/members")
	members.Post("/invite", memberController.InviteMember)
	members.Get("/board/:boardId", memberController.GetBoardMembers)
	members.Get("/search", memberController.SearchUsers)
	members.Delete("/board/:boardId/leave", memberController.LeaveBoard)
	members.Delete("/:memberId", memberController.RemoveMember)

	taskMembers := api.Group("/task-members")
	taskMembers.Post("/assign", taskMemberController.AssignTaskMember)
	taskMembers.Get("/task/:taskId", taskMemberController.GetTaskMembers)
	taskMembers.Delete("/task/:taskId/member/:memberId", taskMemberController.RemoveTaskMember)

	assignments := api.Group("/task-assignments")
	assignments.Post("/:taskId/assign/:userId", taskAssignmentController.AssignUser)
	assignments.Delete("/:taskId/unassign/:userId", taskAssignmentController.UnassignUser)
	assignments.Get("/:taskId/assignments", taskAssignmentController.GetTaskAssignments)
	assignments.Get("/:taskId/available-users", taskAssignmentController.GetAvailableUsers)
	assignments.Put("/:assignmentId/accept", taskAssignmentController.AcceptAssignment)
	assignments.Put("/:assignmentId/reject", taskAssignmentController.RejectAssignment)

	tags := api.Group("/tags")
	tags.Post("/", tagController.CreateTag)
	tags.Get("/", tagController.GetTags)
	tags.Get("/board/:boardId", tagController.GetTagsByBoard)
	tags.Get("/:id", tagController.GetTag)
	tags.Put("/:id", tagController.UpdateTag)
	tags.Delete("/:id", tagController.DeleteTag)

	taskTags := api.Group("/task-tags")
	taskTags.Post("/add", taskTagController.AddTagToTask)
	taskTags.Get("/task/:taskId", taskTagController.GetTaskTags)
	taskTags.Get("/tag/:tagId/tasks", taskTagController.GetTasksByTag)
	taskTags.Delete("/task/:taskId/tag/:tagId", taskTagController.RemoveTagFromTask)

	notifications := api.Group("/notifications")
	notifications.Get("/stats", notificationController.GetNotificationStats)
	notifications.Put("/read-all", notificationController.MarkAllAsRead)
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/:id", notificationController.GetNotification)
	notifications.Put("/:id/read", notificationController.MarkAsRead)
	notifications.Delete("/:id", notificationController.DeleteNotification)
	notifications.Delete("/", notificationController.DeleteAllNotifications)
}
