package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kanbanly/config"
	"kanbanly/models"
	"kanbanly/routes"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.RateLimitAuth = 1000

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app, db
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

// field walks nested JSON objects and returns a numeric leaf as uint.
func field(t *testing.T, m map[string]interface{}, keys ...string) uint {
	t.Helper()
	var cur interface{} = m
	for _, k := range keys {
		obj, ok := cur.(map[string]interface{})
		require.True(t, ok, "expected object at %q", k)
		cur, ok = obj[k]
		require.True(t, ok, "missing key %q", k)
	}
	num, ok := cur.(float64)
	require.True(t, ok, "expected number at %v", keys)
	return uint(num)
}

func registerUser(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()
	status, body := request(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status)
	token, ok := body["access_token"].(string)
	require.True(t, ok)
	return token, field(t, body, "user", "id")
}

func TestBoardLifecycleScenario(t *testing.T) {
	app, db := newTestApp(t)

	ownerToken, ownerID := registerUser(t, app, "alice")
	memberToken, memberID := registerUser(t, app, "bob")

	// Board with three columns.
	status, body := request(t, app, "POST", "/api/boards", ownerToken, fiber.Map{"name": "Launch"})
	require.Equal(t, fiber.StatusCreated, status)
	boardID := field(t, body, "board", "id")

	columnIDs := make([]uint, 0, 3)
	for i, name := range []string{"To Do", "Doing", "Done"} {
		status, body = request(t, app, "POST", "/api/columns", ownerToken, fiber.Map{
			"name":    name,
			"boardId": boardID,
		})
		require.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, uint(i+1), field(t, body, "column", "position"), "columns append")
		columnIDs = append(columnIDs, field(t, body, "column", "id"))
	}

	status, body = request(t, app, "POST", "/api/tasks", ownerToken, fiber.Map{
		"title":    "Fix login",
		"columnId": columnIDs[0],
	})
	require.Equal(t, fiber.StatusCreated, status)
	taskID := field(t, body, "task", "id")
	assert.Equal(t, uint(1), field(t, body, "task", "position"))

	// Bob cannot see the board yet.
	status, _ = request(t, app, "GET", fmt.Sprintf("/api/boards/%d", boardID), memberToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// The owner holds no membership row: never a candidate, never assignable.
	status, body = request(t, app, "GET", fmt.Sprintf("/api/task-assignments/%d/available-users", taskID), ownerToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["users"])

	status, _ = request(t, app, "POST", fmt.Sprintf("/api/task-assignments/%d/assign/%d", taskID, ownerID), ownerToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status, "owner is not assignable")

	// Invite Bob, then exercise the failure modes.
	status, _ = request(t, app, "POST", "/api/members/invite", ownerToken, fiber.Map{
		"boardId": boardID,
		"email":   "bob@example.com",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = request(t, app, "POST", "/api/members/invite", ownerToken, fiber.Map{
		"boardId": boardID,
		"email":   "bob@example.com",
	})
	assert.Equal(t, fiber.StatusConflict, status, "duplicate invite")

	status, _ = request(t, app, "POST", "/api/members/invite", ownerToken, fiber.Map{
		"boardId": boardID,
		"email":   "alice@example.com",
	})
	assert.Equal(t, fiber.StatusBadRequest, status, "self invite")

	// Membership grants visibility and Bob got an invitation notification.
	status, _ = request(t, app, "GET", fmt.Sprintf("/api/boards/%d", boardID), memberToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = request(t, app, "GET", "/api/notifications", memberToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, uint(1), field(t, body, "unreadCount"))

	// Member list carries the owner pseudo-row.
	status, body = request(t, app, "GET", fmt.Sprintf("/api/members/board/%d", boardID), memberToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	entries, ok := body["members"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 2)
	last := entries[len(entries)-1].(map[string]interface{})
	assert.Equal(t, float64(0), last["id"])
	assert.Equal(t, true, last["user"].(map[string]interface{})["isOwner"])

	// Only the invited member shows up as a candidate.
	status, body = request(t, app, "GET", fmt.Sprintf("/api/task-assignments/%d/available-users", taskID), ownerToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	users, ok := body["users"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, float64(memberID), users[0].(map[string]interface{})["id"])

	// Assign Bob; the assignment starts pending.
	status, body = request(t, app, "POST", fmt.Sprintf("/api/task-assignments/%d/assign/%d", taskID, memberID), ownerToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assignmentID := field(t, body, "assignment", "id")
	assert.Equal(t, models.AssignmentPending, body["assignment"].(map[string]interface{})["status"])

	status, _ = request(t, app, "POST", fmt.Sprintf("/api/task-assignments/%d/assign/%d", taskID, memberID), ownerToken, nil)
	assert.Equal(t, fiber.StatusConflict, status, "duplicate assignment")

	// Only the assignee can accept.
	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/accept", assignmentID), ownerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/accept", assignmentID), memberToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.AssignmentAccepted, body["assignment"].(map[string]interface{})["status"])

	// The pending notice collapsed; Alice was told about the acceptance.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", memberID, models.NotificationTaskAssignment).
		Count(&count).Error)
	assert.Zero(t, count)

	var accepted models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationAssignmentAccepted).First(&accepted).Error)
	assert.Equal(t, `User has accepted the task assignment for "Fix login"`, accepted.Message)

	// Accepting twice is not possible.
	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/accept", assignmentID), memberToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTaskMoveAndTagCascade(t *testing.T) {
	app, _ := newTestApp(t)

	token, _ := registerUser(t, app, "carol")

	status, body := request(t, app, "POST", "/api/boards", token, fiber.Map{"name": "Sprint"})
	require.Equal(t, fiber.StatusCreated, status)
	boardID := field(t, body, "board", "id")

	var columnIDs []uint
	for _, name := range []string{"To Do", "Doing"} {
		status, body = request(t, app, "POST", "/api/columns", token, fiber.Map{
			"name":    name,
			"boardId": boardID,
		})
		require.Equal(t, fiber.StatusCreated, status)
		columnIDs = append(columnIDs, field(t, body, "column", "id"))
	}

	var taskIDs []uint
	for _, title := range []string{"first", "second"} {
		status, body = request(t, app, "POST", "/api/tasks", token, fiber.Map{
			"title":    title,
			"columnId": columnIDs[1],
		})
		require.Equal(t, fiber.StatusCreated, status)
		taskIDs = append(taskIDs, field(t, body, "task", "id"))
	}

	status, body = request(t, app, "POST", "/api/tasks", token, fiber.Map{
		"title":    "mover",
		"columnId": columnIDs[0],
	})
	require.Equal(t, fiber.StatusCreated, status)
	moverID := field(t, body, "task", "id")

	// Move lands at the top and shifts the destination down.
	status, body = request(t, app, "PUT", fmt.Sprintf("/api/tasks/%d/move", moverID), token, fiber.Map{
		"columnId": columnIDs[1],
		"position": 1,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, uint(1), field(t, body, "task", "position"))
	assert.Equal(t, columnIDs[1], field(t, body, "task", "columnId"))

	status, body = request(t, app, "GET", fmt.Sprintf("/api/tasks/column/%d", columnIDs[1]), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	tasks := body["tasks"].([]interface{})
	require.Len(t, tasks, 3)
	assert.Equal(t, float64(moverID), tasks[0].(map[string]interface{})["id"])

	// Partial update: omitting the title leaves it untouched.
	status, body = request(t, app, "PUT", fmt.Sprintf("/api/tasks/%d", moverID), token, fiber.Map{
		"description": "notes",
	})
	require.Equal(t, fiber.StatusOK, status)
	updated := body["task"].(map[string]interface{})
	assert.Equal(t, "mover", updated["title"])
	assert.Equal(t, "notes", updated["description"])

	// Missing position on move is rejected.
	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/tasks/%d/move", taskIDs[0]), token, fiber.Map{
		"columnId": columnIDs[0],
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Tag lifecycle: create, attach, duplicate 409, delete cascades the link.
	status, body = request(t, app, "POST", "/api/tags", token, fiber.Map{
		"name":    "urgent",
		"boardId": boardID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	tagID := field(t, body, "tag", "id")
	assert.Equal(t, models.DefaultTagColor, body["tag"].(map[string]interface{})["color"])

	status, _ = request(t, app, "POST", "/api/tags", token, fiber.Map{
		"name":    "urgent",
		"boardId": boardID,
	})
	assert.Equal(t, fiber.StatusConflict, status, "duplicate tag name")

	status, _ = request(t, app, "POST", "/api/task-tags/add", token, fiber.Map{
		"taskId": moverID,
		"tagId":  tagID,
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = request(t, app, "POST", "/api/task-tags/add", token, fiber.Map{
		"taskId": moverID,
		"tagId":  tagID,
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = request(t, app, "DELETE", fmt.Sprintf("/api/tags/%d", tagID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = request(t, app, "GET", fmt.Sprintf("/api/task-tags/task/%d", moverID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["taskTags"])
}

func TestAssignmentRejectFlow(t *testing.T) {
	app, db := newTestApp(t)

	ownerToken, ownerID := registerUser(t, app, "dave")
	memberToken, memberID := registerUser(t, app, "erin")

	status, body := request(t, app, "POST", "/api/boards", ownerToken, fiber.Map{"name": "Ops"})
	require.Equal(t, fiber.StatusCreated, status)
	boardID := field(t, body, "board", "id")

	status, body = request(t, app, "POST", "/api/columns", ownerToken, fiber.Map{
		"name":    "To Do",
		"boardId": boardID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	columnID := field(t, body, "column", "id")

	status, body = request(t, app, "POST", "/api/tasks", ownerToken, fiber.Map{
		"title":    "Rotate keys",
		"columnId": columnID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	taskID := field(t, body, "task", "id")

	status, _ = request(t, app, "POST", "/api/members/invite", ownerToken, fiber.Map{
		"boardId": boardID,
		"email":   "erin@example.com",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, body = request(t, app, "POST", fmt.Sprintf("/api/task-assignments/%d/assign/%d", taskID, memberID), ownerToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assignmentID := field(t, body, "assignment", "id")

	// Only the assignee can reject.
	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/reject", assignmentID), ownerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/reject", assignmentID), memberToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	// The row is gone, the pending notice collapsed, and the assigner heard.
	var count int64
	require.NoError(t, db.Model(&models.TaskMember{}).
		Where("task_id = ? AND user_id = ?", taskID, memberID).
		Count(&count).Error)
	assert.Zero(t, count, "rejection deletes the assignment row")

	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", memberID, models.NotificationTaskAssignment).
		Count(&count).Error)
	assert.Zero(t, count)

	var rejected models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", ownerID, models.NotificationAssignmentRejected).First(&rejected).Error)
	assert.Equal(t, `User has rejected the task assignment for "Rotate keys"`, rejected.Message)

	// Rejecting twice is not possible.
	status, _ = request(t, app, "PUT", fmt.Sprintf("/api/task-assignments/%d/reject", assignmentID), memberToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// Deletion frees the unique pair: the same user can be assigned again.
	status, body = request(t, app, "POST", fmt.Sprintf("/api/task-assignments/%d/assign/%d", taskID, memberID), ownerToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, models.AssignmentPending, body["assignment"].(map[string]interface{})["status"])
}

func TestRegisterDuplicate(t *testing.T) {
	app, _ := newTestApp(t)

	registerUser(t, app, "frank")

	status, _ := request(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": "frank",
		"email":    "frank@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	// Same email under a new username is also a conflict.
	status, _ = request(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": "franklin",
		"email":    "frank@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
}
