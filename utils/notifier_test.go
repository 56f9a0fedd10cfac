package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanbanly/models"
)

func TestBoardNotifications(t *testing.T) {
	db := openTestDB(t)
	n := NewNotifier(db)

	owner := seedUser(t, db, "owner")
	invitee := seedUser(t, db, "invitee")
	board := seedBoard(t, db, owner, "Roadmap")

	require.NoError(t, n.BoardInvitation(invitee.ID, board))
	require.NoError(t, n.BoardRemoval(invitee.ID, board))

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", invitee.ID).Order("id ASC").Find(&notifications).Error)
	require.Len(t, notifications, 2)

	invite := notifications[0]
	assert.Equal(t, models.NotificationBoardInvitation, invite.Type)
	assert.Equal(t, "Board Invitation", invite.Title)
	assert.Equal(t, `You have been invited to join the board "Roadmap"`, invite.Message)
	assert.Equal(t, board.ID, invite.Payload.BoardID)
	assert.Equal(t, "Roadmap", invite.Payload.BoardName)
	assert.False(t, invite.IsRead)

	removal := notifications[1]
	assert.Equal(t, models.NotificationBoardRemoval, removal.Type)
	assert.Equal(t, `You have been removed from the board "Roadmap"`, removal.Message)
}

func TestTaskAssignedMessage(t *testing.T) {
	db := openTestDB(t)
	n := NewNotifier(db)

	owner := seedUser(t, db, "alice")
	assignee := seedUser(t, db, "bob")
	board := seedBoard(t, db, owner, "Roadmap")
	column := seedColumn(t, db, board, "To Do", 1)
	task := seedTask(t, db, column, "Fix login", 1)

	require.NoError(t, n.TaskAssigned(assignee.ID, task, owner, 42))

	var got models.Notification
	require.NoError(t, db.Where("user_id = ?", assignee.ID).First(&got).Error)
	assert.Equal(t, models.NotificationTaskAssignment, got.Type)
	assert.Equal(t, `You have been assigned to task "Fix login" by alice`, got.Message)
	require.NotNil(t, got.AssignmentID)
	assert.Equal(t, uint(42), *got.AssignmentID)
	assert.Equal(t, task.ID, got.Payload.TaskID)
	assert.Equal(t, owner.ID, got.Payload.ActorID)

	// Unknown assigner falls back to a placeholder name.
	require.NoError(t, n.TaskAssigned(assignee.ID, task, nil, 43))
	got = models.Notification{}
	require.NoError(t, db.Where("user_id = ? AND assignment_id = ?", assignee.ID, 43).First(&got).Error)
	assert.Equal(t, `You have been assigned to task "Fix login" by Unknown`, got.Message)
}

func TestNotificationMessagesKeepLiteralNames(t *testing.T) {
	db := openTestDB(t)
	n := NewNotifier(db)

	owner := seedUser(t, db, "owner")
	invitee := seedUser(t, db, "invitee")
	board := seedBoard(t, db, owner, `Q3 "Launch"`)
	column := seedColumn(t, db, board, "To Do", 1)
	task := seedTask(t, db, column, `say "hi"`, 1)

	require.NoError(t, n.BoardInvitation(invitee.ID, board))
	require.NoError(t, n.TaskAssigned(invitee.ID, task, owner, 1))

	// Names are embedded verbatim, never Go-escaped.
	var got models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", invitee.ID, models.NotificationBoardInvitation).First(&got).Error)
	assert.Equal(t, `You have been invited to join the board "Q3 "Launch""`, got.Message)

	got = models.Notification{}
	require.NoError(t, db.Where("user_id = ? AND type = ?", invitee.ID, models.NotificationTaskAssignment).First(&got).Error)
	assert.Equal(t, `You have been assigned to task "say "hi"" by owner`, got.Message)
}

func TestAssignmentNoticeCollapse(t *testing.T) {
	db := openTestDB(t)
	n := NewNotifier(db)

	creator := seedUser(t, db, "alice")
	assignee := seedUser(t, db, "bob")
	board := seedBoard(t, db, creator, "Roadmap")
	column := seedColumn(t, db, board, "To Do", 1)
	task := seedTask(t, db, column, "Fix login", 1)

	const assignmentID = 7
	require.NoError(t, n.TaskAssigned(assignee.ID, task, creator, assignmentID))

	// Accept: the pending notice disappears and the creator hears about it.
	require.NoError(t, n.ClearAssignmentNotice(assignee.ID, assignmentID))
	require.NoError(t, n.AssignmentAccepted(creator.ID, task, assignee.ID, assignmentID))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", assignee.ID, models.NotificationTaskAssignment).
		Count(&count).Error)
	assert.Zero(t, count, "pending notice must collapse")

	var accepted models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", creator.ID, models.NotificationAssignmentAccepted).First(&accepted).Error)
	assert.Equal(t, `User has accepted the task assignment for "Fix login"`, accepted.Message)
	assert.Equal(t, assignee.ID, accepted.Payload.ActorID)

	require.NoError(t, n.AssignmentRejected(creator.ID, task, assignee.ID, assignmentID))
	var rejected models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", creator.ID, models.NotificationAssignmentRejected).First(&rejected).Error)
	assert.Equal(t, `User has rejected the task assignment for "Fix login"`, rejected.Message)
}
