package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kanbanly/models"
)

func TestBoardAccess(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	stranger := seedUser(t, db, "stranger")

	board := seedBoard(t, db, owner, "Project")
	require.NoError(t, db.Create(&models.BoardMember{BoardID: board.ID, UserID: member.ID}).Error)

	cases := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"owner", owner.ID, true},
		{"member", member.ID, true},
		{"stranger", stranger.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := CanAccessBoard(db, tc.userID, board.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}

	ok, err := CanAccessBoard(db, owner.ID, 9999)
	require.NoError(t, err)
	assert.False(t, ok, "missing board must not be accessible")
}

func TestFindOwnedBoard(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	board := seedBoard(t, db, owner, "Project")
	require.NoError(t, db.Create(&models.BoardMember{BoardID: board.ID, UserID: member.ID}).Error)

	got, err := FindOwnedBoard(db, owner.ID, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, got.ID)

	// A member is not an owner and gets the same error as a stranger.
	_, err = FindOwnedBoard(db, member.ID, board.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindAccessibleTaskTransitive(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	stranger := seedUser(t, db, "stranger")

	board := seedBoard(t, db, owner, "Project")
	require.NoError(t, db.Create(&models.BoardMember{BoardID: board.ID, UserID: member.ID}).Error)
	column := seedColumn(t, db, board, "To Do", 1)
	task := seedTask(t, db, column, "Fix login", 1)

	// Task access is inherited from the board through the column.
	got, err := FindAccessibleTask(db, member.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = FindAccessibleTask(db, stranger.ID, task.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "denied must be indistinguishable from absent")

	_, err = FindAccessibleTask(db, owner.ID, 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindAccessibleColumnAndTag(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")
	board := seedBoard(t, db, owner, "Project")
	column := seedColumn(t, db, board, "To Do", 1)

	tag := models.Tag{Name: "bug", Color: models.DefaultTagColor, BoardID: board.ID}
	require.NoError(t, db.Create(&tag).Error)

	gotColumn, err := FindAccessibleColumn(db, owner.ID, column.ID)
	require.NoError(t, err)
	assert.Equal(t, column.ID, gotColumn.ID)

	gotTag, err := FindAccessibleTag(db, owner.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, gotTag.ID)

	_, err = FindAccessibleColumn(db, stranger.ID, column.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = FindAccessibleTag(db, stranger.ID, tag.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTaskBoardID(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")
	column := seedColumn(t, db, board, "To Do", 1)
	task := seedTask(t, db, column, "Fix login", 1)

	boardID, err := TaskBoardID(db, task.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, boardID)
}
