package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanbanly/models"
)

func TestNextPositionAppends(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")

	pos, err := NextColumnPosition(db, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos, "empty board starts at 1")

	seedColumn(t, db, board, "To Do", 1)
	seedColumn(t, db, board, "Doing", 2)

	pos, err = NextColumnPosition(db, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	column := seedColumn(t, db, board, "Done", 3)

	pos, err = NextTaskPosition(db, column.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos, "empty column starts at 1")

	seedTask(t, db, column, "a", 1)
	seedTask(t, db, column, "b", 2)

	pos, err = NextTaskPosition(db, column.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
}

func TestReorderColumns(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")
	c1 := seedColumn(t, db, board, "A", 1)
	c2 := seedColumn(t, db, board, "B", 2)
	c3 := seedColumn(t, db, board, "C", 3)

	other := seedBoard(t, db, owner, "Other")
	foreign := seedColumn(t, db, other, "X", 1)

	require.NoError(t, ReorderColumns(db, board.ID, []uint{c3.ID, c1.ID, c2.ID, foreign.ID}))

	positions := map[uint]int{}
	var columns []models.Column
	require.NoError(t, db.Where("board_id = ?", board.ID).Find(&columns).Error)
	for _, c := range columns {
		positions[c.ID] = c.Position
	}
	assert.Equal(t, 1, positions[c3.ID])
	assert.Equal(t, 2, positions[c1.ID])
	assert.Equal(t, 3, positions[c2.ID])

	// IDs outside the board are ignored by the scoped update.
	var check models.Column
	require.NoError(t, db.First(&check, foreign.ID).Error)
	assert.Equal(t, 1, check.Position)
}

func TestReorderTasks(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")
	column := seedColumn(t, db, board, "To Do", 1)
	t1 := seedTask(t, db, column, "a", 1)
	t2 := seedTask(t, db, column, "b", 2)
	t3 := seedTask(t, db, column, "c", 3)

	require.NoError(t, ReorderTasks(db, column.ID, []uint{t2.ID, t3.ID, t1.ID}))

	var tasks []models.Task
	require.NoError(t, db.Where("column_id = ?", column.ID).Order("position ASC").Find(&tasks).Error)
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint{t2.ID, t3.ID, t1.ID}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestMoveTaskToTopAcrossColumns(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")
	source := seedColumn(t, db, board, "To Do", 1)
	dest := seedColumn(t, db, board, "Doing", 2)

	moving := seedTask(t, db, source, "moving", 1)
	staying := seedTask(t, db, source, "staying", 2)
	d1 := seedTask(t, db, dest, "d1", 1)
	d2 := seedTask(t, db, dest, "d2", 2)

	require.NoError(t, MoveTaskToTop(db, moving, dest.ID))

	assert.Equal(t, dest.ID, moving.ColumnID)
	assert.Equal(t, 1, moving.Position)

	var check models.Task
	require.NoError(t, db.First(&check, d1.ID).Error)
	assert.Equal(t, 2, check.Position, "destination tasks shift down")
	check = models.Task{}
	require.NoError(t, db.First(&check, d2.ID).Error)
	assert.Equal(t, 3, check.Position)

	// Source positions keep their gap.
	check = models.Task{}
	require.NoError(t, db.First(&check, staying.ID).Error)
	assert.Equal(t, 2, check.Position)
}

func TestMoveTaskToTopSameColumn(t *testing.T) {
	db := openTestDB(t)

	owner := seedUser(t, db, "owner")
	board := seedBoard(t, db, owner, "Project")
	column := seedColumn(t, db, board, "To Do", 1)

	t1 := seedTask(t, db, column, "a", 1)
	t2 := seedTask(t, db, column, "b", 2)

	require.NoError(t, MoveTaskToTop(db, t2, column.ID))

	assert.Equal(t, 1, t2.Position)

	// No shift happens on a same-column move; the sibling stays put.
	var check models.Task
	require.NoError(t, db.First(&check, t1.ID).Error)
	assert.Equal(t, 1, check.Position)
}
