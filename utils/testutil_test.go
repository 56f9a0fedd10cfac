package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kanbanly/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedBoard(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Board {
	t.Helper()
	board := models.Board{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(&board).Error)
	return &board
}

func seedColumn(t *testing.T, db *gorm.DB, board *models.Board, name string, position int) *models.Column {
	t.Helper()
	column := models.Column{Name: name, Position: position, BoardID: board.ID}
	require.NoError(t, db.Create(&column).Error)
	return &column
}

func seedTask(t *testing.T, db *gorm.DB, column *models.Column, title string, position int) *models.Task {
	t.Helper()
	task := models.Task{Title: title, Position: position, ColumnID: column.ID}
	require.NoError(t, db.Create(&task).Error)
	return &task
}
