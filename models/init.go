package models

import "gorm.io/gorm"

// Migrate creates or updates the full schema. Order matters: parents before
// the join tables that reference them.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Board{},
		&BoardMember{},
		&Column{},
		&Task{},
		&TaskMember{},
		&Tag{},
		&TaskTag{},
		&Notification{},
	)
}
