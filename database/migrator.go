package database

import (
	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/entity"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Subject{},
		&entity.Document{},
		&entity.Topic{},
		&entity.Question{},
		&entity.Progress{},
		&entity.PracticeSession{},
		&entity.PracticeAnswer{},
		&entity.ChatSession{},
		&entity.ChatMessage{},
	)
	return err
}
