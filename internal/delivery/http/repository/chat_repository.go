package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/entity"
)

type (
	ChatRepository interface {
		CreateSession(db *gorm.DB, session *entity.ChatSession) error
		FindSessionByID(db *gorm.DB, id uuid.UUID) (*entity.ChatSession, error)
		FindSessionsByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.ChatSession, error)
		UpdateSession(db *gorm.DB, session *entity.ChatSession) error
		DeleteSession(db *gorm.DB, id uuid.UUID) error

		CreateMessage(db *gorm.DB, message *entity.ChatMessage) error
		FindMessagesBySessionID(db *gorm.DB, sessionID uuid.UUID, limit int) ([]entity.ChatMessage, error)
	}

	chatRepository struct {
		db *gorm.DB
	}
)

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSession(db *gorm.DB, session *entity.ChatSession) error {
	if db == nil {
		db = r.db
	}
	return db.Create(session).Error
}

func (r *chatRepository) FindSessionByID(db *gorm.DB, id uuid.UUID) (*entity.ChatSession, error) {
	if db == nil {
		db = r.db
	}
	var session entity.ChatSession
	err := db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepository) FindSessionsByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.ChatSession, error) {
	if db == nil {
		db = r.db
	}
	var sessions []entity.ChatSession
	err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *chatRepository) UpdateSession(db *gorm.DB, session *entity.ChatSession) error {
	if db == nil {
		db = r.db
	}
	return db.Save(session).Error
}

func (r *chatRepository) DeleteSession(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	if err := db.Where("session_id = ?", id).Delete(&entity.ChatMessage{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&entity.ChatSession{}).Error
}

func (r *chatRepository) CreateMessage(db *gorm.DB, message *entity.ChatMessage) error {
	if db == nil {
		db = r.db
	}
	return db.Create(message).Error
}

func (r *chatRepository) FindMessagesBySessionID(db *gorm.DB, sessionID uuid.UUID, limit int) ([]entity.ChatMessage, error) {
	if db == nil {
		db = r.db
	}
	var messages []entity.ChatMessage
	query := db.Where("session_id = ?", sessionID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}
