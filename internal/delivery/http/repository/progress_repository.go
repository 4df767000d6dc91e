package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/entity"
)

type (
	ProgressRepository interface {
		FindByStudentAndTopic(db *gorm.DB, studentID, topicID uuid.UUID) (*entity.Progress, error)
		Save(db *gorm.DB, progress *entity.Progress) error
		FindByStudentID(db *gorm.DB, studentID uuid.UUID) ([]entity.Progress, error)
		FindOrCreateTopic(db *gorm.DB, subject, name string) (*entity.Topic, error)
	}

	progressRepository struct {
		db *gorm.DB
	}
)

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) FindByStudentAndTopic(db *gorm.DB, studentID, topicID uuid.UUID) (*entity.Progress, error) {
	if db == nil {
		db = r.db
	}
	var progress entity.Progress
	err := db.Where("student_id = ? AND topic_id = ?", studentID, topicID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) Save(db *gorm.DB, progress *entity.Progress) error {
	if db == nil {
		db = r.db
	}
	return db.Save(progress).Error
}

func (r *progressRepository) FindByStudentID(db *gorm.DB, studentID uuid.UUID) ([]entity.Progress, error) {
	if db == nil {
		db = r.db
	}
	var rows []entity.Progress
	err := db.Preload("Topic").Where("student_id = ?", studentID).Order("last_attempted_at DESC").Find(&rows).Error
	return rows, err
}

func (r *progressRepository) FindOrCreateTopic(db *gorm.DB, subject, name string) (*entity.Topic, error) {
	if db == nil {
		db = r.db
	}
	topic := entity.Topic{Subject: subject, Name: name}
	err := db.Where("subject = ? AND name = ?", subject, name).FirstOrCreate(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}
