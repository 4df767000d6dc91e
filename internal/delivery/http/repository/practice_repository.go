package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pastpaper/pastpaper-be/internal/entity"
)

type (
	PracticeRepository interface {
		// Session operations
		CreateSession(db *gorm.DB, session *entity.PracticeSession) error
		FindSessionByID(db *gorm.DB, id uuid.UUID) (*entity.PracticeSession, error)
		FindSessionsByStudentID(db *gorm.DB, studentID uuid.UUID, limit int) ([]entity.PracticeSession, error)
		UpdateSession(db *gorm.DB, session *entity.PracticeSession) error

		// Answer operations
		CreateAnswer(db *gorm.DB, answer *entity.PracticeAnswer) error
		FindAnswersBySessionID(db *gorm.DB, sessionID uuid.UUID) ([]entity.PracticeAnswer, error)

		// Question pool operations
		FindRandomQuestions(db *gorm.DB, documentIDs []uuid.UUID, questionTypes []string, excludeIDs []uuid.UUID, limit int) ([]entity.Question, error)
		FindQuestionByID(db *gorm.DB, id uuid.UUID) (*entity.Question, error)

		// Source lookup operations
		FindSubjectByID(db *gorm.DB, id uuid.UUID) (*entity.Subject, error)
		FindDocumentByID(db *gorm.DB, id uuid.UUID) (*entity.Document, error)
		FindIngestedDocumentsBySubjectID(db *gorm.DB, subjectID uuid.UUID) ([]entity.Document, error)
		FindIngestedDocumentsByCollection(db *gorm.DB, collection string) ([]entity.Document, error)
		FindDocumentsByFilenames(db *gorm.DB, filenames []string) ([]entity.Document, error)
	}

	practiceRepository struct {
		db *gorm.DB
	}
)

func NewPracticeRepository(db *gorm.DB) PracticeRepository {
	return &practiceRepository{db: db}
}

// Session operations
func (r *practiceRepository) CreateSession(db *gorm.DB, session *entity.PracticeSession) error {
	if db == nil {
		db = r.db
	}
	return db.Create(session).Error
}

func (r *practiceRepository) FindSessionByID(db *gorm.DB, id uuid.UUID) (*entity.PracticeSession, error) {
	if db == nil {
		db = r.db
	}
	var session entity.PracticeSession
	err := db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *practiceRepository) FindSessionsByStudentID(db *gorm.DB, studentID uuid.UUID, limit int) ([]entity.PracticeSession, error) {
	if db == nil {
		db = r.db
	}
	var sessions []entity.PracticeSession
	query := db.Where("student_id = ?", studentID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func (r *practiceRepository) UpdateSession(db *gorm.DB, session *entity.PracticeSession) error {
	if db == nil {
		db = r.db
	}
	return db.Save(session).Error
}

// Answer operations
func (r *practiceRepository) CreateAnswer(db *gorm.DB, answer *entity.PracticeAnswer) error {
	if db == nil {
		db = r.db
	}
	return db.Create(answer).Error
}

func (r *practiceRepository) FindAnswersBySessionID(db *gorm.DB, sessionID uuid.UUID) ([]entity.PracticeAnswer, error) {
	if db == nil {
		db = r.db
	}
	var answers []entity.PracticeAnswer
	err := db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&answers).Error
	return answers, err
}

// Question pool operations
func (r *practiceRepository) FindRandomQuestions(db *gorm.DB, documentIDs []uuid.UUID, questionTypes []string, excludeIDs []uuid.UUID, limit int) ([]entity.Question, error) {
	if db == nil {
		db = r.db
	}
	var questions []entity.Question
	query := db.Model(&entity.Question{})
	if len(documentIDs) > 0 {
		query = query.Where("document_id IN ?", documentIDs)
	}
	if len(questionTypes) > 0 {
		query = query.Where("question_type IN ?", questionTypes)
	}
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	return questions, err
}

func (r *practiceRepository) FindQuestionByID(db *gorm.DB, id uuid.UUID) (*entity.Question, error) {
	if db == nil {
		db = r.db
	}
	var question entity.Question
	err := db.Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Source lookup operations
func (r *practiceRepository) FindSubjectByID(db *gorm.DB, id uuid.UUID) (*entity.Subject, error) {
	if db == nil {
		db = r.db
	}
	var subject entity.Subject
	err := db.Where("id = ?", id).First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *practiceRepository) FindDocumentByID(db *gorm.DB, id uuid.UUID) (*entity.Document, error) {
	if db == nil {
		db = r.db
	}
	var document entity.Document
	err := db.Where("id = ?", id).First(&document).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *practiceRepository) FindIngestedDocumentsBySubjectID(db *gorm.DB, subjectID uuid.UUID) ([]entity.Document, error) {
	if db == nil {
		db = r.db
	}
	var documents []entity.Document
	err := db.Where("subject_id = ? AND ingestion_status = ?", subjectID, "completed").Find(&documents).Error
	return documents, err
}

func (r *practiceRepository) FindIngestedDocumentsByCollection(db *gorm.DB, collection string) ([]entity.Document, error) {
	if db == nil {
		db = r.db
	}
	var documents []entity.Document
	err := db.Where("collection_name = ? AND ingestion_status = ?", collection, "completed").Find(&documents).Error
	return documents, err
}

func (r *practiceRepository) FindDocumentsByFilenames(db *gorm.DB, filenames []string) ([]entity.Document, error) {
	if db == nil {
		db = r.db
	}
	if len(filenames) == 0 {
		return nil, nil
	}
	var documents []entity.Document
	err := db.Where("filename IN ?", filenames).Find(&documents).Error
	return documents, err
}
