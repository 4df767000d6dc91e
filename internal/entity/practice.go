package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subject - a subject available for one education level (e.g. S6 Mathematics)
type Subject struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Level       string    `gorm:"size:20;not null" json:"level"` // P6, S3, S6, ...
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"size:10" json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (s *Subject) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Document - an uploaded exam paper; ingestion is performed externally
type Document struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename        string     `gorm:"size:500;not null" json:"filename"`
	FilePath        string     `gorm:"size:1000" json:"file_path"`
	Subject         string     `gorm:"size:100;index" json:"subject"`
	Level           string     `gorm:"size:20;index" json:"level"`
	SubjectID       *uuid.UUID `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	CollectionName  string     `gorm:"size:200" json:"collection_name"`
	IngestionStatus string     `gorm:"size:20;not null;default:pending;index" json:"ingestion_status"` // pending, processing, completed, failed
	CreatedAt       time.Time  `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Topic - a syllabus topic within a subject, bucket for progress tracking
type Topic struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Subject  string     `gorm:"size:100;index:uq_topic_subject_name,unique" json:"subject"`
	Name     string     `gorm:"size:200;not null;index:uq_topic_subject_name,unique" json:"name"`
	ParentID *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

func (t *Topic) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Question - a pool question extracted from an ingested document
type Question struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	QuestionType  string     `gorm:"size:20;not null;default:mcq" json:"question_type"`
	Options       string     `gorm:"type:text" json:"options,omitempty"` // JSON array, empty for non-MCQ
	CorrectAnswer string     `gorm:"type:text" json:"correct_answer,omitempty"`
	Difficulty    string     `gorm:"size:20" json:"difficulty,omitempty"`
	SourcePage    *int       `json:"source_page,omitempty"`
	TopicID       *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	DocumentID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"document_id"`
	CreatedAt     time.Time  `json:"created_at"`

	Topic *Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Progress - per-(student, topic) running mastery aggregate
type Progress struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID  `gorm:"type:uuid;not null;index:uq_student_topic_progress,unique" json:"student_id"`
	TopicID         uuid.UUID  `gorm:"type:uuid;not null;index:uq_student_topic_progress,unique" json:"topic_id"`
	TotalCorrect    int        `gorm:"not null;default:0" json:"total_correct"`
	TotalQuestions  int        `gorm:"not null;default:0" json:"total_questions"`
	Accuracy        float64    `gorm:"not null;default:0" json:"accuracy"`
	AttemptCount    int        `gorm:"not null;default:0" json:"attempt_count"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`

	Topic *Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (Progress) TableName() string {
	return "progress"
}

func (p *Progress) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PracticeSession - one student's timed walk through N practice questions
type PracticeSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	SubjectID      *uuid.UUID `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	DocumentID     *uuid.UUID `gorm:"type:uuid" json:"document_id,omitempty"`
	CollectionName string     `gorm:"size:200" json:"collection_name"`
	Topic          string     `gorm:"size:200" json:"topic,omitempty"`
	QuestionTypes  string     `gorm:"type:text" json:"question_types,omitempty"` // JSON array, empty means any
	Status         string     `gorm:"size:20;not null;default:in_progress" json:"status"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	AnsweredCount  int        `gorm:"not null;default:0" json:"answered_count"`
	CorrectCount   int        `gorm:"not null;default:0" json:"correct_count"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	Answers []PracticeAnswer `gorm:"foreignKey:SessionID" json:"answers,omitempty"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}

func (s *PracticeSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PracticeAnswer - one graded response within a session, immutable once saved
type PracticeAnswer struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	QuestionID    *uuid.UUID `gorm:"type:uuid" json:"question_id,omitempty"` // nil for synthesized questions
	QuestionText  string     `gorm:"type:text;not null" json:"question_text"`
	QuestionType  string     `gorm:"size:20;not null;default:short-answer" json:"question_type"`
	StudentAnswer string     `gorm:"type:text;not null" json:"student_answer"`
	IsHandwritten bool       `gorm:"not null;default:false" json:"is_handwritten"`
	OCRText       string     `gorm:"type:text" json:"ocr_text,omitempty"`
	IsCorrect     *bool      `json:"is_correct,omitempty"` // nil means ungradable
	Score         float64    `gorm:"not null;default:0" json:"score"`
	Feedback      string     `gorm:"type:text" json:"feedback,omitempty"`
	CorrectAnswer string     `gorm:"type:text" json:"correct_answer,omitempty"`
	SourceRefs    string     `gorm:"column:source_references;type:text" json:"source_references,omitempty"` // JSON array
	CreatedAt     time.Time  `json:"created_at"`
}

func (PracticeAnswer) TableName() string {
	return "practice_answers"
}

func (a *PracticeAnswer) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ChatSession - a conversation between a student and the AI tutor
type ChatSession struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Collection string    `gorm:"size:200;index" json:"collection"`
	Title      string    `gorm:"size:200;not null;default:'New Chat'" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ChatMessage - one turn of a chat session
type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Role        string    `gorm:"size:20;not null" json:"role"` // user, assistant
	Content     string    `gorm:"type:text;not null" json:"content"`
	SourcesJSON string    `gorm:"type:text" json:"sources_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
