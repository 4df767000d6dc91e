package entity

type QuestionType string

const (
	QuestionTypeMCQ            QuestionType = "mcq"
	QuestionTypeShortAnswer    QuestionType = "short-answer"
	QuestionTypeEssay          QuestionType = "essay"
	QuestionTypeTrueFalse      QuestionType = "true-or-false"
	QuestionTypeFillInTheBlank QuestionType = "fill-in-the-blank"
)

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// Request to start a practice session
type StartSessionRequest struct {
	SubjectID     string   `json:"subject_id,omitempty"`
	DocumentID    string   `json:"document_id,omitempty"`
	Collection    string   `json:"collection,omitempty"`
	NumQuestions  int      `json:"num_questions" validate:"omitempty,min=1,max=20"`
	QuestionTypes []string `json:"question_types,omitempty" validate:"omitempty,dive,oneof=mcq short-answer essay true-or-false fill-in-the-blank"`
	Topic         string   `json:"topic,omitempty"`
}

// One question presented to the student (answer key withheld)
type QuestionRead struct {
	SessionID    string            `json:"session_id"`
	QuestionID   string            `json:"question_id,omitempty"` // empty for synthesized questions
	Number       int               `json:"number"`
	Total        int               `json:"total"`
	Text         string            `json:"text"`
	QuestionType string            `json:"question_type"`
	Options      []string          `json:"options,omitempty"`
	Sources      []SourceReference `json:"sources,omitempty"`
}

// Request to submit an answer. QuestionText/QuestionType echo the served
// question for synthesized questions, which have no stable question_id.
type SubmitAnswerRequest struct {
	QuestionID        string `json:"question_id,omitempty"`
	QuestionText      string `json:"question_text,omitempty"`
	QuestionType      string `json:"question_type,omitempty"`
	Answer            string `json:"answer,omitempty"`
	AnswerImageBase64 string `json:"answer_image_base64,omitempty"`
}

type SourceReference struct {
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	Page         *int   `json:"page,omitempty"`
}

// Grading outcome for one answer
type AnswerResult struct {
	SessionID        string            `json:"session_id"`
	IsCorrect        *bool             `json:"is_correct"` // null when the answer could not be graded
	Score            float64           `json:"score"`
	Feedback         string            `json:"feedback,omitempty"`
	CorrectAnswer    string            `json:"correct_answer,omitempty"`
	OCRText          string            `json:"ocr_text,omitempty"`
	SourceReferences []SourceReference `json:"source_references,omitempty"`
	AnsweredCount    int               `json:"answered_count"`
	CorrectCount     int               `json:"correct_count"`
	TotalQuestions   int               `json:"total_questions"`
	SessionStatus    string            `json:"session_status"`
}

// Practice session summary
type SessionRead struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"student_id"`
	SubjectID      string  `json:"subject_id,omitempty"`
	Collection     string  `json:"collection,omitempty"`
	Status         string  `json:"status"`
	TotalQuestions int     `json:"total_questions"`
	AnsweredCount  int     `json:"answered_count"`
	CorrectCount   int     `json:"correct_count"`
	Accuracy       float64 `json:"accuracy"`
	CreatedAt      string  `json:"created_at"`
	CompletedAt    string  `json:"completed_at,omitempty"`
}

// One graded answer inside the session detail
type AnswerRead struct {
	QuestionText     string            `json:"question_text"`
	QuestionType     string            `json:"question_type"`
	StudentAnswer    string            `json:"student_answer"`
	IsHandwritten    bool              `json:"is_handwritten"`
	OCRText          string            `json:"ocr_text,omitempty"`
	IsCorrect        *bool             `json:"is_correct"`
	Score            float64           `json:"score"`
	Feedback         string            `json:"feedback,omitempty"`
	CorrectAnswer    string            `json:"correct_answer,omitempty"`
	SourceReferences []SourceReference `json:"source_references,omitempty"`
	AnsweredAt       string            `json:"answered_at"`
}

// Session detail including all answers
type SessionDetail struct {
	SessionRead
	Answers []AnswerRead `json:"answers"`
}

// Per-topic progress
type ProgressRead struct {
	TopicID         string  `json:"topic_id"`
	TopicName       string  `json:"topic_name,omitempty"`
	Subject         string  `json:"subject,omitempty"`
	TotalCorrect    int     `json:"total_correct"`
	TotalQuestions  int     `json:"total_questions"`
	Accuracy        float64 `json:"accuracy"`
	AttemptCount    int     `json:"attempt_count"`
	LastAttemptedAt string  `json:"last_attempted_at,omitempty"`
}
