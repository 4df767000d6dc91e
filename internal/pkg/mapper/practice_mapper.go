package mapper

import (
	"encoding/json"
	"time"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	dbEntity "github.com/pastpaper/pastpaper-be/internal/entity"
)

// ParseOptions - Decode the JSON options column of a pool question
func ParseOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	return options
}

// EncodeOptions - Encode MCQ options for storage
func EncodeOptions(options []string) string {
	if len(options) == 0 {
		return ""
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return ""
	}
	return string(raw)
}

// ParseSourceReferences - Decode the JSON source_references column of an answer
func ParseSourceReferences(raw string) []httpEntity.SourceReference {
	if raw == "" {
		return nil
	}
	var refs []httpEntity.SourceReference
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil
	}
	return refs
}

// EncodeSourceReferences - Encode source references for storage
func EncodeSourceReferences(refs []httpEntity.SourceReference) string {
	if len(refs) == 0 {
		return ""
	}
	raw, err := json.Marshal(refs)
	if err != nil {
		return ""
	}
	return string(raw)
}

// ConvertToSessionRead - Convert DB session to response summary
func ConvertToSessionRead(session *dbEntity.PracticeSession) httpEntity.SessionRead {
	read := httpEntity.SessionRead{
		ID:             session.ID.String(),
		StudentID:      session.StudentID.String(),
		Collection:     session.CollectionName,
		Status:         session.Status,
		TotalQuestions: session.TotalQuestions,
		AnsweredCount:  session.AnsweredCount,
		CorrectCount:   session.CorrectCount,
		CreatedAt:      session.CreatedAt.Format(time.RFC3339),
	}
	if session.SubjectID != nil {
		read.SubjectID = session.SubjectID.String()
	}
	if session.CompletedAt != nil {
		read.CompletedAt = session.CompletedAt.Format(time.RFC3339)
	}
	if session.AnsweredCount > 0 {
		read.Accuracy = float64(session.CorrectCount) / float64(session.AnsweredCount)
	}
	return read
}

// ConvertToAnswerRead - Convert DB answer to response format
func ConvertToAnswerRead(answer *dbEntity.PracticeAnswer) httpEntity.AnswerRead {
	return httpEntity.AnswerRead{
		QuestionText:     answer.QuestionText,
		QuestionType:     answer.QuestionType,
		StudentAnswer:    answer.StudentAnswer,
		IsHandwritten:    answer.IsHandwritten,
		OCRText:          answer.OCRText,
		IsCorrect:        answer.IsCorrect,
		Score:            answer.Score,
		Feedback:         answer.Feedback,
		CorrectAnswer:    answer.CorrectAnswer,
		SourceReferences: ParseSourceReferences(answer.SourceRefs),
		AnsweredAt:       answer.CreatedAt.Format(time.RFC3339),
	}
}

// ConvertToSessionDetail - Convert DB session with answers to full detail
func ConvertToSessionDetail(session *dbEntity.PracticeSession, answers []dbEntity.PracticeAnswer) httpEntity.SessionDetail {
	detail := httpEntity.SessionDetail{
		SessionRead: ConvertToSessionRead(session),
		Answers:     make([]httpEntity.AnswerRead, 0, len(answers)),
	}
	for i := range answers {
		detail.Answers = append(detail.Answers, ConvertToAnswerRead(&answers[i]))
	}
	return detail
}

// ConvertToProgressRead - Convert DB progress row to response format
func ConvertToProgressRead(progress *dbEntity.Progress) httpEntity.ProgressRead {
	read := httpEntity.ProgressRead{
		TopicID:        progress.TopicID.String(),
		TotalCorrect:   progress.TotalCorrect,
		TotalQuestions: progress.TotalQuestions,
		Accuracy:       progress.Accuracy,
		AttemptCount:   progress.AttemptCount,
	}
	if progress.Topic != nil {
		read.TopicName = progress.Topic.Name
		read.Subject = progress.Topic.Subject
	}
	if progress.LastAttemptedAt != nil {
		read.LastAttemptedAt = progress.LastAttemptedAt.Format(time.RFC3339)
	}
	return read
}

// ConvertToChatSessionRead - Convert DB chat session to response format
func ConvertToChatSessionRead(session *dbEntity.ChatSession) httpEntity.ChatSessionRead {
	return httpEntity.ChatSessionRead{
		ID:         session.ID.String(),
		UserID:     session.UserID.String(),
		Collection: session.Collection,
		Title:      session.Title,
		CreatedAt:  session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  session.UpdatedAt.Format(time.RFC3339),
	}
}

// ConvertToChatHistoryItem - Convert DB chat message to response format
func ConvertToChatHistoryItem(message *dbEntity.ChatMessage) httpEntity.ChatHistoryItem {
	return httpEntity.ChatHistoryItem{
		Role:      message.Role,
		Message:   message.Content,
		Sources:   ParseSourceReferences(message.SourcesJSON),
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
	}
}
