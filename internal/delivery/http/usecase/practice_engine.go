package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	internalEntity "github.com/pastpaper/pastpaper-be/internal/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
	"github.com/pastpaper/pastpaper-be/internal/pkg/mapper"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

const (
	defaultQuestionQuota = 5
	maxQuestionQuota     = 20
	recentQuestionWindow = 10
)

// retrievalSeeds diversify which chunks back a synthesized question.
var retrievalSeeds = []string{
	"key definitions and concepts",
	"important facts and figures",
	"causes and effects",
	"processes and steps",
	"examples and applications",
	"comparisons and differences",
}

var questionTypeTemplates = map[string]string{
	string(httpEntity.QuestionTypeShortAnswer):    "Write a short-answer question that can be answered in one or two sentences.",
	string(httpEntity.QuestionTypeMCQ):            "Write a multiple-choice question with exactly 4 options labelled A) to D).",
	string(httpEntity.QuestionTypeTrueFalse):      "Write a statement the student must judge as true or false.",
	string(httpEntity.QuestionTypeFillInTheBlank): "Write a sentence with one key term replaced by a blank (_____).",
	string(httpEntity.QuestionTypeEssay):          "Write a question that requires a short explanatory paragraph.",
}

type PracticeUsecase interface {
	StartSession(ctx context.Context, studentID uuid.UUID, req httpEntity.StartSessionRequest) (*httpEntity.SessionRead, error)
	NextQuestion(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.QuestionRead, error)
	SubmitAnswer(ctx context.Context, studentID, sessionID uuid.UUID, req httpEntity.SubmitAnswerRequest) (*httpEntity.AnswerResult, error)
	CompleteSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionRead, error)
	AbandonSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionRead, error)
	GetSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionDetail, error)
	ListSessions(ctx context.Context, studentID uuid.UUID) ([]httpEntity.SessionRead, error)
}

type PracticeConfig struct {
	DB           *gorm.DB
	Repository   repository.PracticeRepository
	ProgressRepo repository.ProgressRepository
	Grader       Grader
	Rag          *rag.Client
	Limiter      *rag.Limiter
	Logger       *logrus.Logger
	Rand         *rand.Rand
}

type practiceUsecase struct {
	cfg PracticeConfig
	rnd *rand.Rand

	// Serializes answer submission per session so the quota invariant holds
	// under concurrent requests from the same student.
	locks sync.Map
}

func NewPracticeUsecase(cfg PracticeConfig) PracticeUsecase {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &practiceUsecase{cfg: cfg, rnd: cfg.Rand}
}

func (u *practiceUsecase) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	lock, _ := u.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// dropSessionLock releases the per-session mutex entry once the session is
// terminal. Requests still queued on the old mutex re-load the session and
// fail the status check, so losing the entry is harmless.
func (u *practiceUsecase) dropSessionLock(sessionID uuid.UUID) {
	u.locks.Delete(sessionID)
}

func (u *practiceUsecase) StartSession(ctx context.Context, studentID uuid.UUID, req httpEntity.StartSessionRequest) (*httpEntity.SessionRead, error) {
	quota := req.NumQuestions
	if quota <= 0 {
		quota = defaultQuestionQuota
	}
	if quota > maxQuestionQuota {
		quota = maxQuestionQuota
	}

	session := &internalEntity.PracticeSession{
		StudentID:      studentID,
		Status:         string(httpEntity.SessionStatusInProgress),
		TotalQuestions: quota,
		CollectionName: strings.TrimSpace(req.Collection),
		Topic:          strings.TrimSpace(req.Topic),
		QuestionTypes:  mapper.EncodeOptions(req.QuestionTypes),
	}

	if req.SubjectID != "" {
		subjectID, err := uuid.Parse(req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid subject id", apperr.ErrNotFound)
		}
		subject, err := u.cfg.Repository.FindSubjectByID(nil, subjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: subject %s", apperr.ErrNotFound, subjectID)
		}
		session.SubjectID = &subject.ID
		if session.CollectionName == "" {
			session.CollectionName = collectionForSubject(subject)
		}
	}

	if req.DocumentID != "" {
		documentID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid document id", apperr.ErrNotFound)
		}
		document, err := u.cfg.Repository.FindDocumentByID(nil, documentID)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, documentID)
		}
		if document.IngestionStatus != "completed" {
			return nil, fmt.Errorf("%w: document %s has not finished ingestion", apperr.ErrInvalidState, documentID)
		}
		session.DocumentID = &document.ID
		if session.CollectionName == "" {
			session.CollectionName = document.CollectionName
		}
	}

	if err := u.cfg.Repository.CreateSession(nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	u.cfg.Logger.Infof("practice session %s started for student %s (quota %d)", session.ID, studentID, quota)
	read := mapper.ConvertToSessionRead(session)
	return &read, nil
}

func (u *practiceUsecase) NextQuestion(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.QuestionRead, error) {
	session, err := u.loadOwnedSession(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AnsweredCount >= session.TotalQuestions {
		return nil, fmt.Errorf("%w: all %d questions answered", apperr.ErrExhausted, session.TotalQuestions)
	}
	if session.Status != string(httpEntity.SessionStatusInProgress) {
		return nil, fmt.Errorf("%w: session is %s", apperr.ErrInvalidState, session.Status)
	}

	answers, err := u.cfg.Repository.FindAnswersBySessionID(nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session answers: %w", err)
	}
	excludeIDs := make([]uuid.UUID, 0, len(answers))
	for _, answer := range answers {
		if answer.QuestionID != nil {
			excludeIDs = append(excludeIDs, *answer.QuestionID)
		}
	}

	questionTypes := mapper.ParseOptions(session.QuestionTypes)

	if question := u.drawPoolQuestion(session, questionTypes, excludeIDs); question != nil {
		var sources []httpEntity.SourceReference
		if document, err := u.cfg.Repository.FindDocumentByID(nil, question.DocumentID); err == nil {
			sources = append(sources, httpEntity.SourceReference{
				DocumentID:   document.ID.String(),
				DocumentName: document.Filename,
				FileName:     document.Filename,
				Page:         question.SourcePage,
			})
		}
		return &httpEntity.QuestionRead{
			SessionID:    session.ID.String(),
			QuestionID:   question.ID.String(),
			Number:       session.AnsweredCount + 1,
			Total:        session.TotalQuestions,
			Text:         question.Text,
			QuestionType: question.QuestionType,
			Options:      mapper.ParseOptions(question.Options),
			Sources:      sources,
		}, nil
	}

	// Steer synthesis away from what this session already asked.
	recentTexts := make([]string, 0, len(answers))
	for _, answer := range answers {
		recentTexts = append(recentTexts, answer.QuestionText)
	}
	if len(recentTexts) > recentQuestionWindow {
		recentTexts = recentTexts[len(recentTexts)-recentQuestionWindow:]
	}

	return u.synthesizeQuestion(ctx, session, questionTypes, recentTexts)
}

// drawPoolQuestion draws uniformly at random from the pinned document's pool,
// or the union of pools across the subject's ingested documents.
func (u *practiceUsecase) drawPoolQuestion(session *internalEntity.PracticeSession, questionTypes []string, excludeIDs []uuid.UUID) *internalEntity.Question {
	var documentIDs []uuid.UUID
	switch {
	case session.DocumentID != nil:
		documentIDs = []uuid.UUID{*session.DocumentID}
	case session.SubjectID != nil:
		documents, err := u.cfg.Repository.FindIngestedDocumentsBySubjectID(nil, *session.SubjectID)
		if err != nil || len(documents) == 0 {
			return nil
		}
		for _, document := range documents {
			documentIDs = append(documentIDs, document.ID)
		}
	case session.CollectionName != "":
		documents, err := u.cfg.Repository.FindIngestedDocumentsByCollection(nil, session.CollectionName)
		if err != nil || len(documents) == 0 {
			return nil
		}
		for _, document := range documents {
			documentIDs = append(documentIDs, document.ID)
		}
	default:
		return nil
	}

	questions, err := u.cfg.Repository.FindRandomQuestions(nil, documentIDs, questionTypes, excludeIDs, 1)
	if err != nil || len(questions) == 0 {
		return nil
	}
	return &questions[0]
}

// synthesizeQuestion asks the retrieval backend for a novel question grounded
// in retrieved chunks, steering away from the session's already-asked texts.
// Synthesized questions are not persisted to the pool and carry no question id.
func (u *practiceUsecase) synthesizeQuestion(ctx context.Context, session *internalEntity.PracticeSession, questionTypes, recentTexts []string) (*httpEntity.QuestionRead, error) {
	if !u.cfg.Rag.Available() || session.CollectionName == "" {
		return nil, fmt.Errorf("%w: question pool is empty and no retrieval backend is configured", apperr.ErrExhausted)
	}
	if !u.cfg.Limiter.Allow(ctx, rag.UserBucket(session.StudentID.String())) {
		return nil, apperr.ErrRateLimited
	}

	seed := retrievalSeeds[u.rnd.Intn(len(retrievalSeeds))]
	questionType := u.pickQuestionType(questionTypes)

	retrievalQuery := seed
	if session.Topic != "" {
		retrievalQuery = session.Topic + ": " + seed
	}
	retrieved, err := u.cfg.Rag.Retrieve(ctx, retrievalQuery, session.CollectionName, 5)
	if err != nil || len(retrieved.Results) == 0 {
		u.cfg.Logger.Warnf("question synthesis retrieval failed for session %s: %v", session.ID, err)
		return nil, fmt.Errorf("%w: no pool question and synthesis yielded nothing", apperr.ErrExhausted)
	}

	contextParts := make([]string, 0, len(retrieved.Results))
	for _, chunk := range retrieved.Results {
		contextParts = append(contextParts, chunk.Content)
	}

	avoidBlock := ""
	if len(recentTexts) > 0 {
		avoidBlock = "\nDo NOT repeat any of these recently asked questions:\n- " + strings.Join(recentTexts, "\n- ") + "\n"
	}
	topicBlock := ""
	if session.Topic != "" {
		topicBlock = fmt.Sprintf("\nThe question must focus on the topic: %s.", session.Topic)
	}

	prompt := fmt.Sprintf(`You are an exam tutor creating one practice question from real exam paper content.

--- Exam Content ---
%s
--- End Exam Content ---

%s
The question must be answerable from the exam content above.%s%s
Respond with ONLY a JSON object:
{"question": "...", "question_type": "%s", "options": ["A) ...","B) ...","C) ...","D) ..."] or []}`,
		strings.Join(contextParts, "\n\n---\n\n"), questionTypeTemplates[questionType], topicBlock, avoidBlock, questionType)

	raw, err := u.cfg.Rag.QueryDirectJSON(ctx, prompt, "")
	if err != nil {
		u.cfg.Logger.Warnf("question synthesis failed for session %s: %v", session.ID, err)
		return nil, fmt.Errorf("%w: no pool question and synthesis yielded nothing", apperr.ErrExhausted)
	}

	var synthesized struct {
		Question     string   `json:"question"`
		QuestionType string   `json:"question_type"`
		Options      []string `json:"options"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &synthesized); err != nil || strings.TrimSpace(synthesized.Question) == "" {
		u.cfg.Logger.Warnf("question synthesis returned unusable output for session %s: %v", session.ID, err)
		return nil, fmt.Errorf("%w: no pool question and synthesis yielded nothing", apperr.ErrExhausted)
	}
	if synthesized.QuestionType == "" {
		synthesized.QuestionType = questionType
	}

	sources := sourcesFromChunks(u.cfg.Repository, retrieved.Results)

	return &httpEntity.QuestionRead{
		SessionID:    session.ID.String(),
		Number:       session.AnsweredCount + 1,
		Total:        session.TotalQuestions,
		Text:         strings.TrimSpace(synthesized.Question),
		QuestionType: synthesized.QuestionType,
		Options:      synthesized.Options,
		Sources:      sources,
	}, nil
}

func (u *practiceUsecase) pickQuestionType(questionTypes []string) string {
	if len(questionTypes) > 0 {
		return questionTypes[u.rnd.Intn(len(questionTypes))]
	}
	allTypes := []string{
		string(httpEntity.QuestionTypeShortAnswer),
		string(httpEntity.QuestionTypeMCQ),
		string(httpEntity.QuestionTypeTrueFalse),
		string(httpEntity.QuestionTypeFillInTheBlank),
		string(httpEntity.QuestionTypeEssay),
	}
	return allTypes[u.rnd.Intn(len(allTypes))]
}

func (u *practiceUsecase) SubmitAnswer(ctx context.Context, studentID, sessionID uuid.UUID, req httpEntity.SubmitAnswerRequest) (*httpEntity.AnswerResult, error) {
	lock := u.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := u.loadOwnedSession(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != string(httpEntity.SessionStatusInProgress) {
		return nil, fmt.Errorf("%w: session is %s", apperr.ErrInvalidState, session.Status)
	}
	if session.AnsweredCount >= session.TotalQuestions {
		return nil, fmt.Errorf("%w: all %d questions answered", apperr.ErrInvalidState, session.TotalQuestions)
	}

	studentAnswer := strings.TrimSpace(req.Answer)
	isHandwritten := false
	ocrText := ""
	if req.AnswerImageBase64 != "" {
		if !u.cfg.Limiter.Allow(ctx, rag.UserBucket(studentID.String())) {
			return nil, apperr.ErrRateLimited
		}
		transcript, err := u.cfg.Rag.OCR(ctx, req.AnswerImageBase64,
			"Transcribe this handwritten exam answer exactly as written.")
		if err != nil {
			return nil, fmt.Errorf("%w: handwriting transcription failed", apperr.ErrBackendUnavailable)
		}
		isHandwritten = true
		ocrText = strings.TrimSpace(transcript)
		studentAnswer = ocrText
	}
	if studentAnswer == "" {
		return nil, fmt.Errorf("%w: no answer text to grade", apperr.ErrUngradable)
	}

	input := GradeInput{
		StudentAnswer: studentAnswer,
		Collection:    session.CollectionName,
		BucketKey:     rag.UserBucket(studentID.String()),
	}
	var questionID *uuid.UUID
	if req.QuestionID != "" {
		id, err := uuid.Parse(req.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid question id", apperr.ErrNotFound)
		}
		question, err := u.cfg.Repository.FindQuestionByID(nil, id)
		if err != nil {
			return nil, fmt.Errorf("%w: question %s", apperr.ErrNotFound, id)
		}
		questionID = &question.ID
		input.QuestionText = question.Text
		input.QuestionType = question.QuestionType
		input.CorrectAnswer = question.CorrectAnswer
	} else {
		input.QuestionText = strings.TrimSpace(req.QuestionText)
		input.QuestionType = req.QuestionType
		if input.QuestionType == "" {
			input.QuestionType = string(httpEntity.QuestionTypeShortAnswer)
		}
		if input.QuestionText == "" {
			return nil, fmt.Errorf("%w: question_text is required for synthesized questions", apperr.ErrNotFound)
		}
	}

	graded := u.cfg.Grader.Grade(ctx, input)

	answer := &internalEntity.PracticeAnswer{
		SessionID:     session.ID,
		QuestionID:    questionID,
		QuestionText:  input.QuestionText,
		QuestionType:  input.QuestionType,
		StudentAnswer: studentAnswer,
		IsHandwritten: isHandwritten,
		OCRText:       ocrText,
		IsCorrect:     graded.IsCorrect,
		Score:         graded.Score,
		Feedback:      graded.Feedback,
		CorrectAnswer: input.CorrectAnswer,
		SourceRefs:    mapper.EncodeSourceReferences(graded.Sources),
	}

	session.AnsweredCount++
	if graded.IsCorrect != nil && *graded.IsCorrect {
		session.CorrectCount++
	}
	completed := session.AnsweredCount >= session.TotalQuestions
	if completed {
		now := time.Now()
		session.Status = string(httpEntity.SessionStatusCompleted)
		session.CompletedAt = &now
	}

	persist := func(tx *gorm.DB) error {
		if err := u.cfg.Repository.CreateAnswer(tx, answer); err != nil {
			return err
		}
		return u.cfg.Repository.UpdateSession(tx, session)
	}
	if u.cfg.DB != nil {
		err = u.cfg.DB.Transaction(persist)
	} else {
		err = persist(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	if completed {
		u.aggregateProgress(session)
		u.dropSessionLock(sessionID)
	}

	return &httpEntity.AnswerResult{
		SessionID:        session.ID.String(),
		IsCorrect:        graded.IsCorrect,
		Score:            graded.Score,
		Feedback:         graded.Feedback,
		CorrectAnswer:    input.CorrectAnswer,
		OCRText:          ocrText,
		SourceReferences: graded.Sources,
		AnsweredCount:    session.AnsweredCount,
		CorrectCount:     session.CorrectCount,
		TotalQuestions:   session.TotalQuestions,
		SessionStatus:    session.Status,
	}, nil
}

func (u *practiceUsecase) CompleteSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionRead, error) {
	lock := u.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := u.loadOwnedSession(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == string(httpEntity.SessionStatusAbandoned) {
		return nil, fmt.Errorf("%w: session is abandoned", apperr.ErrInvalidState)
	}

	wasInProgress := session.Status == string(httpEntity.SessionStatusInProgress)
	now := time.Now()
	session.Status = string(httpEntity.SessionStatusCompleted)
	session.CompletedAt = &now
	if err := u.cfg.Repository.UpdateSession(nil, session); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	// Aggregate only on the transition out of IN_PROGRESS so that repeated
	// complete calls never double-count.
	if wasInProgress {
		u.aggregateProgress(session)
	}
	u.dropSessionLock(sessionID)

	read := mapper.ConvertToSessionRead(session)
	return &read, nil
}

// AbandonSession marks a running session as given up. No progress is
// aggregated from an abandoned session. Abandoning twice is a no-op;
// abandoning a completed session is rejected.
func (u *practiceUsecase) AbandonSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionRead, error) {
	lock := u.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := u.loadOwnedSession(studentID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case string(httpEntity.SessionStatusAbandoned):
		read := mapper.ConvertToSessionRead(session)
		return &read, nil
	case string(httpEntity.SessionStatusCompleted):
		return nil, fmt.Errorf("%w: session is already completed", apperr.ErrInvalidState)
	}

	now := time.Now()
	session.Status = string(httpEntity.SessionStatusAbandoned)
	session.CompletedAt = &now
	if err := u.cfg.Repository.UpdateSession(nil, session); err != nil {
		return nil, fmt.Errorf("failed to abandon session: %w", err)
	}
	u.dropSessionLock(sessionID)

	read := mapper.ConvertToSessionRead(session)
	return &read, nil
}

func (u *practiceUsecase) GetSession(ctx context.Context, studentID, sessionID uuid.UUID) (*httpEntity.SessionDetail, error) {
	session, err := u.loadOwnedSession(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := u.cfg.Repository.FindAnswersBySessionID(nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session answers: %w", err)
	}
	detail := mapper.ConvertToSessionDetail(session, answers)
	return &detail, nil
}

func (u *practiceUsecase) ListSessions(ctx context.Context, studentID uuid.UUID) ([]httpEntity.SessionRead, error) {
	sessions, err := u.cfg.Repository.FindSessionsByStudentID(nil, studentID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	reads := make([]httpEntity.SessionRead, 0, len(sessions))
	for i := range sessions {
		reads = append(reads, mapper.ConvertToSessionRead(&sessions[i]))
	}
	return reads, nil
}

// loadOwnedSession hides other students' sessions behind NotFound so that
// session ids cannot be probed for existence.
func (u *practiceUsecase) loadOwnedSession(studentID, sessionID uuid.UUID) (*internalEntity.PracticeSession, error) {
	session, err := u.cfg.Repository.FindSessionByID(nil, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s", apperr.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.StudentID != studentID {
		return nil, fmt.Errorf("%w: session %s", apperr.ErrNotFound, sessionID)
	}
	return session, nil
}

// ── Progress aggregation ─────────────────────────────────────────────────────

// aggregateProgress folds a finished session's answers into the per-topic
// mastery counters. Answers bucket by the pool question's topic when present,
// else a fallback topic named after the subject. Runs once per session, on
// the transition to COMPLETED.
func (u *practiceUsecase) aggregateProgress(session *internalEntity.PracticeSession) {
	answers, err := u.cfg.Repository.FindAnswersBySessionID(nil, session.ID)
	if err != nil || len(answers) == 0 {
		return
	}

	fallbackSubject, fallbackName := u.fallbackTopic(session)

	type bucket struct {
		correct int
		total   int
	}
	buckets := make(map[uuid.UUID]*bucket)

	for _, answer := range answers {
		topicID := u.resolveTopicID(answer, fallbackSubject, fallbackName)
		if topicID == uuid.Nil {
			continue
		}
		b, ok := buckets[topicID]
		if !ok {
			b = &bucket{}
			buckets[topicID] = b
		}
		b.total++
		if answer.IsCorrect != nil && *answer.IsCorrect {
			b.correct++
		}
	}

	now := time.Now()
	for topicID, b := range buckets {
		progress, err := u.cfg.ProgressRepo.FindByStudentAndTopic(nil, session.StudentID, topicID)
		if err != nil {
			progress = &internalEntity.Progress{StudentID: session.StudentID, TopicID: topicID}
		}
		progress.TotalCorrect += b.correct
		progress.TotalQuestions += b.total
		progress.AttemptCount++
		progress.Accuracy = float64(progress.TotalCorrect) / float64(progress.TotalQuestions)
		progress.LastAttemptedAt = &now
		if err := u.cfg.ProgressRepo.Save(nil, progress); err != nil {
			u.cfg.Logger.Warnf("failed to save progress for topic %s: %v", topicID, err)
		}
	}

	u.cfg.Logger.Infof("progress aggregated for session %s across %d topics", session.ID, len(buckets))
}

func (u *practiceUsecase) fallbackTopic(session *internalEntity.PracticeSession) (subject, name string) {
	if session.SubjectID != nil {
		if s, err := u.cfg.Repository.FindSubjectByID(nil, *session.SubjectID); err == nil {
			return s.Name, s.Name
		}
	}
	if session.CollectionName != "" {
		return session.CollectionName, session.CollectionName
	}
	return "General", "General"
}

func (u *practiceUsecase) resolveTopicID(answer internalEntity.PracticeAnswer, fallbackSubject, fallbackName string) uuid.UUID {
	if answer.QuestionID != nil {
		if question, err := u.cfg.Repository.FindQuestionByID(nil, *answer.QuestionID); err == nil && question.TopicID != nil {
			return *question.TopicID
		}
	}
	topic, err := u.cfg.ProgressRepo.FindOrCreateTopic(nil, fallbackSubject, fallbackName)
	if err != nil {
		return uuid.Nil
	}
	return topic.ID
}

func collectionForSubject(subject *internalEntity.Subject) string {
	name := strings.ReplaceAll(strings.TrimSpace(subject.Name), " ", "_")
	return subject.Level + "_" + name
}
