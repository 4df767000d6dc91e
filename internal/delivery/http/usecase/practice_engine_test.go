package usecase

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	internalEntity "github.com/pastpaper/pastpaper-be/internal/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

// ── In-memory fakes ──────────────────────────────────────────────────────────

type fakePracticeRepo struct {
	sessions  map[uuid.UUID]internalEntity.PracticeSession
	answers   []internalEntity.PracticeAnswer
	questions map[uuid.UUID]internalEntity.Question
	subjects  map[uuid.UUID]internalEntity.Subject
	documents map[uuid.UUID]internalEntity.Document
}

func newFakePracticeRepo() *fakePracticeRepo {
	return &fakePracticeRepo{
		sessions:  map[uuid.UUID]internalEntity.PracticeSession{},
		questions: map[uuid.UUID]internalEntity.Question{},
		subjects:  map[uuid.UUID]internalEntity.Subject{},
		documents: map[uuid.UUID]internalEntity.Document{},
	}
}

func (r *fakePracticeRepo) CreateSession(_ *gorm.DB, session *internalEntity.PracticeSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakePracticeRepo) FindSessionByID(_ *gorm.DB, id uuid.UUID) (*internalEntity.PracticeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &session, nil
}

func (r *fakePracticeRepo) FindSessionsByStudentID(_ *gorm.DB, studentID uuid.UUID, _ int) ([]internalEntity.PracticeSession, error) {
	var out []internalEntity.PracticeSession
	for _, session := range r.sessions {
		if session.StudentID == studentID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakePracticeRepo) UpdateSession(_ *gorm.DB, session *internalEntity.PracticeSession) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakePracticeRepo) CreateAnswer(_ *gorm.DB, answer *internalEntity.PracticeAnswer) error {
	if answer.ID == uuid.Nil {
		answer.ID = uuid.New()
	}
	r.answers = append(r.answers, *answer)
	return nil
}

func (r *fakePracticeRepo) FindAnswersBySessionID(_ *gorm.DB, sessionID uuid.UUID) ([]internalEntity.PracticeAnswer, error) {
	var out []internalEntity.PracticeAnswer
	for _, answer := range r.answers {
		if answer.SessionID == sessionID {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (r *fakePracticeRepo) FindDocumentsByFilenames(_ *gorm.DB, filenames []string) ([]internalEntity.Document, error) {
	wanted := map[string]bool{}
	for _, name := range filenames {
		wanted[name] = true
	}
	var out []internalEntity.Document
	for _, document := range r.documents {
		if wanted[document.Filename] {
			out = append(out, document)
		}
	}
	return out, nil
}

func (r *fakePracticeRepo) FindRandomQuestions(_ *gorm.DB, documentIDs []uuid.UUID, questionTypes []string, excludeIDs []uuid.UUID, limit int) ([]internalEntity.Question, error) {
	excluded := map[uuid.UUID]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	inScope := map[uuid.UUID]bool{}
	for _, id := range documentIDs {
		inScope[id] = true
	}
	typeAllowed := map[string]bool{}
	for _, questionType := range questionTypes {
		typeAllowed[questionType] = true
	}
	var out []internalEntity.Question
	for _, question := range r.questions {
		if excluded[question.ID] || !inScope[question.DocumentID] {
			continue
		}
		if len(typeAllowed) > 0 && !typeAllowed[question.QuestionType] {
			continue
		}
		out = append(out, question)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakePracticeRepo) FindQuestionByID(_ *gorm.DB, id uuid.UUID) (*internalEntity.Question, error) {
	question, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &question, nil
}

func (r *fakePracticeRepo) FindSubjectByID(_ *gorm.DB, id uuid.UUID) (*internalEntity.Subject, error) {
	subject, ok := r.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &subject, nil
}

func (r *fakePracticeRepo) FindDocumentByID(_ *gorm.DB, id uuid.UUID) (*internalEntity.Document, error) {
	document, ok := r.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &document, nil
}

func (r *fakePracticeRepo) FindIngestedDocumentsBySubjectID(_ *gorm.DB, subjectID uuid.UUID) ([]internalEntity.Document, error) {
	var out []internalEntity.Document
	for _, document := range r.documents {
		if document.SubjectID != nil && *document.SubjectID == subjectID && document.IngestionStatus == "completed" {
			out = append(out, document)
		}
	}
	return out, nil
}

func (r *fakePracticeRepo) FindIngestedDocumentsByCollection(_ *gorm.DB, collection string) ([]internalEntity.Document, error) {
	var out []internalEntity.Document
	for _, document := range r.documents {
		if document.CollectionName == collection && document.IngestionStatus == "completed" {
			out = append(out, document)
		}
	}
	return out, nil
}

type fakeProgressRepo struct {
	rows   map[string]internalEntity.Progress
	topics map[string]internalEntity.Topic
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: map[string]internalEntity.Progress{}, topics: map[string]internalEntity.Topic{}}
}

func progressKey(studentID, topicID uuid.UUID) string {
	return studentID.String() + "/" + topicID.String()
}

func (r *fakeProgressRepo) FindByStudentAndTopic(_ *gorm.DB, studentID, topicID uuid.UUID) (*internalEntity.Progress, error) {
	row, ok := r.rows[progressKey(studentID, topicID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *fakeProgressRepo) Save(_ *gorm.DB, progress *internalEntity.Progress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	r.rows[progressKey(progress.StudentID, progress.TopicID)] = *progress
	return nil
}

func (r *fakeProgressRepo) FindByStudentID(_ *gorm.DB, studentID uuid.UUID) ([]internalEntity.Progress, error) {
	var out []internalEntity.Progress
	for _, row := range r.rows {
		if row.StudentID == studentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) FindOrCreateTopic(_ *gorm.DB, subject, name string) (*internalEntity.Topic, error) {
	key := subject + "/" + name
	if topic, ok := r.topics[key]; ok {
		return &topic, nil
	}
	topic := internalEntity.Topic{ID: uuid.New(), Subject: subject, Name: name}
	r.topics[key] = topic
	return &topic, nil
}

// scriptedGrader returns pre-programmed results in order.
type scriptedGrader struct {
	results []GradeResult
	calls   int
}

func (g *scriptedGrader) Grade(_ context.Context, _ GradeInput) *GradeResult {
	result := g.results[g.calls%len(g.results)]
	g.calls++
	return &result
}

func verdict(correct bool) GradeResult {
	score := 0.0
	if correct {
		score = 1.0
	}
	return GradeResult{IsCorrect: &correct, Score: score}
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

type engineFixture struct {
	repo      *fakePracticeRepo
	progress  *fakeProgressRepo
	usecase   PracticeUsecase
	studentID uuid.UUID
	subjectID uuid.UUID
	docID     uuid.UUID
}

func newEngineFixture(t *testing.T, grader Grader) *engineFixture {
	t.Helper()
	repo := newFakePracticeRepo()
	progress := newFakeProgressRepo()

	subjectID := uuid.New()
	repo.subjects[subjectID] = internalEntity.Subject{ID: subjectID, Name: "Geography", Level: "P6"}

	docID := uuid.New()
	repo.documents[docID] = internalEntity.Document{
		ID:              docID,
		Filename:        "P6_Geography_2023.pdf",
		SubjectID:       &subjectID,
		CollectionName:  "P6_Geography",
		IngestionStatus: "completed",
	}

	return &engineFixture{
		repo:     repo,
		progress: progress,
		usecase: NewPracticeUsecase(PracticeConfig{
			Repository:   repo,
			ProgressRepo: progress,
			Grader:       grader,
			Logger:       newTestLogger(),
			Rand:         rand.New(rand.NewSource(1)),
		}),
		studentID: uuid.New(),
		subjectID: subjectID,
		docID:     docID,
	}
}

func (f *engineFixture) addPoolQuestion(text, questionType, correctAnswer string) uuid.UUID {
	id := uuid.New()
	f.repo.questions[id] = internalEntity.Question{
		ID:            id,
		Text:          text,
		QuestionType:  questionType,
		CorrectAnswer: correctAnswer,
		DocumentID:    f.docID,
	}
	return id
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestKigaliEndToEnd(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", session.Status)

	sessionID := uuid.MustParse(session.ID)
	question, err := f.usecase.NextQuestion(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, questionID.String(), question.QuestionID)
	assert.Equal(t, 1, question.Number)

	result, err := f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: question.QuestionID,
		Answer:     "kigali",
	})
	require.NoError(t, err)
	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, "completed", result.SessionStatus)
	assert.Equal(t, 1, result.AnsweredCount)
	assert.Equal(t, 1, result.CorrectCount)

	detail, err := f.usecase.GetSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "completed", detail.Status)
	assert.NotEmpty(t, detail.CompletedAt)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, "kigali", detail.Answers[0].StudentAnswer)
}

func TestAnswerOnCompletedSessionFailsWithInvalidState(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	require.NoError(t, err)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAnsweredCountNeverExceedsQuota(t *testing.T) {
	grader := &scriptedGrader{results: []GradeResult{verdict(true)}}
	f := newEngineFixture(t, grader)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		Collection:   "P6_Geography",
		NumQuestions: 2,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	for i := 0; i < 2; i++ {
		_, err := f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
			QuestionText: "Name one lake in Rwanda.",
			Answer:       "Lake Kivu",
		})
		require.NoError(t, err)
	}

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionText: "Name one lake in Rwanda.",
		Answer:       "Lake Kivu",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	stored := f.repo.sessions[sessionID]
	assert.Equal(t, 2, stored.AnsweredCount)
	assert.Equal(t, "completed", stored.Status)
}

func TestAccuracyAfterMixedAnswers(t *testing.T) {
	grader := &scriptedGrader{results: []GradeResult{verdict(true), verdict(true), verdict(false)}}
	f := newEngineFixture(t, grader)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		Collection:   "P6_Geography",
		NumQuestions: 3,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	for i := 0; i < 3; i++ {
		_, err := f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
			QuestionText: "Name one lake in Rwanda.",
			Answer:       "Lake Kivu",
		})
		require.NoError(t, err)
	}

	detail, err := f.usecase.GetSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.AnsweredCount)
	assert.Equal(t, 2, detail.CorrectCount)
	assert.InDelta(t, 0.6667, detail.Accuracy, 0.001)
}

func TestNextQuestionExhaustedAtQuota(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	require.NoError(t, err)

	_, err = f.usecase.NextQuestion(context.Background(), f.studentID, sessionID)
	assert.ErrorIs(t, err, apperr.ErrExhausted)
}

func TestNextQuestionExhaustedWhenPoolEmptyAndNoBackend(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)

	_, err = f.usecase.NextQuestion(context.Background(), f.studentID, uuid.MustParse(session.ID))
	assert.ErrorIs(t, err, apperr.ErrExhausted)
}

func TestCrossStudentAccessReturnsNotFound(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID: f.subjectID.String(),
	})
	require.NoError(t, err)

	otherStudent := uuid.New()
	_, err = f.usecase.GetSession(context.Background(), otherStudent, uuid.MustParse(session.ID))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartSessionRejectsUningestedDocument(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	pendingID := uuid.New()
	f.repo.documents[pendingID] = internalEntity.Document{
		ID:              pendingID,
		IngestionStatus: "processing",
	}

	_, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		DocumentID: pendingID.String(),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestCompleteAggregatesProgressOnce(t *testing.T) {
	grader := &scriptedGrader{results: []GradeResult{verdict(true), verdict(false)}}
	f := newEngineFixture(t, grader)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 5,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	for i := 0; i < 2; i++ {
		_, err := f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
			QuestionText: "Name one lake in Rwanda.",
			Answer:       "Lake Kivu",
		})
		require.NoError(t, err)
	}

	completed, err := f.usecase.CompleteSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	require.Len(t, f.progress.rows, 1)
	for _, row := range f.progress.rows {
		assert.Equal(t, 1, row.TotalCorrect)
		assert.Equal(t, 2, row.TotalQuestions)
		assert.Equal(t, 1, row.AttemptCount)
		assert.InDelta(t, 0.5, row.Accuracy, 0.0001)
	}

	// Completing again must not double-count.
	_, err = f.usecase.CompleteSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	for _, row := range f.progress.rows {
		assert.Equal(t, 2, row.TotalQuestions)
		assert.Equal(t, 1, row.AttemptCount)
	}
}

func TestImplicitCompletionAggregatesProgress(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	require.NoError(t, err)

	require.Len(t, f.progress.rows, 1)
	for _, row := range f.progress.rows {
		assert.Equal(t, 1, row.TotalCorrect)
		assert.Equal(t, 1, row.TotalQuestions)
	}
}

func TestAbandonStopsSessionWithoutProgress(t *testing.T) {
	grader := &scriptedGrader{results: []GradeResult{verdict(true)}}
	f := newEngineFixture(t, grader)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 5,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionText: "Name one lake in Rwanda.",
		Answer:       "Lake Kivu",
	})
	require.NoError(t, err)

	abandoned, err := f.usecase.AbandonSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "abandoned", abandoned.Status)
	assert.Empty(t, f.progress.rows)

	// Abandoning again is a no-op.
	again, err := f.usecase.AbandonSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "abandoned", again.Status)

	// A finished session cannot be answered or abandoned.
	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionText: "Name one lake in Rwanda.",
		Answer:       "Lake Kivu",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAbandonCompletedSessionRejected(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	require.NoError(t, err)

	_, err = f.usecase.AbandonSession(context.Background(), f.studentID, sessionID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestStartSessionHonoursRequestedQuestionTypes(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	f.addPoolQuestion("Name the largest lake in Rwanda.", "short-answer", "Lake Kivu")
	mcqID := f.addPoolQuestion("Which city is the capital of Rwanda?", "mcq", "B")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:     f.subjectID.String(),
		NumQuestions:  1,
		QuestionTypes: []string{"mcq"},
	})
	require.NoError(t, err)

	question, err := f.usecase.NextQuestion(context.Background(), f.studentID, uuid.MustParse(session.ID))
	require.NoError(t, err)
	assert.Equal(t, mcqID.String(), question.QuestionID)
	assert.Equal(t, "mcq", question.QuestionType)
}

func TestNextQuestionExcludesAnsweredPoolQuestions(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	firstID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")
	secondID := f.addPoolQuestion("Name the largest lake in Rwanda.", "short-answer", "Lake Kivu")

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 2,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	first, err := f.usecase.NextQuestion(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: first.QuestionID,
		Answer:     "whatever",
	})
	require.NoError(t, err)

	second, err := f.usecase.NextQuestion(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.QuestionID, second.QuestionID)
	assert.Contains(t, []string{firstID.String(), secondID.String()}, second.QuestionID)
}

func TestCompleteOnAbandonedSessionRejected(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 5,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.AbandonSession(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)

	_, err = f.usecase.CompleteSession(context.Background(), f.studentID, sessionID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	stored := f.repo.sessions[sessionID]
	assert.Equal(t, "abandoned", stored.Status)
	assert.Empty(t, f.progress.rows)
}

func TestPoolQuestionCarriesDocumentSource(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	page := 3
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")
	question := f.repo.questions[questionID]
	question.SourcePage = &page
	f.repo.questions[questionID] = question

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)

	next, err := f.usecase.NextQuestion(context.Background(), f.studentID, uuid.MustParse(session.ID))
	require.NoError(t, err)
	require.Len(t, next.Sources, 1)
	assert.Equal(t, f.docID.String(), next.Sources[0].DocumentID)
	assert.Equal(t, "P6_Geography_2023.pdf", next.Sources[0].DocumentName)
	assert.Equal(t, "P6_Geography_2023.pdf", next.Sources[0].FileName)
	require.NotNil(t, next.Sources[0].Page)
	assert.Equal(t, 3, *next.Sources[0].Page)
}

func TestSessionLockDroppedWhenSessionEnds(t *testing.T) {
	f := newEngineFixture(t, newOfflineGrader())
	questionID := f.addPoolQuestion("What is the capital city of Rwanda?", "short-answer", "Kigali")
	engine := f.usecase.(*practiceUsecase)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionID: questionID.String(),
		Answer:     "Kigali",
	})
	require.NoError(t, err)
	_, held := engine.locks.Load(sessionID)
	assert.False(t, held)

	abandonable, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID: f.subjectID.String(),
	})
	require.NoError(t, err)
	abandonableID := uuid.MustParse(abandonable.ID)

	_, err = f.usecase.AbandonSession(context.Background(), f.studentID, abandonableID)
	require.NoError(t, err)
	_, held = engine.locks.Load(abandonableID)
	assert.False(t, held)
}

// synthesisStub fakes the retrieval backend while recording the retrieval
// queries and completion prompts it receives.
type synthesisStub struct {
	server          *httptest.Server
	retrieveQueries []string
	prompts         []string
}

func newSynthesisStub(t *testing.T, chunkFile string) *synthesisStub {
	t.Helper()
	stub := &synthesisStub{}
	page := 2
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/retrieve/":
			var req struct {
				Query string `json:"query"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			stub.retrieveQueries = append(stub.retrieveQueries, req.Query)
			_ = json.NewEncoder(w).Encode(rag.RetrieveResult{Results: []rag.Chunk{{
				Content:  "The Nyabarongo is the longest river in Rwanda.",
				Score:    0.9,
				Metadata: rag.ChunkMetadata{FileName: chunkFile, PageNumber: &page},
			}}, Total: 1})
		case "/query/direct":
			var req struct {
				Question string `json:"question"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			stub.prompts = append(stub.prompts, req.Question)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"answer": `{"question": "Which river is the longest in Rwanda?", "question_type": "short-answer", "options": []}`,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	return stub
}

func TestSynthesisScopedToSessionAndTopic(t *testing.T) {
	stub := newSynthesisStub(t, "P6_Geography_2023.pdf")
	defer stub.server.Close()

	f := newEngineFixture(t, newOfflineGrader())
	client := rag.NewClient(stub.server.URL, 5*time.Second, nil, nil, newTestLogger())
	f.usecase = NewPracticeUsecase(PracticeConfig{
		Repository:   f.repo,
		ProgressRepo: f.progress,
		Grader:       newOfflineGrader(),
		Rag:          client,
		Logger:       newTestLogger(),
		Rand:         rand.New(rand.NewSource(1)),
	})

	// An earlier session by the same student must not leak into a new one.
	earlier, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		NumQuestions: 1,
	})
	require.NoError(t, err)
	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, uuid.MustParse(earlier.ID), httpEntity.SubmitAnswerRequest{
		QuestionText: "Name the national park in northern Rwanda.",
		Answer:       "Volcanoes National Park",
	})
	require.NoError(t, err)

	session, err := f.usecase.StartSession(context.Background(), f.studentID, httpEntity.StartSessionRequest{
		SubjectID:    f.subjectID.String(),
		Topic:        "Rivers of Rwanda",
		NumQuestions: 3,
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(session.ID)

	_, err = f.usecase.SubmitAnswer(context.Background(), f.studentID, sessionID, httpEntity.SubmitAnswerRequest{
		QuestionText: "Into which larger river does the Nyabarongo flow?",
		Answer:       "The Akagera",
	})
	require.NoError(t, err)

	next, err := f.usecase.NextQuestion(context.Background(), f.studentID, sessionID)
	require.NoError(t, err)
	assert.Empty(t, next.QuestionID)
	assert.Equal(t, "Which river is the longest in Rwanda?", next.Text)

	require.NotEmpty(t, stub.retrieveQueries)
	assert.Contains(t, stub.retrieveQueries[len(stub.retrieveQueries)-1], "Rivers of Rwanda")

	require.NotEmpty(t, stub.prompts)
	prompt := stub.prompts[len(stub.prompts)-1]
	assert.Contains(t, prompt, "Rivers of Rwanda")
	assert.Contains(t, prompt, "Into which larger river does the Nyabarongo flow?")
	assert.NotContains(t, prompt, "Name the national park in northern Rwanda.")

	// Synthesized questions resolve their chunks back to known documents.
	require.Len(t, next.Sources, 1)
	assert.Equal(t, f.docID.String(), next.Sources[0].DocumentID)
	assert.Equal(t, "P6_Geography_2023.pdf", next.Sources[0].DocumentName)
}
