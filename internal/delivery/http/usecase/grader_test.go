package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalEntity "github.com/pastpaper/pastpaper-be/internal/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newOfflineGrader() Grader {
	return NewGrader(GraderConfig{Logger: newTestLogger()})
}

func TestGradeMCQCaseAndWhitespaceInsensitive(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "mcq",
		StudentAnswer: "b  ",
		CorrectAnswer: "B",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, "exact-mcq", result.Method)
}

func TestGradeMCQWrongLetter(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "mcq",
		StudentAnswer: "C",
		CorrectAnswer: "B",
	})

	require.NotNil(t, result.IsCorrect)
	assert.False(t, *result.IsCorrect)
	assert.Equal(t, 0.0, result.Score)
}

func TestGradeMCQAcceptsLabelledOption(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "mcq",
		StudentAnswer: "b",
		CorrectAnswer: "B) Kigali",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
}

func TestGradeSpellingUnification(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		StudentAnswer: "organization",
		CorrectAnswer: "organisation",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, "normalized", result.Method)
}

func TestGradeTokenSetContainment(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		StudentAnswer: "Food and shelter",
		CorrectAnswer: "Food, Shelter",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, "token-set", result.Method)
}

func TestGradeDisjointAnswersIncorrectWithoutBackend(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		StudentAnswer: "Honesty, Integrity",
		CorrectAnswer: "Understanding, Empathy",
	})

	require.NotNil(t, result.IsCorrect)
	assert.False(t, *result.IsCorrect)
	assert.Equal(t, "text-comparison", result.Method)
}

func TestGradeNoAnswerKey(t *testing.T) {
	result := newOfflineGrader().Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		StudentAnswer: "anything",
	})

	require.NotNil(t, result.IsCorrect)
	assert.False(t, *result.IsCorrect)
	assert.Equal(t, "no-answer-key", result.Method)
}

// backendStub fakes the retrieval backend's /query/direct and /retrieve/
// endpoints with canned payloads.
func backendStub(t *testing.T, directAnswer string, chunks []rag.Chunk) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query/direct":
			_ = json.NewEncoder(w).Encode(map[string]string{"answer": directAnswer})
		case "/retrieve/":
			_ = json.NewEncoder(w).Encode(rag.RetrieveResult{Results: chunks, Total: len(chunks)})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newBackedGrader(t *testing.T, server *httptest.Server) Grader {
	t.Helper()
	client := rag.NewClient(server.URL, 5*time.Second, nil, nil, newTestLogger())
	require.True(t, client.Available())
	return NewGrader(GraderConfig{Rag: client, Logger: newTestLogger()})
}

func TestGradeSemanticVerdict(t *testing.T) {
	server := backendStub(t, `{"correct": true, "reason": "synonym of the expected answer"}`, nil)
	defer server.Close()

	result := newBackedGrader(t, server).Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		QuestionText:  "What do plants release during photosynthesis?",
		StudentAnswer: "they give off O2",
		CorrectAnswer: "oxygen",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, "semantic", result.Method)
	assert.Equal(t, "synonym of the expected answer", result.Feedback)
}

func TestGradeSemanticMalformedJSONNeedsManualReview(t *testing.T) {
	server := backendStub(t, "Sure! The answer looks right to me.", nil)
	defer server.Close()

	result := newBackedGrader(t, server).Grade(context.Background(), GradeInput{
		QuestionType:  "short-answer",
		QuestionText:  "What do plants release during photosynthesis?",
		StudentAnswer: "sunlight",
		CorrectAnswer: "oxygen",
	})

	assert.Nil(t, result.IsCorrect)
	assert.Equal(t, manualReviewFeedback, result.Feedback)
}

func TestGradeContextualPartialCredit(t *testing.T) {
	page := 4
	chunks := []rag.Chunk{{
		Content:  "Photosynthesis releases oxygen as a by-product.",
		Score:    0.92,
		Metadata: rag.ChunkMetadata{FileName: "P6_Science_2023.pdf", PageNumber: &page},
	}}
	server := backendStub(t, `{"is_correct": true, "score": 0.8, "feedback": "Good, mention the by-product explicitly."}`, chunks)
	defer server.Close()

	result := newBackedGrader(t, server).Grade(context.Background(), GradeInput{
		QuestionType:  "essay",
		QuestionText:  "Explain what photosynthesis produces.",
		StudentAnswer: "It makes food for the plant and gives out oxygen.",
		CorrectAnswer: "glucose and oxygen",
		Collection:    "P6_Science",
	})

	require.NotNil(t, result.IsCorrect)
	assert.True(t, *result.IsCorrect)
	assert.Equal(t, 0.8, result.Score)
	assert.Equal(t, "contextual", result.Method)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "P6_Science_2023.pdf", result.Sources[0].FileName)
}

func TestGradeContextualResolvesDocumentSources(t *testing.T) {
	repo := newFakePracticeRepo()
	docID := uuid.New()
	repo.documents[docID] = internalEntity.Document{
		ID:              docID,
		Filename:        "P6_Science_2023.pdf",
		CollectionName:  "P6_Science",
		IngestionStatus: "completed",
	}

	page := 4
	chunks := []rag.Chunk{{
		Content:  "Photosynthesis releases oxygen as a by-product.",
		Score:    0.92,
		Metadata: rag.ChunkMetadata{FileName: "P6_Science_2023.pdf", PageNumber: &page},
	}}
	server := backendStub(t, `{"is_correct": true, "score": 1.0, "feedback": "Correct."}`, chunks)
	defer server.Close()

	client := rag.NewClient(server.URL, 5*time.Second, nil, nil, newTestLogger())
	grader := NewGrader(GraderConfig{Rag: client, Repository: repo, Logger: newTestLogger()})

	result := grader.Grade(context.Background(), GradeInput{
		QuestionType:  "essay",
		QuestionText:  "Explain what photosynthesis produces.",
		StudentAnswer: "Glucose and oxygen.",
		CorrectAnswer: "glucose and oxygen",
		Collection:    "P6_Science",
	})

	require.Len(t, result.Sources, 1)
	assert.Equal(t, docID.String(), result.Sources[0].DocumentID)
	assert.Equal(t, "P6_Science_2023.pdf", result.Sources[0].DocumentName)
	assert.Equal(t, "P6_Science_2023.pdf", result.Sources[0].FileName)
}
