package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
	"github.com/pastpaper/pastpaper-be/internal/pkg/textmatch"
)

const manualReviewFeedback = "Your answer has been recorded and needs manual review."

type GradeInput struct {
	QuestionText  string
	QuestionType  string
	StudentAnswer string
	CorrectAnswer string // empty when no canonical answer is known
	Collection    string // empty when no retrievable context exists
	BucketKey     string // rate-limit bucket for LLM-backed tiers
}

type GradeResult struct {
	IsCorrect *bool   // nil means the answer could not be graded
	Score     float64 // partial credit in [0, 1]
	Feedback  string
	Method    string
	Sources   []httpEntity.SourceReference
}

type Grader interface {
	Grade(ctx context.Context, in GradeInput) *GradeResult
}

type GraderConfig struct {
	Rag        *rag.Client
	Limiter    *rag.Limiter
	Repository repository.PracticeRepository // resolves chunk filenames to documents; may be nil
	Logger     *logrus.Logger
	TopK       int
}

type tierVerdict int

const (
	verdictCorrect tierVerdict = iota
	verdictIncorrect
	verdictUnknown // definitive "cannot grade", stop and hand off to manual review
	verdictPass    // no confident verdict, fall through to the next tier
)

type tierOutcome struct {
	verdict tierVerdict
	reason  string
}

// gradingTier is one strategy in the pipeline. Tiers run in a fixed order and
// the first one that returns anything other than verdictPass wins.
type gradingTier struct {
	name string
	eval func(ctx context.Context, in *GradeInput) tierOutcome
}

type grader struct {
	cfg   GraderConfig
	tiers []gradingTier
}

func NewGrader(cfg GraderConfig) Grader {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	g := &grader{cfg: cfg}
	g.tiers = []gradingTier{
		{name: "exact-mcq", eval: g.evalExactMCQ},
		{name: "normalized", eval: g.evalNormalized},
		{name: "token-set", eval: g.evalTokenSet},
		{name: "semantic", eval: g.evalSemantic},
		{name: "text-comparison", eval: g.evalTextComparison},
	}
	return g
}

// Grade runs the tiered pipeline. Open-format answers with a retrieval
// collection are first graded contextually (retrieved chunks + LLM partial
// credit); everything else, and every contextual failure with a known correct
// answer, walks the ordered tier list.
func (g *grader) Grade(ctx context.Context, in GradeInput) *GradeResult {
	in.StudentAnswer = strings.TrimSpace(in.StudentAnswer)

	if g.useContextualGrading(&in) {
		if result := g.gradeContextual(ctx, &in); result != nil {
			return result
		}
		if in.CorrectAnswer == "" {
			// Nothing to compare against and the LLM path failed.
			return &GradeResult{Score: 0, Feedback: manualReviewFeedback, Method: "manual-review"}
		}
	}

	if in.CorrectAnswer == "" {
		incorrect := false
		return &GradeResult{
			IsCorrect: &incorrect,
			Score:     0,
			Feedback:  "No answer key is available for this question.",
			Method:    "no-answer-key",
		}
	}

	return g.walkTiers(ctx, &in)
}

func (g *grader) walkTiers(ctx context.Context, in *GradeInput) *GradeResult {
	for _, tier := range g.tiers {
		outcome := tier.eval(ctx, in)
		switch outcome.verdict {
		case verdictCorrect:
			correct := true
			feedback := outcome.reason
			if feedback == "" {
				feedback = "Correct! Well done."
			}
			return &GradeResult{IsCorrect: &correct, Score: 1, Feedback: feedback, Method: tier.name}
		case verdictIncorrect:
			incorrect := false
			feedback := outcome.reason
			if feedback == "" {
				feedback = fmt.Sprintf("Not quite. The expected answer is: %s", in.CorrectAnswer)
			}
			return &GradeResult{IsCorrect: &incorrect, Score: 0, Feedback: feedback, Method: tier.name}
		case verdictUnknown:
			return &GradeResult{Score: 0, Feedback: manualReviewFeedback, Method: tier.name}
		}
	}
	return &GradeResult{Score: 0, Feedback: manualReviewFeedback, Method: "manual-review"}
}

func (g *grader) useContextualGrading(in *GradeInput) bool {
	if in.Collection == "" || !g.cfg.Rag.Available() {
		return false
	}
	switch httpEntity.QuestionType(in.QuestionType) {
	case httpEntity.QuestionTypeMCQ, httpEntity.QuestionTypeTrueFalse:
		return false
	}
	return true
}

// ── Tier implementations ─────────────────────────────────────────────────────

// MCQ answers are graded definitively on the chosen letter or option text;
// no fuzzier tier applies to them.
func (g *grader) evalExactMCQ(_ context.Context, in *GradeInput) tierOutcome {
	switch httpEntity.QuestionType(in.QuestionType) {
	case httpEntity.QuestionTypeMCQ, httpEntity.QuestionTypeTrueFalse:
	default:
		return tierOutcome{verdict: verdictPass}
	}

	student := strings.TrimSpace(in.StudentAnswer)
	correct := strings.TrimSpace(in.CorrectAnswer)
	if strings.EqualFold(student, correct) {
		return tierOutcome{verdict: verdictCorrect}
	}
	// Accept "B" against "B) Kigali" and vice versa.
	if len(student) == 1 && strings.EqualFold(student, optionLetter(correct)) {
		return tierOutcome{verdict: verdictCorrect}
	}
	if len(correct) == 1 && strings.EqualFold(optionLetter(student), correct) {
		return tierOutcome{verdict: verdictCorrect}
	}
	return tierOutcome{verdict: verdictIncorrect}
}

func optionLetter(option string) string {
	option = strings.TrimSpace(option)
	if len(option) >= 2 && (option[1] == ')' || option[1] == '.') {
		return option[:1]
	}
	return ""
}

func (g *grader) evalNormalized(_ context.Context, in *GradeInput) tierOutcome {
	if textmatch.NormalizedMatch(in.StudentAnswer, in.CorrectAnswer) {
		return tierOutcome{verdict: verdictCorrect}
	}
	return tierOutcome{verdict: verdictPass}
}

func (g *grader) evalTokenSet(_ context.Context, in *GradeInput) tierOutcome {
	if textmatch.TokenSetMatch(in.StudentAnswer, in.CorrectAnswer) {
		return tierOutcome{verdict: verdictCorrect}
	}
	return tierOutcome{verdict: verdictPass}
}

// evalSemantic asks the LLM for a strict JSON verdict. A malformed reply or a
// failed call yields verdictUnknown, never verdictIncorrect.
func (g *grader) evalSemantic(ctx context.Context, in *GradeInput) tierOutcome {
	if !g.cfg.Rag.Available() {
		return tierOutcome{verdict: verdictPass}
	}
	if in.BucketKey != "" && !g.cfg.Limiter.Allow(ctx, in.BucketKey) {
		g.cfg.Logger.Infof("semantic grading skipped, rate limited: %s", in.BucketKey)
		return tierOutcome{verdict: verdictPass}
	}

	prompt := fmt.Sprintf(`You are grading a student's exam answer.

Question: %s
Expected answer: %s
Student answer: %s

Grading rules:
- Accept spelling variations, synonyms and equivalent phrasings.
- If the expected answer lists multiple items, accept the student answer when it covers most of them.
- Reject answers that are factually wrong or off-topic.

Respond with ONLY a JSON object: {"correct": true or false, "reason": "one short sentence"}`,
		in.QuestionText, in.CorrectAnswer, in.StudentAnswer)

	raw, err := g.cfg.Rag.QueryDirectJSON(ctx, prompt, "")
	if err != nil {
		g.cfg.Logger.Warnf("semantic grading call failed: %v", err)
		return tierOutcome{verdict: verdictUnknown}
	}

	var verdict struct {
		Correct bool   `json:"correct"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &verdict); err != nil {
		g.cfg.Logger.Warnf("semantic grading returned invalid JSON: %v", err)
		return tierOutcome{verdict: verdictUnknown}
	}
	if verdict.Correct {
		return tierOutcome{verdict: verdictCorrect, reason: verdict.Reason}
	}
	return tierOutcome{verdict: verdictIncorrect, reason: verdict.Reason}
}

// evalTextComparison is the deterministic last resort when no semantic tier
// ran: the fuzzy tiers above already missed, so the answer is incorrect.
func (g *grader) evalTextComparison(_ context.Context, in *GradeInput) tierOutcome {
	return tierOutcome{verdict: verdictIncorrect}
}

// ── Contextual (practice-mode) grading ───────────────────────────────────────

// gradeContextual retrieves supporting chunks and asks the LLM for a verdict,
// a 0.0-1.0 partial-credit score and feedback. Returns nil when the LLM path
// is unavailable so the caller can fall back to text comparison.
func (g *grader) gradeContextual(ctx context.Context, in *GradeInput) *GradeResult {
	if in.BucketKey != "" && !g.cfg.Limiter.Allow(ctx, in.BucketKey) {
		g.cfg.Logger.Infof("contextual grading skipped, rate limited: %s", in.BucketKey)
		return nil
	}

	retrievalQuery := in.QuestionText
	if in.CorrectAnswer != "" {
		retrievalQuery += " " + in.CorrectAnswer
	}
	retrieved, err := g.cfg.Rag.Retrieve(ctx, retrievalQuery, in.Collection, g.cfg.TopK)
	if err != nil {
		g.cfg.Logger.Warnf("contextual grading retrieval failed: %v", err)
		return nil
	}

	contextParts := make([]string, 0, len(retrieved.Results))
	for _, chunk := range retrieved.Results {
		contextParts = append(contextParts, chunk.Content)
	}

	expected := in.CorrectAnswer
	if expected == "" {
		expected = "(not provided — judge against the exam content below)"
	}
	prompt := fmt.Sprintf(`You are grading a student's exam answer using real exam paper content.

--- Exam Content ---
%s
--- End Exam Content ---

Question: %s
Expected answer: %s
Student answer: %s

Grade the student answer against the exam content. Award partial credit for
partially correct answers. Respond with ONLY a JSON object:
{"is_correct": true or false, "score": 0.0 to 1.0, "feedback": "2-3 encouraging sentences"}`,
		strings.Join(contextParts, "\n\n---\n\n"), in.QuestionText, expected, in.StudentAnswer)

	raw, err := g.cfg.Rag.QueryDirectJSON(ctx, prompt, "")
	if err != nil {
		g.cfg.Logger.Warnf("contextual grading call failed: %v", err)
		return nil
	}

	var graded struct {
		IsCorrect bool     `json:"is_correct"`
		Score     *float64 `json:"score"`
		Feedback  string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &graded); err != nil {
		g.cfg.Logger.Warnf("contextual grading returned invalid JSON: %v", err)
		return nil
	}

	score := 0.0
	if graded.Score != nil {
		score = clampScore(*graded.Score)
	} else if graded.IsCorrect {
		score = 1.0
	}

	sources := sourcesFromChunks(g.cfg.Repository, retrieved.Results)

	isCorrect := graded.IsCorrect
	return &GradeResult{
		IsCorrect: &isCorrect,
		Score:     score,
		Feedback:  graded.Feedback,
		Method:    "contextual",
		Sources:   sources,
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func stripCodeFences(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
