// Package rag talks to the retrieval backend: ranked chunk retrieval, LLM
// answer synthesis, direct completions and handwriting OCR. Calls are wrapped
// by a Redis result cache and admission-controlled by a leaky-bucket limiter.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
	"github.com/pastpaper/pastpaper-be/internal/pkg/llm"
)

type ChunkMetadata struct {
	FileName   string `json:"file_name,omitempty"`
	PageNumber *int   `json:"page_number,omitempty"`
}

// Chunk is one ranked piece of retrieved document content.
type Chunk struct {
	Content  string        `json:"content"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

type RetrieveResult struct {
	Results []Chunk `json:"results"`
	Total   int     `json:"total"`
}

type QueryResult struct {
	Answer            string  `json:"answer"`
	Sources           []Chunk `json:"sources"`
	CondensedQuestion string  `json:"condensed_question,omitempty"`
}

// Message is one turn of chat history supplied to Query.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ocrResult struct {
	Text string `json:"text"`
}

// Client wraps the retrieval backend HTTP API. A nil *Client is a valid
// "backend not configured" handle: every method fails with
// apperr.ErrBackendUnavailable so call sites degrade instead of panicking.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *Cache
	llm     *llm.Client
	log     *logrus.Logger
}

// NewClient builds a retrieval client. llmClient may be nil; index-free
// operations then go through the backend's /query/direct endpoint instead.
func NewClient(baseURL string, timeout time.Duration, cache *Cache, llmClient *llm.Client, log *logrus.Logger) *Client {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		llm:     llmClient,
		log:     log,
	}
}

// Available reports whether a retrieval backend is configured.
func (c *Client) Available() bool {
	return c != nil
}

// Retrieve returns the top-k ranked chunks for a query. Results are served
// from the cache when an identical request was answered recently.
func (c *Client) Retrieve(ctx context.Context, query, collection string, topK int) (*RetrieveResult, error) {
	if c == nil {
		return nil, apperr.ErrBackendUnavailable
	}
	if topK <= 0 {
		topK = 10
	}

	params := map[string]any{"query": query, "collection": collection, "top_k": topK}
	var cached RetrieveResult
	if c.cache.Get(ctx, "retrieve", params, &cached) {
		return &cached, nil
	}

	var result RetrieveResult
	payload := map[string]any{
		"query":      query,
		"collection": collection,
		"top_k":      topK,
		"filters":    map[string]any{},
	}
	if err := c.post(ctx, "/retrieve/", payload, &result); err != nil {
		return nil, err
	}

	c.cache.Set(ctx, "retrieve", params, &result)
	return &result, nil
}

// Query returns an LLM-synthesised answer with sources. Without chat history
// the call is cacheable and goes straight to the backend. With history the
// question is first condensed into a standalone query for retrieval, then the
// answer is synthesised from the original question plus recent conversation —
// such calls bypass the cache because they are context-dependent.
func (c *Client) Query(ctx context.Context, question, collection string, topK int, history []Message) (*QueryResult, error) {
	if c == nil {
		return nil, apperr.ErrBackendUnavailable
	}
	if topK <= 0 {
		topK = 10
	}

	if len(history) == 0 {
		params := map[string]any{"question": question, "collection": collection, "top_k": topK}
		var cached QueryResult
		if c.cache.Get(ctx, "query", params, &cached) {
			return &cached, nil
		}

		var result QueryResult
		payload := map[string]any{
			"question":   question,
			"collection": collection,
			"top_k":      topK,
			"filters":    map[string]any{},
		}
		if err := c.post(ctx, "/query/", payload, &result); err != nil {
			return nil, err
		}

		c.cache.Set(ctx, "query", params, &result)
		return &result, nil
	}

	if c.llm == nil {
		// No local LLM: let the backend handle the conversation context.
		var result QueryResult
		payload := map[string]any{
			"question":     question,
			"collection":   collection,
			"top_k":        topK,
			"filters":      map[string]any{},
			"chat_history": history,
		}
		if err := c.post(ctx, "/query/", payload, &result); err != nil {
			return nil, err
		}
		return &result, nil
	}

	return c.queryWithHistory(ctx, question, collection, topK, history)
}

// QueryDirect sends a prompt to the LLM without touching any index.
func (c *Client) QueryDirect(ctx context.Context, question, systemPrompt string) (string, error) {
	return c.queryDirect(ctx, question, systemPrompt, false)
}

// QueryDirectJSON is QueryDirect with the response pinned to a JSON object,
// for prompts that expect a machine-parseable result.
func (c *Client) QueryDirectJSON(ctx context.Context, question, systemPrompt string) (string, error) {
	return c.queryDirect(ctx, question, systemPrompt, true)
}

func (c *Client) queryDirect(ctx context.Context, question, systemPrompt string, jsonMode bool) (string, error) {
	if c == nil {
		return "", apperr.ErrBackendUnavailable
	}

	if c.llm != nil {
		var (
			text string
			err  error
		)
		if jsonMode {
			text, err = c.llm.CompleteJSON(ctx, question, systemPrompt)
		} else {
			text, err = c.llm.Complete(ctx, question, systemPrompt)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
		}
		return text, nil
	}

	payload := map[string]any{"question": question}
	if systemPrompt != "" {
		payload["system_prompt"] = systemPrompt
	}
	var result struct {
		Answer string `json:"answer"`
	}
	if err := c.post(ctx, "/query/direct", payload, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

// OCR transcribes a handwritten answer image via the backend's vision model.
func (c *Client) OCR(ctx context.Context, imageBase64, prompt string) (string, error) {
	if c == nil {
		return "", apperr.ErrBackendUnavailable
	}
	payload := map[string]any{
		"image_base64": imageBase64,
		"prompt":       prompt,
	}
	var result ocrResult
	if err := c.post(ctx, "/ocr/handwritten", payload, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// ── Chat context handling ────────────────────────────────────────────────────

// queryWithHistory condenses the follow-up into a standalone retrieval query,
// retrieves with it, then synthesises an answer from the original question
// plus a short recent-history block and the retrieved context.
func (c *Client) queryWithHistory(ctx context.Context, question, collection string, topK int, history []Message) (*QueryResult, error) {
	condensed, err := c.condenseQuestion(ctx, question, history)
	if err != nil {
		c.log.Warnf("query condensation failed, retrieving with raw question: %v", err)
		condensed = question
	}

	retrieved, err := c.Retrieve(ctx, condensed, collection, topK)
	if err != nil {
		return nil, err
	}

	contextParts := make([]string, 0, len(retrieved.Results))
	for _, chunk := range retrieved.Results {
		contextParts = append(contextParts, chunk.Content)
	}
	contextBlock := strings.Join(contextParts, "\n\n---\n\n")

	historyBlock := formatHistory(history, 6, 400)

	synthesisPrompt := fmt.Sprintf(
		"You are an expert exam tutor helping a student prepare for exams. "+
			"Use ONLY the exam paper content below to answer.\n"+
			"If the answer is not in the content, say: "+
			"'I could not find that information in the provided exam papers.'\n"+
			"Do not guess or use outside knowledge.\n\n"+
			"--- Exam Content ---\n%s\n--- End Exam Content ---\n\n"+
			"--- Previous Conversation ---\n%s\n--- End Previous Conversation ---\n\n"+
			"Student: %s\nTutor:",
		contextBlock, historyBlock, question)

	answer, err := c.llm.Complete(ctx, synthesisPrompt, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
	}

	return &QueryResult{
		Answer:            strings.TrimSpace(answer),
		Sources:           retrieved.Results,
		CondensedQuestion: condensed,
	}, nil
}

// condenseQuestion rewrites a context-dependent follow-up ("help me answer
// them") into a standalone question with useful retrieval keywords. The
// condensed form is used only for retrieval, never shown to the student.
func (c *Client) condenseQuestion(ctx context.Context, question string, history []Message) (string, error) {
	historyBlock := formatHistory(history, 10, 500)

	prompt := fmt.Sprintf(
		"Given the following conversation between a student and an AI tutor, "+
			"and a follow-up question, rewrite the follow-up question as a "+
			"standalone question that includes all necessary context.\n"+
			"Do NOT answer the question — only rewrite it.\n\n"+
			"Chat History:\n%s\n\n"+
			"Follow-Up Question: %s\n\n"+
			"Standalone Question:",
		historyBlock, question)

	condensed, err := c.llm.Complete(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	condensed = strings.TrimSpace(condensed)
	c.log.Infof("condensed query: %.60q -> %.100q", question, condensed)
	return condensed, nil
}

// formatHistory renders the last maxTurns messages, truncating each to
// maxRunes to bound prompt size.
func formatHistory(history []Message, maxTurns, maxRunes int) string {
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		role := "Tutor"
		if msg.Role == "user" {
			role = "Student"
		}
		lines = append(lines, role+": "+truncateRunes(msg.Content, maxRunes))
	}
	return strings.Join(lines, "\n")
}

// truncateRunes cuts on rune boundaries so multi-byte characters are never
// split mid-sequence.
func truncateRunes(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}

// ── HTTP plumbing ────────────────────────────────────────────────────────────

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Errorf("rag backend %s returned %d: %.200s", path, resp.StatusCode, raw)
		return fmt.Errorf("%w: %s returned status %d", apperr.ErrBackendUnavailable, path, resp.StatusCode)
	}

	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("%w: invalid response from %s: %v", apperr.ErrBackendUnavailable, path, err)
		}
	}
	return nil
}
