package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible chat-completion endpoint for direct LLM
// calls that need no retrieval index (grading rubrics, question synthesis,
// query condensation).
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	client  *openai.Client
}

func NewClient(apiKey string, model string, baseURL string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		client:  openai.NewClientWithConfig(config),
	}
}

// Complete sends a single-turn completion and returns the raw text.
func (c *Client) Complete(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("llm client not initialized")
	}

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.Model,
			Messages:    messages,
			Temperature: 0.3,
			TopP:        0.95,
			MaxTokens:   2048,
		},
	)
	if err != nil {
		return "", fmt.Errorf("llm complete error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("llm returned empty response")
	}

	return text, nil
}

// CompleteJSON is Complete with the response format pinned to a JSON object,
// for prompts that expect a machine-parseable verdict.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("llm client not initialized")
	}

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.Model,
			Messages:    messages,
			Temperature: 0.3,
			TopP:        0.95,
			MaxTokens:   2048,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("llm complete error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("llm returned empty response")
	}

	return text, nil
}
