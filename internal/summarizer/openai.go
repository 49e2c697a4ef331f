package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docsummarizer/internal/domain"
)

const DefaultGroqBaseURL = "https://api.groq.com/openai/v1/"

// GroqCompleter calls Groq's OpenAI-compatible chat completions endpoint.
type GroqCompleter struct {
	client openai.Client
}

// NewGroqCompleter builds a completer. Client-side retries are disabled since
// the pipeline owns the retry budget.
func NewGroqCompleter(apiKey string, baseURL string) (*GroqCompleter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is empty")
	}

	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &GroqCompleter{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
	}, nil
}

// Complete runs one deterministic completion for prompt.
func (c *GroqCompleter) Complete(
	ctx context.Context,
	model domain.ModelID,
	prompt string,
) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		err = fmt.Errorf("do request: %w", err)
		if isTransientAPIError(err) {
			return "", MarkTransient(err)
		}

		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("response has no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf(
			"output text is missing (finishReason = %s)",
			resp.Choices[0].FinishReason,
		)
	}

	return text, nil
}

func isTransientAPIError(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}

	return apiErr.StatusCode >= http.StatusInternalServerError
}
