package llmprovider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/janhq/support-api/internal/domain/llm"
	"github.com/janhq/support-api/internal/infrastructure/metrics"
)

// OpenAIClient implements llm.Provider for any OpenAI compatible chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient points the SDK at baseURL, appending /v1 when missing.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	cfg.BaseURL = base
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (answer string, err error) {
	start := time.Now()
	defer func() { metrics.RecordProviderCall("completion", c.Name(), err, time.Since(start)) }()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyCompletion
	}

	answer = strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", llm.ErrEmptyCompletion
	}
	return answer, nil
}

var _ llm.Provider = (*OpenAIClient)(nil)
