package llmprovider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/support-api/internal/domain/llm"
	"github.com/janhq/support-api/internal/infrastructure/metrics"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaClient implements llm.Provider against Ollama's /api/generate.
type OllamaClient struct {
	httpClient *resty.Client
	model      string
}

// NewOllamaClient creates a Resty-backed client. Retries stay disabled.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		model: model,
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

// Complete sends a single non-streaming generate request.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (answer string, err error) {
	start := time.Now()
	defer func() { metrics.RecordProviderCall("completion", c.Name(), err, time.Since(start)) }()

	var out generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: c.model, Prompt: prompt, Stream: false}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}

	answer = strings.TrimSpace(out.Response)
	if answer == "" {
		return "", llm.ErrEmptyCompletion
	}
	return answer, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ llm.Provider = (*OllamaClient)(nil)
