package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/support-api/internal/infrastructure/metrics"
)

type embedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// HTTPClient calls a text-embeddings-inference style POST /embed endpoint.
type HTTPClient struct {
	httpClient *resty.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

func (c *HTTPClient) Name() string { return "http" }

func (c *HTTPClient) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	defer func() { metrics.RecordProviderCall("embedding", "http", err, time.Since(start)) }()

	var out [][]float32
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(embedRequest{Inputs: texts, Normalize: true, Truncate: true}).
		SetResult(&out).
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode())
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(out), len(texts))
	}
	return out, nil
}
