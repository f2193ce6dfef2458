package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-api/internal/config"
	"github.com/janhq/support-api/internal/domain/llm"
)

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma3:4b", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "Context: a\nQuestion: b", req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  Founded in 2010.\n", Done: true})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "gemma3:4b", time.Second)
	answer, err := client.Complete(context.Background(), "Context: a\nQuestion: b")
	require.NoError(t, err)
	assert.Equal(t, "Founded in 2010.", answer)
}

func TestOllamaCompleteFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "empty response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"response":"   ","done":true}`))
			},
			wantErr: llm.ErrEmptyCompletion,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"response":`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewOllamaClient(server.URL, "m", 50*time.Millisecond)
			_, err := client.Complete(context.Background(), "q")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		messages := req["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" hi there "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "key", "gpt-test", time.Second)
	answer, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient(server.URL+"/v1/", "key", "m", time.Second).Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestNew(t *testing.T) {
	p, err := New(&config.Config{LLMProvider: "ollama", LLMBaseURL: "http://localhost:11434", LLMTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = New(&config.Config{LLMProvider: "openai", LLMBaseURL: "http://localhost:8080", LLMTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = New(&config.Config{LLMProvider: "other"})
	assert.Error(t, err)
}
