package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "support-api", cfg.ServiceName)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "gemma3:4b", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3, cfg.RAGMaxResults)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_BASE_URL", "http://llm.internal:8080/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "http://llm.internal:8080", cfg.LLMBaseURL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown db driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "unknown llm provider", env: map[string]string{"LLM_PROVIDER": "bard"}},
		{name: "unknown embedding provider", env: map[string]string{"EMBEDDING_PROVIDER": "magic"}},
		{name: "unknown lock backend", env: map[string]string{"LOCK_BACKEND": "etcd"}},
		{name: "default secret in production", env: map[string]string{"ENVIRONMENT": "production"}},
		{name: "jwks without issuer", env: map[string]string{"AUTH_JWKS_URL": "https://idp.example.com/certs"}},
		{name: "non-positive token expiry", env: map[string]string{"ACCESS_TOKEN_EXPIRE_MINUTES": "0"}},
		{name: "lock ttl shorter than outbound timeouts", env: map[string]string{"CONVERSATION_LOCK_TTL": "10s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAcceptsProductionSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
