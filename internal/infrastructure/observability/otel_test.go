package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEndpoint(t *testing.T) {
	endpoint, insecure := normalizeEndpoint("http://otel-collector:4318")
	assert.Equal(t, "otel-collector:4318", endpoint)
	assert.True(t, insecure)

	endpoint, insecure = normalizeEndpoint("https://otel.example.com")
	assert.Equal(t, "otel.example.com", endpoint)
	assert.False(t, insecure)

	endpoint, insecure = normalizeEndpoint("otel-collector:4318")
	assert.Equal(t, "otel-collector:4318", endpoint)
	assert.True(t, insecure)
}
