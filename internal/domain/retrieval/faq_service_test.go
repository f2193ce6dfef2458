package retrieval_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-api/internal/domain/retrieval"
	"github.com/janhq/support-api/internal/infrastructure/embedding"
	"github.com/janhq/support-api/internal/infrastructure/vectorstore"
)

const corpus = `TechCorp was founded in 2010 and is headquartered in Austin.

Our support team is available Monday to Friday, 9am to 5pm.
Refunds are processed within 5 business days.
You can reset your password from the account settings page.
`

func newService(t *testing.T, batchSize int) *retrieval.FAQService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.txt")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0o600))

	return retrieval.NewFAQService(
		embedding.NewLexical(1<<16),
		vectorstore.NewMemoryStore(),
		retrieval.FAQConfig{Path: path, BatchSize: batchSize},
		zerolog.Nop(),
	)
}

func TestLoadIndexesNonBlankLines(t *testing.T) {
	svc := newService(t, 2)
	assert.False(t, svc.Ready())

	require.NoError(t, svc.Load(context.Background()))
	assert.True(t, svc.Ready())

	snippets, err := svc.Retrieve(context.Background(), "When was TechCorp founded?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, snippets)
	assert.Equal(t, "TechCorp was founded in 2010 and is headquartered in Austin.", snippets[0])
	assert.LessOrEqual(t, len(snippets), 3)
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	svc := newService(t, 16)
	require.NoError(t, svc.Load(context.Background()))

	snippets, err := svc.Retrieve(context.Background(), "your password and refunds from support", 1)
	require.NoError(t, err)
	assert.Len(t, snippets, 1)
}

func TestRetrieveWithoutOverlapIsEmpty(t *testing.T) {
	svc := newService(t, 16)
	require.NoError(t, svc.Load(context.Background()))

	snippets, err := svc.Retrieve(context.Background(), "zebra giraffe", 3)
	require.NoError(t, err)
	assert.Empty(t, snippets)
}

func TestRetrieveBeforeLoadIsEmpty(t *testing.T) {
	svc := newService(t, 16)
	snippets, err := svc.Retrieve(context.Background(), "TechCorp", 3)
	require.NoError(t, err)
	assert.Empty(t, snippets)
}

func TestLoadMissingFile(t *testing.T) {
	svc := retrieval.NewFAQService(embedding.NewLexical(8), vectorstore.NewMemoryStore(),
		retrieval.FAQConfig{Path: filepath.Join(t.TempDir(), "missing.txt")}, zerolog.Nop())
	assert.Error(t, svc.Load(context.Background()))
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}

func TestIndexPropagatesEmbedderErrors(t *testing.T) {
	svc := retrieval.NewFAQService(failingEmbedder{}, vectorstore.NewMemoryStore(), retrieval.FAQConfig{}, zerolog.Nop())
	err := svc.Index(context.Background(), []string{"one", "two"})
	assert.Error(t, err)
	assert.False(t, svc.Ready())
}
