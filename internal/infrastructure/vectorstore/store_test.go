package vectorstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-api/internal/domain/retrieval"
)

func TestSearchRanksByCosine(t *testing.T) {
	s := NewMemoryStore()
	s.Upsert(retrieval.Document{ID: "doc_0", Text: "x axis"}, []float32{1, 0, 0})
	s.Upsert(retrieval.Document{ID: "doc_1", Text: "mostly x"}, []float32{0.9, 0.1, 0})
	s.Upsert(retrieval.Document{ID: "doc_2", Text: "y axis"}, []float32{0, 1, 0})

	matches := s.Search([]float32{1, 0, 0}, 5, 0)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc_0", matches[0].Document.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "doc_1", matches[1].Document.ID)
}

func TestSearchHonoursTopKAndMinScore(t *testing.T) {
	s := NewMemoryStore()
	s.Upsert(retrieval.Document{ID: "doc_0"}, []float32{1, 0})
	s.Upsert(retrieval.Document{ID: "doc_1"}, []float32{1, 1})
	s.Upsert(retrieval.Document{ID: "doc_2"}, []float32{0.2, 1})

	assert.Len(t, s.Search([]float32{1, 0}, 1, 0), 1)

	matches := s.Search([]float32{1, 0}, 10, 0.5)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Greater(t, m.Score, 0.5)
	}

	assert.Empty(t, s.Search([]float32{1, 0}, 0, 0))
	assert.Empty(t, s.Search([]float32{0, 0}, 3, 0))
}

func TestSearchBreaksTiesByID(t *testing.T) {
	s := NewMemoryStore()
	s.Upsert(retrieval.Document{ID: "doc_b"}, []float32{1, 0})
	s.Upsert(retrieval.Document{ID: "doc_a"}, []float32{2, 0})

	matches := s.Search([]float32{1, 0}, 2, 0)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc_a", matches[0].Document.ID)
	assert.Equal(t, "doc_b", matches[1].Document.ID)
}

func TestUpsertReplacesAndCopies(t *testing.T) {
	s := NewMemoryStore()
	vec := []float32{1, 0}
	s.Upsert(retrieval.Document{ID: "doc_0", Text: "old"}, vec)
	vec[0], vec[1] = 0, 1
	s.Upsert(retrieval.Document{ID: "doc_0", Text: "new"}, []float32{0, 1})

	assert.Equal(t, 1, s.Len())
	matches := s.Search([]float32{0, 1}, 1, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Document.Text)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Upsert(retrieval.Document{ID: fmt.Sprintf("doc_%d", i)}, []float32{float32(i), 1})
		}(i)
		go func() {
			defer wg.Done()
			s.Search([]float32{1, 1}, 3, 0)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}
