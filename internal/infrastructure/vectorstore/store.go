package vectorstore

import (
	"math"
	"sort"
	"sync"

	"github.com/janhq/support-api/internal/domain/retrieval"
)

type entry struct {
	doc    retrieval.Document
	vector []float32
	norm   float64
}

// MemoryStore is an in-process cosine similarity index.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]entry),
	}
}

// Upsert stores or replaces a document vector.
func (s *MemoryStore) Upsert(doc retrieval.Document, vector []float32) {
	stored := make([]float32, len(vector))
	copy(stored, vector)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = entry{doc: doc, vector: stored, norm: norm(stored)}
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search returns at most topK documents scoring above minScore, best first.
// Equal scores are ordered by document id.
func (s *MemoryStore) Search(vector []float32, topK int, minScore float64) []retrieval.Match {
	if topK <= 0 {
		return []retrieval.Match{}
	}
	queryNorm := norm(vector)
	if queryNorm == 0 {
		return []retrieval.Match{}
	}

	s.mu.RLock()
	results := make([]retrieval.Match, 0, len(s.docs))
	for _, e := range s.docs {
		score := cosine(vector, queryNorm, e.vector, e.norm)
		if score <= minScore {
			continue
		}
		results = append(results, retrieval.Match{Document: e.doc, Score: score})
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Document.ID < results[j].Document.ID
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine ignores trailing dimensions when the vectors differ in length.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
