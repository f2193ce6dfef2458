package retrieval

import "context"

// Retriever returns up to maxResults text snippets relevant to query, best first.
// An empty result is not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) ([]string, error)
}

// Document is one indexed FAQ entry.
type Document struct {
	ID   string
	Text string
}

// Match is a scored search hit.
type Match struct {
	Document Document
	Score    float64
}

// Embedder maps texts to dense vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Index stores document vectors and answers nearest-neighbour queries.
type Index interface {
	Upsert(doc Document, vector []float32)
	Search(vector []float32, topK int, minScore float64) []Match
	Len() int
}
