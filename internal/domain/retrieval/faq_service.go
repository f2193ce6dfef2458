package retrieval

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FAQConfig controls corpus loading and search.
type FAQConfig struct {
	Path        string
	BatchSize   int
	Concurrency int
	MinScore    float64
}

// FAQService indexes a newline separated FAQ corpus and serves similarity lookups.
type FAQService struct {
	embedder Embedder
	index    Index
	cfg      FAQConfig
	log      zerolog.Logger
	ready    atomic.Bool
}

// NewFAQService creates the retriever. Call Load or Index before serving queries.
func NewFAQService(embedder Embedder, index Index, cfg FAQConfig, log zerolog.Logger) *FAQService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &FAQService{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		log:      log.With().Str("component", "faq-retriever").Logger(),
	}
}

// Load reads the corpus file, one document per non-blank line, and indexes it.
func (s *FAQService) Load(ctx context.Context) error {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return fmt.Errorf("open faq corpus: %w", err)
	}
	defer f.Close()

	var docs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			docs = append(docs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read faq corpus: %w", err)
	}

	return s.Index(ctx, docs)
}

// Index embeds texts in concurrent batches and stores them with ids doc_0, doc_1, ...
func (s *FAQService) Index(ctx context.Context, texts []string) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for offset := 0; offset < len(texts); offset += s.cfg.BatchSize {
		end := min(offset+s.cfg.BatchSize, len(texts))
		batchStart, batch := offset, texts[offset:end]

		g.Go(func() error {
			vectors, err := s.embedder.Embed(gctx, batch)
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", batchStart, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("embed batch at %d: got %d vectors for %d documents", batchStart, len(vectors), len(batch))
			}
			for i, text := range batch {
				s.index.Upsert(Document{ID: fmt.Sprintf("doc_%d", batchStart+i), Text: text}, vectors[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.ready.Store(true)
	s.log.Info().
		Int("documents", len(texts)).
		Str("embedder", s.embedder.Name()).
		Dur("duration", time.Since(start)).
		Msg("faq corpus indexed")
	return nil
}

// Ready reports whether the corpus has been indexed.
func (s *FAQService) Ready() bool {
	return s.ready.Load()
}

// Retrieve embeds the query and returns the texts of the best matches.
func (s *FAQService) Retrieve(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || maxResults <= 0 || s.index.Len() == 0 {
		return []string{}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	matches := s.index.Search(vectors[0], maxResults, s.cfg.MinScore)
	snippets := make([]string, 0, len(matches))
	for _, m := range matches {
		snippets = append(snippets, m.Document.Text)
	}
	return snippets, nil
}
