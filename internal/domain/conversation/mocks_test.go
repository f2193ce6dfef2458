package conversation

import (
	"context"
	"errors"
	"sync"
)

// memoryRepo is a minimal Repository used by the domain tests.
type memoryRepo struct {
	mu     sync.Mutex
	turns  []Turn
	nextID uint

	AppendFunc func(ctx context.Context, turn *Turn) error
}

func (r *memoryRepo) Append(ctx context.Context, turn *Turn) error {
	if r.AppendFunc != nil {
		if err := r.AppendFunc(ctx, turn); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	turn.ID = r.nextID
	r.turns = append(r.turns, *turn)
	return nil
}

func (r *memoryRepo) ListTurns(_ context.Context, userID, conversationID string) ([]Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Turn{}
	for _, t := range r.turns {
		if t.UserID == userID && t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepo) LatestTurns(_ context.Context, userID string) ([]Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := map[string]Turn{}
	for _, t := range r.turns {
		if t.UserID != userID {
			continue
		}
		if cur, ok := latest[t.ConversationID]; !ok || !t.CreatedAt.Before(cur.CreatedAt) {
			latest[t.ConversationID] = t
		}
	}
	out := make([]Turn, 0, len(latest))
	for _, t := range latest {
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryRepo) ConversationOwner(_ context.Context, conversationID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.turns {
		if t.ConversationID == conversationID {
			return t.UserID, true, nil
		}
	}
	return "", false, nil
}

func (r *memoryRepo) all() []Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Turn(nil), r.turns...)
}

type MockRetriever struct {
	mu        sync.Mutex
	calls     int
	lastLimit int

	RetrieveFunc func(ctx context.Context, query string, maxResults int) ([]string, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, maxResults int) ([]string, error) {
	m.mu.Lock()
	m.calls++
	m.lastLimit = maxResults
	m.mu.Unlock()
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, query, maxResults)
	}
	return []string{}, nil
}

type MockProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string

	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", errors.New("no completion configured")
}

func (m *MockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// keyedLocker is a channel based per-key mutex.
type keyedLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{slots: map[string]chan struct{}{}}
}

func (l *keyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
