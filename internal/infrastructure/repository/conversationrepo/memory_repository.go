package conversationrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/janhq/support-api/internal/domain/conversation"
)

// MemoryRepository keeps turns in process memory. Used with DB_DRIVER=memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	turns  []conversation.Turn
	nextID uint
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, turn *conversation.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	turn.ID = r.nextID
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	r.turns = append(r.turns, *turn)
	return nil
}

func (r *MemoryRepository) ListTurns(_ context.Context, userID, conversationID string) ([]conversation.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []conversation.Turn{}
	for _, t := range r.turns {
		if t.UserID == userID && t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) LatestTurns(_ context.Context, userID string) ([]conversation.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[string]conversation.Turn)
	for _, t := range r.turns {
		if t.UserID != userID {
			continue
		}
		cur, ok := latest[t.ConversationID]
		if !ok || t.CreatedAt.After(cur.CreatedAt) || (t.CreatedAt.Equal(cur.CreatedAt) && t.ID > cur.ID) {
			latest[t.ConversationID] = t
		}
	}

	out := make([]conversation.Turn, 0, len(latest))
	for _, t := range latest {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) ConversationOwner(_ context.Context, conversationID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.turns {
		if t.ConversationID == conversationID {
			return t.UserID, true, nil
		}
	}
	return "", false, nil
}

var _ conversation.Repository = (*MemoryRepository)(nil)
