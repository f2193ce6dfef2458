package conversation

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// HistoryReader serves read-only views over a user's turns.
type HistoryReader struct {
	repo Repository
	log  zerolog.Logger
}

func NewHistoryReader(repo Repository, log zerolog.Logger) *HistoryReader {
	return &HistoryReader{
		repo: repo,
		log:  log.With().Str("component", "history-reader").Logger(),
	}
}

// ListConversations returns one summary per conversation, most recently active first.
func (h *HistoryReader) ListConversations(ctx context.Context, userID string) ([]Summary, error) {
	latest, err := h.repo.LatestTurns(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}

	sort.SliceStable(latest, func(i, j int) bool {
		if latest[i].CreatedAt.Equal(latest[j].CreatedAt) {
			return latest[i].ID > latest[j].ID
		}
		return latest[i].CreatedAt.After(latest[j].CreatedAt)
	})

	seen := make(map[string]struct{}, len(latest))
	summaries := make([]Summary, 0, len(latest))
	for _, t := range latest {
		if t.UserID != userID {
			continue
		}
		if _, dup := seen[t.ConversationID]; dup {
			continue
		}
		seen[t.ConversationID] = struct{}{}
		summaries = append(summaries, Summary{
			ConversationID: t.ConversationID,
			Preview:        Preview(t.Message),
			Timestamp:      t.CreatedAt,
			Sender:         t.Sender,
		})
	}
	return summaries, nil
}

// GetHistory returns a conversation's turns in chronological order.
// Without a conversation id the result is empty, never the user's full history.
func (h *HistoryReader) GetHistory(ctx context.Context, userID string, conversationID *string) ([]Turn, error) {
	if conversationID == nil || *conversationID == "" {
		return []Turn{}, nil
	}

	turns, err := h.repo.ListTurns(ctx, userID, *conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load history")
	}

	filtered := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if t.UserID == userID {
			filtered = append(filtered, t)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Preview shortens a message to its first 50 runes, marking truncation with "...".
func Preview(message string) string {
	runes := []rune(message)
	if len(runes) <= previewLimit {
		return message
	}
	return string(runes[:previewLimit]) + previewEllipsis
}
