package conversation

import "context"

// Repository stores conversation turns.
type Repository interface {
	// Append stores a turn and assigns its ID. CreatedAt is kept when set.
	Append(ctx context.Context, turn *Turn) error
	// ListTurns returns the user's turns of one conversation ordered by created_at, then id.
	ListTurns(ctx context.Context, userID, conversationID string) ([]Turn, error)
	// LatestTurns returns the newest turn of each of the user's conversations, newest first.
	LatestTurns(ctx context.Context, userID string) ([]Turn, error)
	// ConversationOwner returns the user id of the conversation's first turn; found is false when it has none.
	ConversationOwner(ctx context.Context, conversationID string) (userID string, found bool, err error)
}

// Locker serializes writes for one conversation id.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
