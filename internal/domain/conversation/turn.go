package conversation

import (
	"errors"
	"time"
)

// Sender identifies who authored a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Fixed bot replies for the degraded paths.
const (
	NoContextAnswer    = "I couldn't find any relevant information to answer your question."
	FallbackAnswer     = "Sorry, I couldn't generate a response."
	previewLimit       = 50
	previewEllipsis    = "..."
	defaultMaxSnippets = 3
)

var (
	// ErrPersistence marks a failed turn write.
	ErrPersistence = errors.New("conversation turn could not be persisted")
	// ErrBotTurnNotPersisted is returned alongside a valid answer whose bot turn was not stored.
	ErrBotTurnNotPersisted = errors.New("bot turn not persisted")
	// ErrConversationNotOwned is returned when ownership enforcement rejects a foreign conversation id.
	ErrConversationNotOwned = errors.New("conversation belongs to another user")
)

// Turn is one message in a conversation. Turns are immutable once stored.
type Turn struct {
	ID             uint
	UserID         string
	ConversationID string
	Sender         Sender
	Message        string
	CreatedAt      time.Time
}

// Summary describes a conversation by its latest turn.
type Summary struct {
	ConversationID string
	Preview        string
	Timestamp      time.Time
	Sender         Sender
}
