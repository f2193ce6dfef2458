package entities

import (
	"time"

	"github.com/janhq/support-api/internal/domain/conversation"
)

// ChatHistory stores one conversation turn.
type ChatHistory struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	UserID         string    `gorm:"size:255;index:idx_chat_history_user_conversation,priority:1"`
	ConversationID string    `gorm:"size:255;index:idx_chat_history_user_conversation,priority:2"`
	Sender         string    `gorm:"size:16"`
	Message        string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index:idx_chat_history_user_conversation,priority:3"`
}

func (ChatHistory) TableName() string { return "chat_history" }

func NewSchemaChatHistory(t *conversation.Turn) *ChatHistory {
	return &ChatHistory{
		ID:             t.ID,
		UserID:         t.UserID,
		ConversationID: t.ConversationID,
		Sender:         string(t.Sender),
		Message:        t.Message,
		CreatedAt:      t.CreatedAt.UTC(),
	}
}

// EtoD converts the row to its domain value.
func (e *ChatHistory) EtoD() conversation.Turn {
	return conversation.Turn{
		ID:             e.ID,
		UserID:         e.UserID,
		ConversationID: e.ConversationID,
		Sender:         conversation.Sender(e.Sender),
		Message:        e.Message,
		CreatedAt:      e.CreatedAt.UTC(),
	}
}
