package handlers

import (
	"github.com/rs/zerolog"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Auth    *AuthHandler
	Chat    *ChatHandler
	History *HistoryHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(authService AuthService, askService AskService, historyService HistoryService, log zerolog.Logger) *Provider {
	return &Provider{
		Auth:    NewAuthHandler(authService, log),
		Chat:    NewChatHandler(askService, log),
		History: NewHistoryHandler(historyService, log),
	}
}
