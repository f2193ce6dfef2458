package handlers_test

import (
	"context"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/domain/user"
)

// MockAuthService is a function-field mock of handlers.AuthService.
type MockAuthService struct {
	RegisterFunc     func(ctx context.Context, username, password string) (*user.User, error)
	LoginFunc        func(ctx context.Context, username, password string) (*user.Token, error)
	AuthenticateFunc func(ctx context.Context, token string) (*user.Principal, error)
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*user.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, password)
	}
	return &user.User{ID: "user-1", Username: username}, nil
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*user.Token, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return nil, nil
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*user.Principal, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return &user.Principal{UserID: "user-1", Username: "alice"}, nil
}

// MockAskService is a function-field mock of handlers.AskService.
type MockAskService struct {
	AskFunc func(ctx context.Context, params conversation.AskParams) (*conversation.AskResult, error)
}

func (m *MockAskService) Ask(ctx context.Context, params conversation.AskParams) (*conversation.AskResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, params)
	}
	return nil, nil
}

// MockHistoryService is a function-field mock of handlers.HistoryService.
type MockHistoryService struct {
	ListConversationsFunc func(ctx context.Context, userID string) ([]conversation.Summary, error)
	GetHistoryFunc        func(ctx context.Context, userID string, conversationID *string) ([]conversation.Turn, error)
}

func (m *MockHistoryService) ListConversations(ctx context.Context, userID string) ([]conversation.Summary, error) {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockHistoryService) GetHistory(ctx context.Context, userID string, conversationID *string) ([]conversation.Turn, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, userID, conversationID)
	}
	return nil, nil
}
