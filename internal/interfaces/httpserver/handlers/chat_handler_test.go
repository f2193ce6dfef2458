package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/support-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

func newChatRouter(ask *MockAskService, history *MockHistoryService) *gin.Engine {
	provider := handlers.NewProvider(&MockAuthService{}, ask, history, zerolog.Nop())
	r := gin.New()
	r.Use(middlewares.AuthMiddleware(&MockAuthService{}, zerolog.Nop()))
	r.POST("/ask", provider.Chat.Ask)
	r.GET("/history", provider.History.GetHistory)
	r.GET("/conversations", provider.History.ListConversations)
	return r
}

func authedRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	return req
}

func TestChatHandler_Ask(t *testing.T) {
	var got conversation.AskParams
	ask := &MockAskService{
		AskFunc: func(_ context.Context, p conversation.AskParams) (*conversation.AskResult, error) {
			got = p
			return &conversation.AskResult{Answer: "Founded in 2010.", ConversationID: "conv-1", Started: true}, nil
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(ask, &MockHistoryService{}).ServeHTTP(w,
		authedRequest(http.MethodPost, "/ask", []byte(`{"question":"When was TechCorp founded?","use_rag":true}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Founded in 2010.","conversation_id":"conv-1","persisted":true}`, w.Body.String())
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.UseRetrieval)
	assert.Nil(t, got.ConversationID)
}

func TestChatHandler_AskPassesConversationID(t *testing.T) {
	var got *string
	ask := &MockAskService{
		AskFunc: func(_ context.Context, p conversation.AskParams) (*conversation.AskResult, error) {
			got = p.ConversationID
			return &conversation.AskResult{Answer: "ok", ConversationID: *p.ConversationID}, nil
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(ask, &MockHistoryService{}).ServeHTTP(w,
		authedRequest(http.MethodPost, "/ask", []byte(`{"question":"hi","conversation_id":"conv-9"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "conv-9", *got)
}

func TestChatHandler_AskRejectsBadBodies(t *testing.T) {
	called := false
	ask := &MockAskService{
		AskFunc: func(context.Context, conversation.AskParams) (*conversation.AskResult, error) {
			called = true
			return nil, nil
		},
	}
	r := newChatRouter(ask, &MockHistoryService{})

	for _, body := range []string{`{`, `{"use_rag":true}`, `{"question":""}`, `{"question":42}`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, authedRequest(http.MethodPost, "/ask", []byte(body)))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
	assert.False(t, called)
}

func TestChatHandler_AskMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "whitespace question",
			err:    platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidInput, "question must not be empty", nil, ""),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "foreign conversation",
			err:    platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "conversation belongs to another user", conversation.ErrConversationNotOwned, ""),
			status: http.StatusForbidden,
		},
		{
			name:   "user turn write failed",
			err:    platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to store question", conversation.ErrPersistence, ""),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ask := &MockAskService{
				AskFunc: func(context.Context, conversation.AskParams) (*conversation.AskResult, error) {
					return nil, tt.err
				},
			}
			w := httptest.NewRecorder()
			newChatRouter(ask, &MockHistoryService{}).ServeHTTP(w,
				authedRequest(http.MethodPost, "/ask", []byte(`{"question":"hello"}`)))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestChatHandler_AskReturnsAnswerWhenBotTurnLost(t *testing.T) {
	ask := &MockAskService{
		AskFunc: func(context.Context, conversation.AskParams) (*conversation.AskResult, error) {
			return &conversation.AskResult{Answer: "42", ConversationID: "conv-1"},
				fmt.Errorf("store answer: %w: %w", conversation.ErrBotTurnNotPersisted, conversation.ErrPersistence)
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(ask, &MockHistoryService{}).ServeHTTP(w,
		authedRequest(http.MethodPost, "/ask", []byte(`{"question":"hello"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"42","conversation_id":"conv-1","persisted":false}`, w.Body.String())
}

func TestChatHandler_RequiresBearer(t *testing.T) {
	r := newChatRouter(&MockAskService{}, &MockHistoryService{})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question":"hi"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestChatHandler_RejectsInvalidToken(t *testing.T) {
	auth := &MockAuthService{
		AuthenticateFunc: func(ctx context.Context, _ string) (*user.Principal, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				"Could not validate credentials", user.ErrInvalidToken, "")
		},
	}
	r := gin.New()
	r.Use(middlewares.AuthMiddleware(auth, zerolog.Nop()))
	r.GET("/conversations", handlers.NewHistoryHandler(&MockHistoryService{}, zerolog.Nop()).ListConversations)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/conversations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHistoryHandler_GetHistory(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var gotID *string
	history := &MockHistoryService{
		GetHistoryFunc: func(_ context.Context, userID string, conversationID *string) ([]conversation.Turn, error) {
			gotID = conversationID
			return []conversation.Turn{
				{ID: 1, UserID: userID, ConversationID: "conv-1", Sender: conversation.SenderUser, Message: "hi", CreatedAt: created},
				{ID: 2, UserID: userID, ConversationID: "conv-1", Sender: conversation.SenderBot, Message: "hello", CreatedAt: created.Add(time.Second)},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(&MockAskService{}, history).ServeHTTP(w,
		authedRequest(http.MethodGet, "/history?conversation_id=conv-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotID)
	assert.Equal(t, "conv-1", *gotID)

	var items []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "user", items[0]["sender"])
	assert.Equal(t, "bot", items[1]["sender"])
	assert.Equal(t, "2025-03-01T10:00:00.000000Z", items[0]["timestamp"])
}

func TestHistoryHandler_GetHistoryWithoutConversation(t *testing.T) {
	w := httptest.NewRecorder()
	newChatRouter(&MockAskService{}, &MockHistoryService{}).ServeHTTP(w,
		authedRequest(http.MethodGet, "/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHistoryHandler_ListConversations(t *testing.T) {
	history := &MockHistoryService{
		ListConversationsFunc: func(_ context.Context, userID string) ([]conversation.Summary, error) {
			assert.Equal(t, "user-1", userID)
			return []conversation.Summary{
				{ConversationID: "b", Preview: "newer", Sender: conversation.SenderBot, Timestamp: time.Unix(200, 0)},
				{ConversationID: "a", Preview: "older", Sender: conversation.SenderUser, Timestamp: time.Unix(100, 0)},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(&MockAskService{}, history).ServeHTTP(w,
		authedRequest(http.MethodGet, "/conversations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0]["conversation_id"])
	assert.Equal(t, "newer", items[0]["preview"])
}

func TestHistoryHandler_ListConversationsFailure(t *testing.T) {
	history := &MockHistoryService{
		ListConversationsFunc: func(context.Context, string) ([]conversation.Summary, error) {
			return nil, errors.New("boom")
		},
	}

	w := httptest.NewRecorder()
	newChatRouter(&MockAskService{}, history).ServeHTTP(w,
		authedRequest(http.MethodGet, "/conversations", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
