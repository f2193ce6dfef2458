package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/support-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/support-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// HistoryService reads a user's stored conversations.
type HistoryService interface {
	ListConversations(ctx context.Context, userID string) ([]conversation.Summary, error)
	GetHistory(ctx context.Context, userID string, conversationID *string) ([]conversation.Turn, error)
}

// HistoryHandler exposes the read side of the chat history.
type HistoryHandler struct {
	service HistoryService
	log     zerolog.Logger
}

// NewHistoryHandler constructs the handler.
func NewHistoryHandler(service HistoryService, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		log:     log.With().Str("handler", "history").Logger(),
	}
}

// GetHistory handles GET /api/v1/history
// @Summary Get a conversation transcript
// @Description Returns the caller's turns for one conversation, oldest first. Without conversation_id the list is empty.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param conversation_id query string false "Conversation ID"
// @Success 200 {array} responses.HistoryItem
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "Not authenticated")
		return
	}

	var query requests.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query")
		return
	}

	turns, err := h.service.GetHistory(c.Request.Context(), principal.UserID, query.ConversationID)
	if err != nil {
		responses.HandleError(c, err, "Failed to load history")
		return
	}

	c.JSON(http.StatusOK, responses.FromTurns(turns))
}

// ListConversations handles GET /api/v1/conversations
// @Summary List conversations
// @Description Returns one entry per conversation, newest first, previewing its latest turn.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} responses.ConversationItem
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/conversations [get]
func (h *HistoryHandler) ListConversations(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "Not authenticated")
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), principal.UserID)
	if err != nil {
		responses.HandleError(c, err, "Failed to load conversations")
		return
	}

	c.JSON(http.StatusOK, responses.FromSummaries(summaries))
}
