package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/infrastructure/metrics"
	"github.com/janhq/support-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/support-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/support-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// AskService answers one question inside a conversation.
type AskService interface {
	Ask(ctx context.Context, params conversation.AskParams) (*conversation.AskResult, error)
}

// ChatHandler exposes the ask endpoint.
type ChatHandler struct {
	service AskService
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service AskService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Ask handles POST /api/v1/ask
// @Summary Ask a question
// @Description Answers a question, optionally grounded in the FAQ corpus, and records both turns.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.AskRequest true "Question"
// @Success 200 {object} responses.AskResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/ask [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "Not authenticated")
		return
	}

	var req requests.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordAsk("invalid", req.UseRAG)
		responses.HandleNewError(c, platformerrors.ErrorTypeInvalidInput, "question is required")
		return
	}

	params := conversation.AskParams{
		UserID:         principal.UserID,
		Question:       req.Question,
		UseRetrieval:   req.UseRAG,
		ConversationID: normalizeID(req.ConversationID),
	}

	result, err := h.service.Ask(c.Request.Context(), params)
	switch {
	case err == nil:
	case result != nil && conversation.IsBotTurnNotPersisted(err):
		// The user still gets the answer; the transcript is missing its reply.
		metrics.RecordAsk("unpersisted", req.UseRAG)
		h.log.Error().Err(err).
			Str("conversation_id", result.ConversationID).
			Msg("answer returned without persisted bot turn")
		c.JSON(http.StatusOK, responses.FromAskResult(result, false))
		return
	default:
		metrics.RecordAsk(askFailureOutcome(err), req.UseRAG)
		responses.HandleError(c, err, "Failed to process question")
		return
	}

	if result.Started {
		metrics.ConversationsCreatedTotal.Inc()
	}
	metrics.RecordAsk(askOutcome(result), req.UseRAG)
	c.JSON(http.StatusOK, responses.FromAskResult(result, true))
}

// normalizeID treats a blank conversation id as absent.
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func askOutcome(result *conversation.AskResult) string {
	switch {
	case result.NoContext:
		return "no_context"
	case result.Degraded:
		return "degraded"
	default:
		return "answered"
	}
}

func askFailureOutcome(err error) string {
	switch {
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidInput):
		return "invalid"
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
