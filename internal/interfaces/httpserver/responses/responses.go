package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code      string `json:"code"` // UUID from PlatformError
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses.
// Internal and database errors are reported with the fallback message only.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())
		message := fallback
		if statusCode < http.StatusInternalServerError {
			message = domainErr.Message
		}

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:      domainErr.GetUUID(),
			Error:     message,
			Message:   message,
			RequestID: requestID(reqCtx, domainErr.GetRequestID()),
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:     fallback,
		Message:   fallback,
		RequestID: requestID(reqCtx, ""),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, "")

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:      err.GetUUID(),
		Error:     message,
		Message:   message,
		RequestID: requestID(reqCtx, err.GetRequestID()),
	})
}

func requestID(reqCtx *gin.Context, fromErr string) string {
	if fromErr != "" {
		return fromErr
	}
	return platformerrors.RequestIDFromContext(reqCtx.Request.Context())
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// FromToken maps an issued token to its DTO.
func FromToken(token *user.Token) TokenResponse {
	return TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}
}

// AskResponse is the answer to a question.
type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	Persisted      bool   `json:"persisted"`
}

// FromAskResult maps the orchestrator result. persisted is false when the bot turn could not be stored.
func FromAskResult(result *conversation.AskResult, persisted bool) AskResponse {
	return AskResponse{
		Answer:         result.Answer,
		ConversationID: result.ConversationID,
		Persisted:      persisted,
	}
}

// HistoryItem is one turn of a conversation transcript.
type HistoryItem struct {
	Sender         string `json:"sender"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
}

// FromTurns maps turns to history items, always returning a non-nil slice.
func FromTurns(turns []conversation.Turn) []HistoryItem {
	items := make([]HistoryItem, 0, len(turns))
	for _, t := range turns {
		items = append(items, HistoryItem{
			Sender:         string(t.Sender),
			Message:        t.Message,
			ConversationID: t.ConversationID,
			Timestamp:      t.CreatedAt.UTC().Format(timestampLayout),
		})
	}
	return items
}

// ConversationItem is one entry of the conversation listing.
type ConversationItem struct {
	ConversationID string `json:"conversation_id"`
	Preview        string `json:"preview"`
	Timestamp      string `json:"timestamp"`
	Sender         string `json:"sender"`
}

// FromSummaries maps conversation summaries, always returning a non-nil slice.
func FromSummaries(summaries []conversation.Summary) []ConversationItem {
	items := make([]ConversationItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, ConversationItem{
			ConversationID: s.ConversationID,
			Preview:        s.Preview,
			Timestamp:      s.Timestamp.UTC().Format(timestampLayout),
			Sender:         string(s.Sender),
		})
	}
	return items
}

const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// HealthResponse is returned by the probe endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
