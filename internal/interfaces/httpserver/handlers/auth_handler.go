package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/infrastructure/metrics"
	"github.com/janhq/support-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/support-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// AuthService is the account surface used by the auth endpoints.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	Login(ctx context.Context, username, password string) (*user.Token, error)
}

// AuthHandler exposes registration and login.
type AuthHandler struct {
	service AuthService
	log     zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/v1/auth/register
// @Summary Register a user
// @Description Creates an account with a unique username.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.CredentialsRequest true "Credentials"
// @Success 201 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		metrics.RecordAuth("register", "invalid")
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Username and password are required")
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuth("register", authStatus(err))
		responses.HandleError(c, err, "Registration failed")
		return
	}

	metrics.RecordAuth("register", "success")
	h.log.Info().Str("user_id", u.ID).Msg("user registered")
	c.JSON(http.StatusCreated, responses.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Exchanges a username and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.CredentialsRequest true "Credentials"
// @Success 200 {object} responses.TokenResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		metrics.RecordAuth("login", "invalid")
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Username and password are required")
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuth("login", authStatus(err))
		responses.HandleError(c, err, "Login failed")
		return
	}

	metrics.RecordAuth("login", "success")
	c.JSON(http.StatusOK, responses.FromToken(token))
}

func authStatus(err error) string {
	switch {
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		return "invalid"
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized):
		return "rejected"
	default:
		return "error"
	}
}
