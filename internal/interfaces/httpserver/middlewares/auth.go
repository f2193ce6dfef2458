package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/interfaces/httpserver/responses"
	"github.com/janhq/support-api/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.Principal, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller's principal.
func AuthMiddleware(authenticator Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			c.Header("WWW-Authenticate", "Bearer")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "Not authenticated")
			return
		}

		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			responses.HandleError(c, err, "Could not validate credentials")
			return
		}

		c.Set(principalContextKey, *principal)
		c.Set("user_id", principal.UserID)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (user.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return user.Principal{}, false
	}
	principal, ok := val.(user.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
