package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/config"
	"github.com/janhq/support-api/internal/domain/user"
)

type accessClaims struct {
	Username          string `json:"username,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 access tokens and validates both local tokens and,
// when a JWKS URL is configured, RS256 tokens from an external identity provider.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	jwks     *keyfunc.JWKS
	log      zerolog.Logger
	now      func() time.Time

	// jwksIssuer is the only iss accepted on tokens verified against the JWKS.
	jwksIssuer string
}

// NewTokenService fetches the JWKS when AUTH_JWKS_URL is set.
func NewTokenService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*TokenService, error) {
	s := &TokenService{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.AuthIssuer,
		audience:   cfg.AuthAudience,
		jwksIssuer: cfg.AuthJWKSIssuer,
		ttl:        cfg.AccessTokenTTL(),
		log:        log.With().Str("component", "token-service").Logger(),
		now:        time.Now,
	}

	if cfg.AuthJWKSURL == "" {
		return s, nil
	}

	if cfg.AuthJWKSIssuer == "" {
		return nil, errors.New("AUTH_JWKS_ISSUER is required when AUTH_JWKS_URL is set")
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			s.log.Error().Err(err).Msg("jwks refresh error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	s.jwks = jwks
	return s, nil
}

// Close stops background JWKS refreshes.
func (s *TokenService) Close() {
	if s.jwks != nil {
		s.jwks.EndBackground()
	}
}

// Issue signs an access token whose subject is the user id.
func (s *TokenService) Issue(_ context.Context, u *user.User) (*user.Token, error) {
	now := s.now()
	claims := accessClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &user.Token{AccessToken: signed, TokenType: user.TokenTypeBearer, ExpiresIn: s.ttl}, nil
}

// Verify parses and validates a bearer token.
func (s *TokenService) Verify(_ context.Context, tokenString string) (*user.Claims, error) {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	if s.jwks != nil {
		methods = append(methods, "RS256", "RS384", "RS512")
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFor,
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, user.ErrInvalidToken
	}

	local := token.Method.Alg() == jwt.SigningMethodHS256.Alg()
	if local && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", user.ErrInvalidToken, claims.Issuer)
	}
	if !local && claims.Issuer != s.jwksIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", user.ErrInvalidToken, claims.Issuer)
	}
	if !local && s.audience != "" && !containsAudience(claims.Audience, s.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", user.ErrInvalidToken)
	}

	username := claims.Username
	if username == "" {
		username = claims.PreferredUsername
	}
	return &user.Claims{Subject: claims.Subject, Username: username, Local: local}, nil
}

func (s *TokenService) keyFor(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return s.secret, nil
	case *jwt.SigningMethodRSA:
		if s.jwks == nil {
			return nil, errors.New("external tokens are not accepted")
		}
		return s.jwks.Keyfunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

var (
	_ user.TokenIssuer   = (*TokenService)(nil)
	_ user.TokenVerifier = (*TokenService)(nil)
)
