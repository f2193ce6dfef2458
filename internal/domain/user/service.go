package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/janhq/support-api/internal/utils/platformerrors"
)

// Service implements registration, login and bearer authentication.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	issuer   TokenIssuer
	verifier TokenVerifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewService wires the credential store.
func NewService(repo Repository, hasher PasswordHasher, issuer TokenIssuer, verifier TokenVerifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		log:      log.With().Str("component", "user-service").Logger(),
		now:      time.Now,
	}
}

// Register creates an account. Usernames are compared verbatim; passwords are never stored in clear.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Username and password are required", nil, "")
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, usernameTaken(ctx)
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup user")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to hash password", err, "")
	}

	u := &User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashed,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, ErrUsernameTaken) {
			return nil, usernameTaken(ctx)
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create user")
	}

	s.log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Username and password are required", nil, "")
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				"User not found", ErrUserNotFound, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup user")
	}

	if err := s.hasher.Compare(u.HashedPassword, password); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"Incorrect password", ErrIncorrectPassword, "")
	}

	token, err := s.issuer.Issue(ctx, u)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to issue token", err, "")
	}
	return token, nil
}

// Authenticate resolves a bearer token to the calling principal.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, unauthorized(ctx, "missing bearer token", ErrInvalidToken)
	}

	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, unauthorized(ctx, "Could not validate credentials", err)
	}
	if claims.Subject == "" {
		return nil, unauthorized(ctx, "Could not validate credentials", ErrInvalidToken)
	}

	if !claims.Local {
		return &Principal{UserID: claims.Subject, Username: claims.Username}, nil
	}

	u, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, unauthorized(ctx, "Could not validate credentials", err)
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup token subject")
	}
	return &Principal{UserID: u.ID, Username: u.Username}, nil
}

func usernameTaken(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		"Username already registered", ErrUsernameTaken, "")
}

func unauthorized(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, message, err, "")
}
