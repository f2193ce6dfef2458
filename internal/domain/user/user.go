package user

import (
	"errors"
	"time"
)

// TokenTypeBearer is the only token type issued by the service.
const TokenTypeBearer = "bearer"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already registered")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidToken      = errors.New("invalid token")
)

// User is a registered account.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	CreatedAt      time.Time
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Claims are the verified contents of a bearer token.
type Claims struct {
	Subject  string
	Username string
	// Local is true for tokens signed by this service; those must map to a stored user.
	Local bool
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   string
	Username string
}
