package user

import "context"

// Repository persists user accounts.
// FindBy* return an error wrapping ErrUserNotFound when no row matches, and
// Create returns one wrapping ErrUsernameTaken on a duplicate username.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Issue(ctx context.Context, u *User) (*Token, error)
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
