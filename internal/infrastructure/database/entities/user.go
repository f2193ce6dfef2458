package entities

import (
	"time"

	"github.com/janhq/support-api/internal/domain/user"
)

// User is the users table row.
type User struct {
	ID             string `gorm:"primaryKey;size:36"`
	Username       string `gorm:"size:255;uniqueIndex:idx_users_username"`
	HashedPassword string `gorm:"size:255"`
	CreatedAt      time.Time
}

func (User) TableName() string { return "users" }

func NewSchemaUser(u *user.User) *User {
	return &User{
		ID:             u.ID,
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt.UTC(),
	}
}

// EtoD converts the row to its domain value.
func (e *User) EtoD() *user.User {
	return &user.User{
		ID:             e.ID,
		Username:       e.Username,
		HashedPassword: e.HashedPassword,
		CreatedAt:      e.CreatedAt.UTC(),
	}
}
