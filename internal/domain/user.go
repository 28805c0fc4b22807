package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered holder of a minitoco balance.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserDetail pairs a user with their current balance.
type UserDetail struct {
	User    User
	Balance Balance
}

// UserRepository defines persistence operations for users.
// Create also creates the user's balance row with the given initial grant,
// atomically with the user record.
type UserRepository interface {
	Create(ctx context.Context, user *User, initialBalance decimal.Decimal) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetDetailByID(ctx context.Context, id string) (*UserDetail, error)
}
