package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the current non-negative toco holding of a user.
type Balance struct {
	UserID    string
	Value     decimal.Decimal
	UpdatedAt time.Time
}

// BalanceStore defines persistence operations for balances.
//
// Adjust applies delta (which may be negative) to the user's balance and
// returns the new value. The store enforces the non-negative invariant
// atomically with the mutation: a violation surfaces as a ConstraintError
// named ConstraintBalanceNonNegative, a missing balance row as ErrNotFound.
// The store never reveals which user ID a not-found refers to; callers that
// issue multiple adjustments must track that themselves.
type BalanceStore interface {
	Adjust(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)
	Get(ctx context.Context, userID string) (*Balance, error)
}
