package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/shopspring/decimal"
)

// BalanceStore implements domain.BalanceStore using SQLite.
type BalanceStore struct {
	db querier
}

// Adjust applies delta to the user's balance and returns the new value.
// The mutation and the non-negative check are a single statement: the
// balance_nonnegative CHECK constraint rejects an overdraft atomically,
// so two concurrent debits can never both observe a pre-decrement value
// that permits one. The balance_integer CHECK rejects any result the
// column can no longer hold as a 64-bit integer; arithmetic past that
// range fails loudly instead of degrading to floating point.
func (s *BalanceStore) Adjust(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	now := time.Now().UTC()
	var value string
	err := s.db.QueryRowContext(ctx,
		`UPDATE balances SET value = value + ?, updated_at = ?
		 WHERE user_id = ?
		 RETURNING value`,
		delta.String(), now, userID,
	).Scan(&value)
	if err != nil {
		err = classifyError(err)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConstraintViolated) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("adjust balance: %w", err)
	}

	newValue, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance value %q: %w", value, err)
	}
	return newValue, nil
}

func (s *BalanceStore) Get(ctx context.Context, userID string) (*domain.Balance, error) {
	balance := &domain.Balance{}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, value, updated_at FROM balances WHERE user_id = ?`, userID,
	).Scan(&balance.UserID, &value, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query balance: %w", err)
	}

	balance.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse balance value %q: %w", value, err)
	}
	return balance, nil
}
