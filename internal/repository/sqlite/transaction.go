package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minitoco/minitoco/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionStore implements domain.TransactionStore using SQLite.
type TransactionStore struct {
	db querier
}

// Append records a transaction with a server-assigned UUID and timestamp
// and returns it with both counterpart emails filled in.
func (s *TransactionStore) Append(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*domain.Transaction, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, from_user_id, to_user_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, fromUserID, toUserID, amount.String(), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", classifyError(err))
	}

	txn := &domain.Transaction{
		ID:         id,
		Amount:     amount,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  now,
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT f.email, t.email FROM users f, users t WHERE f.id = ? AND t.id = ?`,
		fromUserID, toUserID,
	).Scan(&txn.FromUserEmail, &txn.ToUserEmail)
	if err != nil {
		return nil, fmt.Errorf("query counterpart emails: %w", classifyError(err))
	}
	return txn, nil
}

// ListBySender returns every transaction the user sent, newest first.
// The id tie-break keeps ordering stable for records sharing a timestamp.
func (s *TransactionStore) ListBySender(ctx context.Context, fromUserID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.amount, t.from_user_id, f.email, t.to_user_id, u.email, t.created_at
		 FROM transactions t
		 JOIN users f ON f.id = t.from_user_id
		 JOIN users u ON u.id = t.to_user_id
		 WHERE t.from_user_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var amount string
		if err := rows.Scan(&txn.ID, &amount, &txn.FromUserID, &txn.FromUserEmail,
			&txn.ToUserID, &txn.ToUserEmail, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
