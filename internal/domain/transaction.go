package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one immutable movement of tocos between two users.
// Counterpart emails are denormalized for display.
type Transaction struct {
	ID            string
	Amount        decimal.Decimal
	FromUserID    string
	FromUserEmail string
	ToUserID      string
	ToUserEmail   string
	CreatedAt     time.Time
}

// TransferResult pairs a freshly created transaction with the sender's
// balance immediately after the transfer. It is never persisted.
type TransferResult struct {
	Transaction  Transaction
	FinalBalance decimal.Decimal
}

// TransactionStore defines persistence operations for the transaction log.
//
// Append creates the record with a server-assigned ID and timestamp and
// returns it with counterpart emails filled in. Records are never updated
// or deleted.
type TransactionStore interface {
	Append(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*Transaction, error)
	ListBySender(ctx context.Context, fromUserID string) ([]Transaction, error)
}
