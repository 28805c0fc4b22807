package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferService moves tocos between users. A transfer debits the sender,
// credits the receiver, and appends a transaction record as one atomic unit
// of work; it either commits in full or leaves no trace. The service holds
// no state between calls; all isolation is delegated to the store.
type TransferService struct {
	uow          domain.UnitOfWork
	transactions domain.TransactionStore
	logger       *slog.Logger
}

// NewTransferService creates a new TransferService.
func NewTransferService(uow domain.UnitOfWork, transactions domain.TransactionStore, logger *slog.Logger) *TransferService {
	return &TransferService{uow: uow, transactions: transactions, logger: logger}
}

// Transfer sends amount from one user to another and returns the created
// transaction together with the sender's remaining balance.
//
// The caller guarantees amount > 0 and fromUserID != toUserID; neither is
// re-checked here.
//
// The three mutations run in a fixed order: debit sender, credit receiver,
// append the record. The store reports a missing balance row without naming
// the user, so the senderFound flag, set the moment the debit succeeds,
// decides which party a not-found blames. Record-after ordering also
// guarantees no transaction row can exist for a transfer that failed the
// balance check.
func (s *TransferService) Transfer(ctx context.Context, amount decimal.Decimal, fromUserID, toUserID string) (*domain.TransferResult, error) {
	var result domain.TransferResult
	senderFound := false

	err := s.uow.Run(ctx, func(stores domain.TxStores) error {
		finalBalance, err := stores.Balances().Adjust(ctx, fromUserID, amount.Neg())
		if err != nil {
			return err
		}
		senderFound = true

		if _, err := stores.Balances().Adjust(ctx, toUserID, amount); err != nil {
			return err
		}

		txn, err := stores.Transactions().Append(ctx, fromUserID, toUserID, amount)
		if err != nil {
			return err
		}

		result = domain.TransferResult{Transaction: *txn, FinalBalance: finalBalance}
		return nil
	})
	if err != nil {
		return nil, s.classify(err, amount, fromUserID, toUserID, senderFound)
	}
	return &result, nil
}

// classify maps a storage failure to a domain error. Not-found and
// non-negative-constraint failures are terminal for the given inputs;
// anything else is logged and returned unclassified for the caller to
// treat as internal (and safely retry if it wants to).
func (s *TransferService) classify(err error, amount decimal.Decimal, fromUserID, toUserID string, senderFound bool) error {
	if errors.Is(err, domain.ErrNotFound) {
		if senderFound {
			return &domain.UserNotFoundError{UserID: toUserID}
		}
		return &domain.UserNotFoundError{UserID: fromUserID}
	}

	var constraint *domain.ConstraintError
	if errors.As(err, &constraint) && constraint.Name == domain.ConstraintBalanceNonNegative {
		return &domain.InsufficientFundsError{UserID: fromUserID, Amount: amount}
	}

	s.logger.Error("transfer failed",
		"from_user_id", fromUserID,
		"to_user_id", toUserID,
		"amount", amount.String(),
		"error", err,
	)
	return fmt.Errorf("transfer: %w", err)
}

// ListTransactions returns every transaction the user sent, newest first.
func (s *TransferService) ListTransactions(ctx context.Context, fromUserID string) ([]domain.Transaction, error) {
	return s.transactions.ListBySender(ctx, fromUserID)
}
