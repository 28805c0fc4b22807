package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConstraintViolated = errors.New("constraint violated")
)

// ConstraintBalanceNonNegative names the storage constraint that keeps
// balances from going below zero. Storage backends must report violations
// of their native check under this name.
const ConstraintBalanceNonNegative = "balance_nonnegative"

// ConstraintError reports a storage constraint violation by name. Storage
// backends translate their native constraint failures into this type so
// callers can branch without inspecting driver error strings.
type ConstraintError struct {
	Name string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violated: %s", e.Name)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolated
}

// UserNotFoundError reports that a specific user has no balance row.
type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientFundsError reports that a transfer would drive the sender's
// balance below zero.
type InsufficientFundsError struct {
	UserID string
	Amount decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("user %s has insufficient funds to send %s", e.UserID, e.Amount)
}
