package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minitoco/minitoco/internal/domain"
	"github.com/shopspring/decimal"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// Create inserts the user and their balance row (seeded with the initial
// grant) in one database transaction.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, initialBalance decimal.Decimal) error {
	now := time.Now().UTC()
	id := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, user.Email, user.FirstName, user.LastName, user.PasswordHash, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO balances (user_id, value, updated_at) VALUES (?, ?, ?)`,
		id, initialBalance.String(), now,
	)
	if err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// GetDetailByID returns the user together with their current balance in a
// single query.
func (r *UserRepository) GetDetailByID(ctx context.Context, id string) (*domain.UserDetail, error) {
	detail := &domain.UserDetail{}
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.created_at, u.updated_at,
		        b.value, b.updated_at
		 FROM users u JOIN balances b ON b.user_id = u.id
		 WHERE u.id = ?`, id,
	).Scan(
		&detail.User.ID, &detail.User.Email, &detail.User.FirstName, &detail.User.LastName,
		&detail.User.PasswordHash, &detail.User.CreatedAt, &detail.User.UpdatedAt,
		&value, &detail.Balance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user detail: %w", err)
	}

	detail.Balance.UserID = detail.User.ID
	detail.Balance.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse balance value %q: %w", value, err)
	}
	return detail, nil
}
