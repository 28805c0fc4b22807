package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/minitoco/minitoco/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database handle and hands out the repositories backed
// by it. It implements domain.Database and domain.UnitOfWork.
type DB struct {
	SqlDB *sql.DB
}

// querier is the subset of *sql.DB and *sql.Tx the stores need, so the
// same store code serves both standalone calls and calls inside a
// unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite allows a single writer; one connection serializes all units
	// of work at the store, which is where the isolation contract lives.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Users returns the SQLite-backed user repository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

// Balances returns the SQLite-backed balance store.
func (db *DB) Balances() *BalanceStore {
	return &BalanceStore{db: db.SqlDB}
}

// Transactions returns the SQLite-backed transaction store.
func (db *DB) Transactions() *TransactionStore {
	return &TransactionStore{db: db.SqlDB}
}

// Run executes fn inside one database transaction. The stores passed to fn
// are bound to that transaction; every mutation commits together when fn
// returns nil and is rolled back in full otherwise.
func (db *DB) Run(ctx context.Context, fn func(stores domain.TxStores) error) error {
	tx, err := db.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStores{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStores hands out stores bound to a single open transaction.
type txStores struct {
	tx *sql.Tx
}

func (s *txStores) Balances() domain.BalanceStore {
	return &BalanceStore{db: s.tx}
}

func (s *txStores) Transactions() domain.TransactionStore {
	return &TransactionStore{db: s.tx}
}
