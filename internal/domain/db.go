package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres, etc.) owns its own migration
// files and strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// TxStores is the set of stores visible inside one atomic unit of work.
type TxStores interface {
	Balances() BalanceStore
	Transactions() TransactionStore
}

// UnitOfWork runs fn against transaction-bound stores. Every mutation fn
// performs commits atomically when fn returns nil and is rolled back in
// full when fn returns an error, so no partial transfer is ever visible
// to a concurrent reader.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(stores TxStores) error) error
}
