package dal

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"

	// Drivers available to storage
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var logger = diag.CreateLogger()

// Storage is a persistance layer
type Storage interface {
	Setup(ctx context.Context) error
	SaveTransaction(ctx context.Context, trx *types.Transaction) error
	ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error)
}

var driverAliases = map[string]string{
	"postgres":   "pgx",
	"postgresql": "pgx",
	"sqlite":     "sqlite3",
}

// OpenDB opens a db with a given driver. Postgres is served by pgx
func OpenDB(driver string, dataSourceName string) (*sql.DB, error) {
	if alias, ok := driverAliases[driver]; ok {
		driver = alias
	}
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %v db", driver)
	}
	if driver == "sqlite3" {
		// in-memory sqlite db lives as long as its single connection
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
