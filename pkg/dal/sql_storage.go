package dal

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

var setupStatements = []string{`
CREATE TABLE IF NOT EXISTS transactions(
	id          varchar(36) NOT NULL PRIMARY KEY,
	description varchar(255) NOT NULL,
	price       varchar(64) NOT NULL,
	category    varchar(255) NOT NULL,
	type        varchar(16) NOT NULL,
	created_at  timestamp NOT NULL
)`, `
CREATE INDEX IF NOT EXISTS transactions_created_at ON transactions(created_at)`,
}

type sqlStorage struct {
	db *sql.DB
}

func (s *sqlStorage) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup SQL storage")
	for _, statement := range setupStatements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return errors.Wrap(err, "Failed to setup storage")
		}
	}
	return nil
}

func (s *sqlStorage) SaveTransaction(ctx context.Context, trx *types.Transaction) error {
	if _, err := s.db.ExecContext(ctx, `
	INSERT INTO transactions(
		id,
		description,
		price,
		category,
		type,
		created_at
	)
	VALUES($1, $2, $3, $4, $5, $6)
	`, trx.ID, trx.Description, trx.Price, trx.Category, string(trx.Type), trx.CreatedAt.UTC()); err != nil {
		return errors.Wrapf(err, "Failed to insert transaction %v", trx.ID)
	}
	return nil
}

func (s *sqlStorage) ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error) {
	var search string
	if query != nil {
		search = strings.ToLower(strings.TrimSpace(query.Search))
	}

	statement := `
	SELECT
		id, description, price, category, type, created_at
	FROM transactions`
	args := []interface{}{}
	if search != "" {
		statement += `
	WHERE LOWER(description) LIKE $1 OR LOWER(category) LIKE $1
	ORDER BY created_at DESC
	LIMIT $2`
		args = append(args, "%"+search+"%", query.EffectiveLimit())
	} else {
		statement += `
	ORDER BY created_at DESC
	LIMIT $1`
		args = append(args, query.EffectiveLimit())
	}

	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query transactions")
	}
	defer rows.Close()

	result := []types.Transaction{}
	for rows.Next() {
		var trx types.Transaction
		var trxType string
		if err := rows.Scan(
			&trx.ID,
			&trx.Description,
			&trx.Price,
			&trx.Category,
			&trxType,
			&trx.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "Failed to read transaction")
		}
		trx.Type = types.TransactionType(trxType)
		trx.CreatedAt = trx.CreatedAt.UTC()
		result = append(result, trx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to read transactions")
	}
	return result, nil
}

// SQLStorageOpt is an option of SQL storage
type SQLStorageOpt func(s *sqlStorage)

// WithSQLDb will set an explicit db instance for a storage
func WithSQLDb(db *sql.DB) SQLStorageOpt {
	return func(s *sqlStorage) {
		s.db = db
	}
}

// NewSQLStorage returns an instance of a sql storage
func NewSQLStorage(opts ...SQLStorageOpt) (Storage, error) {
	storage := &sqlStorage{}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.db == nil {
		return nil, errors.New("SQL storage requires a db")
	}
	return storage, nil
}
