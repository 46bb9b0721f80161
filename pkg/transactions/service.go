package transactions

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

//go:generate mockgen -destination=../internal/mocks/transactions.go -package=mocks github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions Store,Service

var logger = diag.CreateLogger()

// Store persists transactions
type Store interface {
	SaveTransaction(ctx context.Context, trx *types.Transaction) error
	ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error)
}

// Service records and lists transactions
type Service interface {
	CreateTransaction(ctx context.Context, trx *NewTransaction) (*types.Transaction, error)
	ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error)
	Summary(ctx context.Context) (*types.Summary, error)
}

var summaryQuery = types.TransactionsQuery{Limit: math.MaxInt32}

type service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func (svc *service) CreateTransaction(ctx context.Context, newTrx *NewTransaction) (*types.Transaction, error) {
	trx := &types.Transaction{
		ID:          svc.newID(),
		Description: newTrx.Description,
		Price:       newTrx.Price,
		Category:    newTrx.Category,
		Type:        newTrx.Type,
		CreatedAt:   svc.now().UTC(),
	}
	if err := svc.store.SaveTransaction(ctx, trx); err != nil {
		return nil, errors.Wrap(err, "Failed to save transaction")
	}
	logger.
		WithData(diag.MsgData{"id": trx.ID, "type": trx.Type, "category": trx.Category}).
		Info(ctx, "Transaction created")
	return trx, nil
}

func (svc *service) ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error) {
	if query == nil {
		query = &types.TransactionsQuery{}
	}
	result, err := svc.store.ListTransactions(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list transactions")
	}
	return result, nil
}

func (svc *service) Summary(ctx context.Context) (*types.Summary, error) {
	query := summaryQuery
	all, err := svc.store.ListTransactions(ctx, &query)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to fetch transactions for summary")
	}
	summary := types.Summarize(all)
	return &summary, nil
}

// ServiceOpt is an option of the transactions service
type ServiceOpt func(svc *service)

// WithNow sets a source of the current time
func WithNow(now func() time.Time) ServiceOpt {
	return func(svc *service) {
		svc.now = now
	}
}

func withNewID(newID func() string) ServiceOpt {
	return func(svc *service) {
		svc.newID = newID
	}
}

// NewService creates a service that keeps transactions in a given store
func NewService(store Store, opts ...ServiceOpt) Service {
	svc := &service{
		store: store,
		now:   time.Now,
		newID: func() string {
			return uuid.NewV4().String()
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}
