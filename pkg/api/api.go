package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/request"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

// API is a client of a remote transactions REST API
type API interface {
	SaveTransaction(ctx context.Context, trx *types.Transaction) error
	ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error)
}

// TransactionDTO is a transaction as the remote API stores it
type TransactionDTO struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func newTransactionDTO(trx *types.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          trx.ID,
		Description: trx.Description,
		Price:       json.Number(trx.Price.String()),
		Category:    trx.Category,
		Type:        string(trx.Type),
		CreatedAt:   trx.CreatedAt,
	}
}

func (dto TransactionDTO) toTransaction() (types.Transaction, error) {
	price, err := decimal.NewFromString(dto.Price.String())
	if err != nil {
		return types.Transaction{}, errors.Wrapf(err, "Bad price of transaction %v", dto.ID)
	}
	return types.Transaction{
		ID:          dto.ID,
		Description: dto.Description,
		Price:       price,
		Category:    dto.Category,
		Type:        types.TransactionType(dto.Type),
		CreatedAt:   dto.CreatedAt.UTC(),
	}, nil
}

type api struct {
	baseURL  string
	sendOpts []request.SendOpt
}

func (a *api) SaveTransaction(ctx context.Context, trx *types.Transaction) error {
	req := request.PostJSON(a.baseURL+"/transactions", newTransactionDTO(trx))
	var created TransactionDTO
	if err := request.Do(ctx, req, a.sendOpts...).DecodeJSON(&created); err != nil {
		return errors.Wrap(err, "Failed to create transaction")
	}
	return nil
}

func (a *api) ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error) {
	params := url.Values{}
	params.Set("_sort", "createdAt")
	params.Set("_order", "desc")
	params.Set("_limit", strconv.Itoa(query.EffectiveLimit()))
	if query != nil {
		if search := strings.TrimSpace(query.Search); search != "" {
			params.Set("q", search)
		}
	}

	req := request.Get(a.baseURL + "/transactions?" + params.Encode()).
		WithHeader("Accept", "application/json")
	var dtos []TransactionDTO
	if err := request.Do(ctx, req, a.sendOpts...).DecodeJSON(&dtos); err != nil {
		return nil, errors.Wrap(err, "Failed to fetch transactions")
	}

	result := make([]types.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		trx, err := dto.toTransaction()
		if err != nil {
			return nil, err
		}
		result = append(result, trx)
	}
	return result, nil
}

// Opt is an option of the API client
type Opt func(a *api)

// WithHTTPClient sets a client to send requests with
func WithHTTPClient(client *http.Client) Opt {
	return func(a *api) {
		a.sendOpts = append(a.sendOpts, request.WithClient(client))
	}
}

// NewAPI returns a client of an API hosted at baseURL
func NewAPI(baseURL string, opts ...Opt) API {
	a := &api{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
