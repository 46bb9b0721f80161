package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/form"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

var logger = diag.CreateLogger()

type createTransactionPayload struct {
	Description string                  `json:"description"`
	Price       transactions.PriceInput `json:"price"`
	Category    string                  `json:"category"`
	Type        string                  `json:"type"`
}

type listParams struct {
	Search string
	Limit  int `validate:"min=0,max=1000"`
}

type handlers struct {
	service transactions.Service
}

func (h *handlers) ping(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit) error {
	return toolkit.WriteJSON(map[string]interface{}{"ok": true})
}

func (h *handlers) listTransactions(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit) error {
	var params listParams
	if err := toolkit.BindParams().
		QueryParam("q").String(&params.Search).
		QueryParam("limit").Default("0").Int(&params.Limit).
		Validate(&params); err != nil {
		return err
	}
	list, err := h.service.ListTransactions(req.Context(), &types.TransactionsQuery{
		Search: params.Search,
		Limit:  params.Limit,
	})
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(list)
}

func (h *handlers) summary(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit) error {
	summary, err := h.service.Summary(req.Context())
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(summary)
}

func (h *handlers) createTransaction(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit) error {
	var payload createTransactionPayload
	if err := toolkit.BindPayload(&payload); err != nil {
		return err
	}

	var created *types.Transaction
	f := form.New(func(ctx context.Context, trx *transactions.NewTransaction) error {
		var err error
		created, err = h.service.CreateTransaction(ctx, trx)
		return err
	})
	values := map[string]string{
		transactions.FieldDescription: payload.Description,
		transactions.FieldPrice:       string(payload.Price),
		transactions.FieldCategory:    payload.Category,
	}
	if payload.Type != "" {
		values[transactions.FieldType] = payload.Type
	}
	for _, name := range transactions.Fields {
		value, ok := values[name]
		if !ok {
			continue
		}
		if err := f.SetField(name, value); err != nil {
			return err
		}
	}

	if err := f.Submit(req.Context()); err != nil {
		var validationErr *transactions.ValidationError
		if errors.As(err, &validationErr) {
			return router.ValidationFailedError(validationErr.Rules())
		}
		return err
	}
	return toolkit.WriteJSON(created, toolkit.WithStatus(http.StatusCreated))
}

// APIPrefix is a path prefix of all routes
const APIPrefix = "/v1"

// SetupRoutes registers transactions routes and common middleware
func SetupRoutes(r router.Router, service transactions.Service) {
	r.Use(router.MiddlewareFunc(diag.NewRecoverMiddleware()))
	r.Use(router.MiddlewareFunc(diag.NewRequestIDMiddleware()))
	r.Use(router.MiddlewareFunc(diag.NewLogRequestsMiddleware()))

	h := &handlers{service: service}
	r.HandleFunc("GET", "/healthcheck/ping", h.ping)
	r.HandleFunc("GET", "/transactions/summary", h.summary)
	r.HandleFunc("GET", "/transactions", h.listTransactions)
	r.HandleFunc("POST", "/transactions", h.createTransaction)
}

// NewRouter returns a router with all routes mounted under APIPrefix
func NewRouter(service transactions.Service) router.Router {
	r := router.CreateRouter(router.WithPrefix(APIPrefix))
	SetupRoutes(r, service)
	return r
}

// Start starts the server and blocks until ctx is done
func Start(ctx context.Context, port int, service transactions.Service) error {
	logger.Info(ctx, "Starting transactions server")
	return router.StartServer(ctx, port, NewRouter(service))
}
