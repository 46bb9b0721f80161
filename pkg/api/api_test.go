package api

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gopkg.in/h2non/gock.v1"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/request"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

func randomTransaction() *types.Transaction {
	return &types.Transaction{
		ID:          faker.UUIDHyphenated(),
		Description: faker.Sentence(),
		Price:       decimal.RequireFromString(strconv.Itoa(rand.Intn(10000)) + ".5"),
		Category:    faker.Word(),
		Type:        types.TransactionTypeOutcome,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func Test_API_SaveTransaction(t *testing.T) {
	defer gock.Off()
	type testCase struct {
		name   string
		setup  func(baseURL string, trx *types.Transaction)
		assert func(t *testing.T, err error)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "post transaction",
				setup: func(baseURL string, trx *types.Transaction) {
					gock.New(baseURL).
						Post("/transactions").
						MatchType("json").
						JSON(map[string]interface{}{
							"id":          trx.ID,
							"description": trx.Description,
							"price":       trx.Price.InexactFloat64(),
							"category":    trx.Category,
							"type":        string(trx.Type),
							"createdAt":   trx.CreatedAt.Format(time.RFC3339),
						}).
						Reply(201).
						JSON(newTransactionDTO(trx))
				},
				assert: func(t *testing.T, err error) {
					assert.NoError(t, err)
					assert.True(t, gock.IsDone())
				},
			}
		},
		func() testCase {
			body := faker.Sentence()
			return testCase{
				name: "remote failure",
				setup: func(baseURL string, trx *types.Transaction) {
					gock.New(baseURL).
						Post("/transactions").
						Reply(500).
						BodyString(body)
				},
				assert: func(t *testing.T, err error) {
					if !assert.Error(t, err) {
						return
					}
					assert.Equal(t, request.HTTPError{
						StatusCode: 500,
						Status:     http.StatusText(500),
						Body:       body,
					}, errors.Cause(err))
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			baseURL := "https://transactions-api." + faker.Word() + ".com"
			trx := randomTransaction()
			tt.setup(baseURL, trx)
			err := NewAPI(baseURL + "/").SaveTransaction(context.TODO(), trx)
			tt.assert(t, err)
		})
	}
}

func Test_API_ListTransactions(t *testing.T) {
	defer gock.Off()
	type testCase struct {
		name   string
		query  *types.TransactionsQuery
		setup  func(baseURL string)
		assert func(t *testing.T, got []types.Transaction, err error)
	}
	tests := []func() testCase{
		func() testCase {
			want := []types.Transaction{*randomTransaction(), *randomTransaction()}
			search := faker.Word()
			return testCase{
				name:  "list with search",
				query: &types.TransactionsQuery{Search: " " + search + " ", Limit: 10},
				setup: func(baseURL string) {
					gock.New(baseURL).
						Get("/transactions").
						MatchParams(map[string]string{
							"_sort":  "createdAt",
							"_order": "desc",
							"_limit": "10",
							"q":      search,
						}).
						Reply(200).
						JSON([]interface{}{
							map[string]interface{}{
								"id":          want[0].ID,
								"description": want[0].Description,
								"price":       want[0].Price.InexactFloat64(),
								"category":    want[0].Category,
								"type":        want[0].Type,
								"createdAt":   want[0].CreatedAt,
							},
							newTransactionDTO(&want[1]),
						})
				},
				assert: func(t *testing.T, got []types.Transaction, err error) {
					if !assert.NoError(t, err) {
						return
					}
					if !assert.Len(t, got, len(want)) {
						return
					}
					for i := range want {
						assert.Equal(t, want[i].ID, got[i].ID)
						assert.True(t, want[i].Price.Equal(got[i].Price))
						assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
						assert.Equal(t, want[i].Type, got[i].Type)
					}
					assert.True(t, gock.IsDone())
				},
			}
		},
		func() testCase {
			return testCase{
				name: "default query",
				setup: func(baseURL string) {
					gock.New(baseURL).
						Get("/transactions").
						MatchParam("_limit", strconv.Itoa(types.DefaultListLimit)).
						ParamPresent("_sort").
						Reply(200).
						JSON([]interface{}{})
				},
				assert: func(t *testing.T, got []types.Transaction, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assert.Empty(t, got)
					assert.True(t, gock.IsDone())
				},
			}
		},
		func() testCase {
			return testCase{
				name:  "bad price",
				query: &types.TransactionsQuery{},
				setup: func(baseURL string) {
					gock.New(baseURL).
						Get("/transactions").
						Reply(200).
						JSON([]interface{}{map[string]interface{}{"id": "trx-1", "price": "ten"}})
				},
				assert: func(t *testing.T, got []types.Transaction, err error) {
					assert.Error(t, err)
					assert.Nil(t, got)
				},
			}
		},
		func() testCase {
			return testCase{
				name:  "remote failure",
				query: &types.TransactionsQuery{},
				setup: func(baseURL string) {
					gock.New(baseURL).
						Get("/transactions").
						Reply(404)
				},
				assert: func(t *testing.T, got []types.Transaction, err error) {
					if assert.Error(t, err) {
						assert.Contains(t, err.Error(), "Failed to fetch transactions")
						assert.Equal(t, 404, errors.Cause(err).(request.HTTPError).StatusCode)
					}
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			baseURL := "https://transactions-api." + faker.Word() + ".com"
			tt.setup(baseURL)
			got, err := NewAPI(baseURL).ListTransactions(context.TODO(), tt.query)
			tt.assert(t, got, err)
		})
	}
}
