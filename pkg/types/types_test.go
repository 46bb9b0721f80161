package types

import (
	"math/rand"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, TransactionTypeIncome.Valid())
	assert.True(t, TransactionTypeOutcome.Valid())
	assert.False(t, TransactionType("").Valid())
	assert.False(t, TransactionType("expense-"+faker.Word()).Valid())
	assert.Equal(t, TransactionTypeIncome, DefaultTransactionType)
}

func TestTransactionsQuery_EffectiveLimit(t *testing.T) {
	type testCase struct {
		name  string
		query *TransactionsQuery
		want  int
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{name: "nil query", want: DefaultListLimit}
		},
		func() testCase {
			return testCase{name: "zero limit", query: &TransactionsQuery{}, want: DefaultListLimit}
		},
		func() testCase {
			return testCase{name: "negative limit", query: &TransactionsQuery{Limit: -1 - rand.Intn(10)}, want: DefaultListLimit}
		},
		func() testCase {
			limit := 1 + rand.Intn(1000)
			return testCase{name: "explicit limit", query: &TransactionsQuery{Limit: limit}, want: limit}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.EffectiveLimit())
		})
	}
}

func TestSummarize(t *testing.T) {
	type testCase struct {
		name         string
		transactions []Transaction
		want         Summary
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "empty",
				want: Summary{Income: decimal.Zero, Outcome: decimal.Zero, Total: decimal.Zero},
			}
		},
		func() testCase {
			return testCase{
				name: "income and outcome",
				transactions: []Transaction{
					{Type: TransactionTypeIncome, Price: decimal.RequireFromString("5000")},
					{Type: TransactionTypeOutcome, Price: decimal.RequireFromString("120.50")},
					{Type: TransactionTypeIncome, Price: decimal.RequireFromString("10.25")},
					{Type: TransactionTypeOutcome, Price: decimal.RequireFromString("0.25")},
				},
				want: Summary{
					Income:  decimal.RequireFromString("5010.25"),
					Outcome: decimal.RequireFromString("120.75"),
					Total:   decimal.RequireFromString("4889.5"),
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.transactions)
			assert.True(t, tt.want.Income.Equal(got.Income), "income: %v", got.Income)
			assert.True(t, tt.want.Outcome.Equal(got.Outcome), "outcome: %v", got.Outcome)
			assert.True(t, tt.want.Total.Equal(got.Total), "total: %v", got.Total)
		})
	}
}
