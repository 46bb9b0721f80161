package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is either income or outcome
type TransactionType string

const (
	// TransactionTypeIncome marks money coming in
	TransactionTypeIncome TransactionType = "income"

	// TransactionTypeOutcome marks money going out
	TransactionTypeOutcome TransactionType = "outcome"
)

// DefaultTransactionType is a type new drafts start with
const DefaultTransactionType = TransactionTypeIncome

// TransactionTypes lists all known types in the order they are offered to users
var TransactionTypes = []TransactionType{TransactionTypeIncome, TransactionTypeOutcome}

// Valid checks the type is one of known types
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeOutcome
}

// Transaction is a recorded transaction
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DefaultListLimit is used when query has no limit
const DefaultListLimit = 100

// TransactionsQuery narrows down listed transactions
type TransactionsQuery struct {
	// Search is a case insensitive substring of description or category
	Search string `json:"search,omitempty"`

	// Limit is max number of transactions to return, DefaultListLimit if zero
	Limit int `json:"limit,omitempty"`
}

// EffectiveLimit returns limit to apply
func (q *TransactionsQuery) EffectiveLimit() int {
	if q == nil || q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

// Summary is a totals of transactions
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Total   decimal.Decimal `json:"total"`
}

// Summarize calculates totals of given transactions
func Summarize(transactions []Transaction) Summary {
	summary := Summary{Income: decimal.Zero, Outcome: decimal.Zero}
	for _, trx := range transactions {
		switch trx.Type {
		case TransactionTypeIncome:
			summary.Income = summary.Income.Add(trx.Price)
		case TransactionTypeOutcome:
			summary.Outcome = summary.Outcome.Add(trx.Price)
		}
	}
	summary.Total = summary.Income.Sub(summary.Outcome)
	return summary
}
