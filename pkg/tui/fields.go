package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

// draftValues are bound to huh inputs while the user is typing
type draftValues struct {
	Description string
	Price       string
	Category    string
	Type        string
}

func newDraftValues(draft transactions.Draft) *draftValues {
	return &draftValues{
		Description: draft.Description,
		Price:       draft.Price,
		Category:    draft.Category,
		Type:        draft.Type,
	}
}

func (v *draftValues) fields() map[string]string {
	return map[string]string{
		transactions.FieldDescription: v.Description,
		transactions.FieldPrice:       v.Price,
		transactions.FieldCategory:    v.Category,
		transactions.FieldType:        v.Type,
	}
}

// FieldValidator checks a single input with the same rules the form is using
func FieldValidator(field string) func(string) error {
	return func(value string) error {
		return transactions.ValidateField(field, value)
	}
}

func typeOptions() []huh.Option[string] {
	labels := map[types.TransactionType]string{
		types.TransactionTypeIncome:  "Income",
		types.TransactionTypeOutcome: "Outcome",
	}
	options := make([]huh.Option[string], 0, len(types.TransactionTypes))
	for _, trxType := range types.TransactionTypes {
		options = append(options, huh.NewOption(labels[trxType], string(trxType)))
	}
	return options
}

func newTransactionForm(values *draftValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Placeholder("Salary, groceries...").
				Value(&values.Description).
				Validate(FieldValidator(transactions.FieldDescription)),

			huh.NewInput().
				Title("Price").
				Placeholder("0.00").
				Value(&values.Price).
				Validate(FieldValidator(transactions.FieldPrice)),

			huh.NewInput().
				Title("Category").
				Placeholder("Job, food...").
				Value(&values.Category).
				Validate(FieldValidator(transactions.FieldCategory)),

			huh.NewSelect[string]().
				Title("Type").
				Options(typeOptions()...).
				Value(&values.Type),
		),
	)
}

func fillWithHuh(values *draftValues) error {
	return newTransactionForm(values).Run()
}

const (
	menuNew     = "new"
	menuList    = "list"
	menuSummary = "summary"
	menuQuit    = "quit"
)

func chooseWithHuh(triggerLabel string) (string, error) {
	choice := menuNew
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transactions").
				Options(
					huh.NewOption(triggerLabel, menuNew),
					huh.NewOption("List transactions", menuList),
					huh.NewOption("Summary", menuSummary),
					huh.NewOption("Quit", menuQuit),
				).
				Value(&choice),
		),
	).Run()
	return choice, err
}
