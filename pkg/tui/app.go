package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/dialog"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/form"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

var logger = diag.CreateLogger()

// App is a terminal front-end to record and browse transactions
type App struct {
	service transactions.Service
	header  *dialog.Header
	out     io.Writer

	choose func(triggerLabel string) (string, error)
	fill   func(values *draftValues) error
}

// AppOpt is an option of the terminal app
type AppOpt func(a *App)

// WithOutput sets where the app prints results
func WithOutput(out io.Writer) AppOpt {
	return func(a *App) {
		a.out = out
	}
}

func withChoose(choose func(triggerLabel string) (string, error)) AppOpt {
	return func(a *App) {
		a.choose = choose
	}
}

func withFill(fill func(values *draftValues) error) AppOpt {
	return func(a *App) {
		a.fill = fill
	}
}

// NewApp creates the app that records transactions with a given service
func NewApp(service transactions.Service, opts ...AppOpt) *App {
	a := &App{
		service: service,
		out:     os.Stdout,
		choose:  chooseWithHuh,
		fill:    fillWithHuh,
	}
	d := dialog.New(func() *form.Form {
		return form.New(
			func(ctx context.Context, trx *transactions.NewTransaction) error {
				_, err := a.service.CreateTransaction(ctx, trx)
				return err
			},
			form.OnStateChange(func(from form.State, to form.State) {
				logger.Debug(nil, "Form state changed: %v -> %v", from, to)
			}),
		)
	}, dialog.WithCloseOnSubmit())
	a.header = dialog.NewHeader(d)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run shows the menu until the user quits or ctx is done
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		choice, err := a.choose(a.header.TriggerLabel)
		if err != nil {
			return errors.Wrap(err, "Menu closed")
		}
		switch choice {
		case menuNew:
			if err := a.newTransaction(ctx); err != nil {
				return err
			}
		case menuList:
			if err := a.listTransactions(ctx); err != nil {
				fmt.Fprintf(a.out, "Failed to list transactions: %v\n", err)
			}
		case menuSummary:
			if err := a.summary(ctx); err != nil {
				fmt.Fprintf(a.out, "Failed to get summary: %v\n", err)
			}
		case menuQuit:
			return nil
		}
	}
}

// newTransaction returns an error only when the app can not proceed.
// Invalid or rejected transactions are reported and kept in the dialog
func (a *App) newTransaction(ctx context.Context) error {
	f := a.header.Trigger()
	values := newDraftValues(f.Draft())
	if err := a.fill(values); err != nil {
		logger.WithError(err).Info(ctx, "Transaction form cancelled")
		a.header.Dialog.Close()
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	fields := values.fields()
	for _, name := range transactions.Fields {
		if err := f.SetField(name, fields[name]); err != nil {
			return err
		}
	}

	err := a.header.Dialog.Submit(ctx)
	if err == nil {
		fmt.Fprintln(a.out, "Transaction saved")
		return nil
	}

	var validationErr *transactions.ValidationError
	var submissionErr *form.SubmissionError
	switch {
	case errors.As(err, &validationErr):
		for _, name := range transactions.Fields {
			if fieldErr, ok := f.FieldError(name); ok {
				fmt.Fprintf(a.out, "  %v\n", fieldErr.Error())
			}
		}
	case errors.As(err, &submissionErr):
		fmt.Fprintf(a.out, "Transaction was not saved: %v\n", submissionErr.Cause())
	default:
		return err
	}
	return nil
}

func (a *App) listTransactions(ctx context.Context) error {
	list, err := a.service.ListTransactions(ctx, &types.TransactionsQuery{})
	if err != nil {
		return err
	}
	writeTransactions(a.out, list)
	return nil
}

func (a *App) summary(ctx context.Context) error {
	summary, err := a.service.Summary(ctx)
	if err != nil {
		return err
	}
	writeSummary(a.out, summary)
	return nil
}

func writeTransactions(out io.Writer, list []types.Transaction) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No transactions yet")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tCATEGORY\tTYPE\tPRICE")
	for _, trx := range list {
		price := trx.Price.StringFixed(2)
		if trx.Type == types.TransactionTypeOutcome {
			price = "-" + price
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			trx.CreatedAt.Format("2006-01-02"),
			trx.Description,
			trx.Category,
			trx.Type,
			price,
		)
	}
	w.Flush()
}

func writeSummary(out io.Writer, summary *types.Summary) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Income\t%v\n", summary.Income.StringFixed(2))
	fmt.Fprintf(w, "Outcome\t%v\n", summary.Outcome.StringFixed(2))
	fmt.Fprintf(w, "Total\t%v\n", summary.Total.StringFixed(2))
	w.Flush()
}
