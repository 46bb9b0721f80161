package form

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
)

var logger = diag.CreateLogger()

// State is a state of the form
type State int

const (
	// Idle is a state of a form with default values
	Idle State = iota

	// Editing is a state of a form that has user input
	Editing

	// Validating is a state of a form while its draft is checked
	Validating

	// Submitting is a state of a form while the submission callback is awaited
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// ErrSubmitInProgress is returned when form is changed or submitted while
// previous submission has not completed
var ErrSubmitInProgress = errors.New("Submit is already in progress")

// ErrNoSubmitFunc is returned when form created without submission callback is submitted
var ErrNoSubmitFunc = errors.New("Form has no submission callback")

// SubmissionError is returned when the submission callback rejected the transaction
type SubmissionError struct {
	cause error
}

func (e *SubmissionError) Error() string {
	return "Failed to submit transaction: " + e.cause.Error()
}

// Cause returns the error of the submission callback
func (e *SubmissionError) Cause() error {
	return e.cause
}

func (e *SubmissionError) Unwrap() error {
	return e.cause
}

// SubmitFunc is a callback that persists validated transaction
type SubmitFunc func(ctx context.Context, trx *transactions.NewTransaction) error

// StateChangeFunc is notified when form moves from one state to another
type StateChangeFunc func(from State, to State)

type stateChange struct {
	from State
	to   State
}

// Form holds a transaction draft, validates and submits it
type Form struct {
	mu          sync.Mutex
	draft       transactions.Draft
	fieldErrors map[string]transactions.FieldError
	state       State

	submit        SubmitFunc
	schema        *transactions.Schema
	onStateChange []StateChangeFunc
}

// Opt is an option of the form
type Opt func(f *Form)

// WithSchema sets a schema to validate drafts with
func WithSchema(schema *transactions.Schema) Opt {
	return func(f *Form) {
		f.schema = schema
	}
}

// OnStateChange registers state changes observer. Observers are called
// after the form is unlocked so they may query the form
func OnStateChange(fn StateChangeFunc) Opt {
	return func(f *Form) {
		f.onStateChange = append(f.onStateChange, fn)
	}
}

// New creates a form with default values that submits with a given callback
func New(submit SubmitFunc, opts ...Opt) *Form {
	f := &Form{
		draft:       transactions.NewDraft(),
		fieldErrors: map[string]transactions.FieldError{},
		state:       Idle,
		submit:      submit,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.schema == nil {
		f.schema = transactions.NewSchema()
	}
	return f
}

func (f *Form) setState(changes []stateChange, to State) []stateChange {
	if f.state == to {
		return changes
	}
	changes = append(changes, stateChange{from: f.state, to: to})
	f.state = to
	return changes
}

func (f *Form) notify(changes []stateChange) {
	for _, change := range changes {
		for _, fn := range f.onStateChange {
			fn(change.from, change.to)
		}
	}
}

func (f *Form) setField(name string, update func(draft *transactions.Draft)) error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	update(&f.draft)
	delete(f.fieldErrors, name)
	changes := f.setState(nil, Editing)
	f.mu.Unlock()
	f.notify(changes)
	return nil
}

// SetDescription sets description of the draft
func (f *Form) SetDescription(value string) error {
	return f.setField(transactions.FieldDescription, func(draft *transactions.Draft) {
		draft.Description = value
	})
}

// SetPrice sets a price text of the draft
func (f *Form) SetPrice(value string) error {
	return f.setField(transactions.FieldPrice, func(draft *transactions.Draft) {
		draft.Price = value
	})
}

// SetCategory sets category of the draft
func (f *Form) SetCategory(value string) error {
	return f.setField(transactions.FieldCategory, func(draft *transactions.Draft) {
		draft.Category = value
	})
}

// SetType sets type of the draft
func (f *Form) SetType(value string) error {
	return f.setField(transactions.FieldType, func(draft *transactions.Draft) {
		draft.Type = value
	})
}

// SetField sets a draft field by its name
func (f *Form) SetField(name string, value string) error {
	switch name {
	case transactions.FieldDescription:
		return f.SetDescription(value)
	case transactions.FieldPrice:
		return f.SetPrice(value)
	case transactions.FieldCategory:
		return f.SetCategory(value)
	case transactions.FieldType:
		return f.SetType(value)
	}
	return errors.Errorf("Unknown field: %v", name)
}

// Draft returns a copy of the current draft
func (f *Form) Draft() transactions.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// State returns current state of the form
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submitting is true while submission callback is awaited
func (f *Form) Submitting() bool {
	return f.State() == Submitting
}

// FieldErrors returns errors of the last validation that were not cleared by edits
func (f *Form) FieldErrors() map[string]transactions.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[string]transactions.FieldError, len(f.fieldErrors))
	for name, fieldErr := range f.fieldErrors {
		result[name] = fieldErr
	}
	return result
}

// FieldError returns an error of a given field if any
func (f *Form) FieldError(name string) (transactions.FieldError, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fieldErr, ok := f.fieldErrors[name]
	return fieldErr, ok
}

// validate must be called with the lock held
func (f *Form) validate(changes []stateChange) (*transactions.NewTransaction, []stateChange, error) {
	changes = f.setState(changes, Validating)
	trx, err := f.schema.Validate(f.draft)
	f.fieldErrors = map[string]transactions.FieldError{}
	if err != nil {
		if validationErr, ok := err.(*transactions.ValidationError); ok {
			for _, fieldErr := range validationErr.Fields {
				f.fieldErrors[fieldErr.Field] = fieldErr
			}
		}
		changes = f.setState(changes, Editing)
		return nil, changes, err
	}
	return trx, changes, nil
}

// Validate checks the draft and returns typed transaction.
// Failed fields are available via FieldErrors
func (f *Form) Validate() (*transactions.NewTransaction, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	trx, changes, err := f.validate(nil)
	if err == nil {
		changes = f.setState(changes, Editing)
	}
	f.mu.Unlock()
	f.notify(changes)
	return trx, err
}

// Submit validates the draft and invokes submission callback.
// The form is reset when the callback succeeds and keeps the draft otherwise
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		logger.Info(ctx, "Ignoring submit, previous one is in progress")
		return ErrSubmitInProgress
	}
	trx, changes, err := f.validate(nil)
	if err != nil {
		f.mu.Unlock()
		f.notify(changes)
		logger.WithError(err).Info(ctx, "Transaction is invalid")
		return err
	}
	if f.submit == nil {
		changes = f.setState(changes, Editing)
		f.mu.Unlock()
		f.notify(changes)
		return ErrNoSubmitFunc
	}
	changes = f.setState(changes, Submitting)
	f.mu.Unlock()
	f.notify(changes)

	submitErr := f.invokeSubmit(ctx, trx)

	f.mu.Lock()
	if submitErr != nil {
		changes = f.setState(nil, Editing)
		f.mu.Unlock()
		f.notify(changes)
		logger.WithError(submitErr).Warn(ctx, "Transaction submission rejected")
		return &SubmissionError{cause: submitErr}
	}
	changes = f.reset(nil)
	f.mu.Unlock()
	f.notify(changes)
	return nil
}

// invokeSubmit returns the form to editing if the callback panics
func (f *Form) invokeSubmit(ctx context.Context, trx *transactions.NewTransaction) error {
	settled := false
	defer func() {
		if settled {
			return
		}
		f.mu.Lock()
		changes := f.setState(nil, Editing)
		f.mu.Unlock()
		f.notify(changes)
		logger.Error(ctx, "Transaction submission aborted")
	}()
	err := f.submit(ctx, trx)
	settled = true
	return err
}

func (f *Form) reset(changes []stateChange) []stateChange {
	f.draft = transactions.NewDraft()
	f.fieldErrors = map[string]transactions.FieldError{}
	return f.setState(changes, Idle)
}

// Reset restores default values and clears errors
func (f *Form) Reset() error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	changes := f.reset(nil)
	f.mu.Unlock()
	f.notify(changes)
	return nil
}
