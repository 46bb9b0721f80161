package dialog

import (
	"context"
	"sync"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/form"
)

// CloseFunc hides the dialog. It is given to whoever owns closing
type CloseFunc func()

// FormFactory creates a form the dialog hosts
type FormFactory func() *form.Form

// Dialog is an overlay that hosts a transaction form
type Dialog struct {
	mu            sync.Mutex
	open          bool
	form          *form.Form
	newForm       FormFactory
	closeOnSubmit bool
}

// Opt is an option of a dialog
type Opt func(d *Dialog)

// WithCloseOnSubmit closes the dialog after the hosted form is submitted
func WithCloseOnSubmit() Opt {
	return func(d *Dialog) {
		d.closeOnSubmit = true
	}
}

// New creates a closed dialog
func New(newForm FormFactory, opts ...Opt) *Dialog {
	d := &Dialog{newForm: newForm}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open shows the dialog. A form is created on first open and kept
// between openings so an unfinished draft survives closing
func (d *Dialog) Open() *form.Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	if d.form == nil {
		d.form = d.newForm()
	}
	return d.form
}

// Close hides the dialog
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
}

// Toggle opens closed dialog or closes opened one
func (d *Dialog) Toggle() bool {
	d.mu.Lock()
	open := d.open
	d.mu.Unlock()
	if open {
		d.Close()
	} else {
		d.Open()
	}
	return !open
}

// IsOpen tells if the dialog is visible
func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Form returns the hosted form or nil if the dialog was never opened
func (d *Dialog) Form() *form.Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// CloseFunc returns a capability to close this dialog
func (d *Dialog) CloseFunc() CloseFunc {
	return d.Close
}

// Submit submits the hosted form and closes the dialog
// if it succeeded and WithCloseOnSubmit was given
func (d *Dialog) Submit(ctx context.Context) error {
	f := d.Form()
	if f == nil {
		f = d.Open()
	}
	if err := f.Submit(ctx); err != nil {
		return err
	}
	if d.closeOnSubmit {
		d.Close()
	}
	return nil
}

// Header is a top bar with a button that opens the dialog
type Header struct {
	TriggerLabel string
	Dialog       *Dialog
}

// DefaultTriggerLabel is a label of the new transaction button
const DefaultTriggerLabel = "New transaction"

// NewHeader creates a header bound to a given dialog
func NewHeader(d *Dialog) *Header {
	return &Header{TriggerLabel: DefaultTriggerLabel, Dialog: d}
}

// Trigger opens the dialog and returns its form
func (h *Header) Trigger() *form.Form {
	return h.Dialog.Open()
}
