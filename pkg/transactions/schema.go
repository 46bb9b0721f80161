package transactions

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/go-playground/validator.v9"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

// Names of draft fields as they appear in payloads and field errors
const (
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldType        = "type"
)

// Fields lists draft fields in the order they are presented
var Fields = []string{FieldDescription, FieldPrice, FieldCategory, FieldType}

// Draft is a raw, not yet validated, transaction data
type Draft struct {
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required,decimal"`
	Category    string `json:"category" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=income outcome"`
}

// NewDraft returns a draft with default values
func NewDraft() Draft {
	return Draft{Type: string(types.DefaultTransactionType)}
}

func (d Draft) trimmed() Draft {
	return Draft{
		Description: strings.TrimSpace(d.Description),
		Price:       strings.TrimSpace(d.Price),
		Category:    strings.TrimSpace(d.Category),
		Type:        strings.TrimSpace(d.Type),
	}
}

// NewTransaction is a validated draft
type NewTransaction struct {
	Description string
	Price       decimal.Decimal
	Category    string
	Type        types.TransactionType
}

// FieldError describes why particular field is invalid
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidationError is returned when one or more draft fields are invalid
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, fieldErr := range e.Fields {
		messages = append(messages, fieldErr.Error())
	}
	return "Invalid transaction: " + strings.Join(messages, ", ")
}

// Field returns an error of a given field if any
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, fieldErr := range e.Fields {
		if fieldErr.Field == name {
			return fieldErr, true
		}
	}
	return FieldError{}, false
}

// Rules maps each invalid field to a failed rule
func (e *ValidationError) Rules() map[string]string {
	rules := make(map[string]string, len(e.Fields))
	for _, fieldErr := range e.Fields {
		rules[fieldErr.Field] = fieldErr.Rule
	}
	return rules
}

var ruleMessages = map[string]string{
	"required": "is required",
	"decimal":  "must be a number",
	"oneof":    "must be one of: income, outcome",
}

func newFieldError(field string, rule string) FieldError {
	message, ok := ruleMessages[rule]
	if !ok {
		message = "is invalid"
	}
	return FieldError{Field: field, Rule: rule, Message: message}
}

func isDecimal(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}

// Schema validates drafts and coerces them to new transactions
type Schema struct {
	validate    *validator.Validate
	fieldRules  map[string]string
	fieldsOrder map[string]int
}

// NewSchema creates a schema for Draft
func NewSchema() *Schema {
	validate := validator.New()
	validate.RegisterTagNameFunc(router.JSONFieldName)
	if err := validate.RegisterValidation("decimal", isDecimal); err != nil {
		panic(err)
	}

	draftType := reflect.TypeOf(Draft{})
	fieldRules := make(map[string]string, draftType.NumField())
	for i := 0; i < draftType.NumField(); i++ {
		fld := draftType.Field(i)
		fieldRules[router.JSONFieldName(fld)] = fld.Tag.Get("validate")
	}
	fieldsOrder := make(map[string]int, len(Fields))
	for i, field := range Fields {
		fieldsOrder[field] = i
	}
	return &Schema{validate: validate, fieldRules: fieldRules, fieldsOrder: fieldsOrder}
}

// Validate checks all draft fields and returns a typed transaction.
// Surrounding spaces of text values are ignored.
func (s *Schema) Validate(draft Draft) (*NewTransaction, error) {
	draft = draft.trimmed()
	if err := s.validate.Struct(draft); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, errors.Wrap(err, "Failed to validate draft")
		}
		result := &ValidationError{Fields: make([]FieldError, 0, len(validationErrs))}
		for _, fieldErr := range validationErrs {
			result.Fields = append(result.Fields, newFieldError(fieldErr.Field(), fieldErr.Tag()))
		}
		sort.Slice(result.Fields, func(i, j int) bool {
			return s.fieldsOrder[result.Fields[i].Field] < s.fieldsOrder[result.Fields[j].Field]
		})
		return nil, result
	}

	price, err := decimal.NewFromString(draft.Price)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{newFieldError(FieldPrice, "decimal")}}
	}

	return &NewTransaction{
		Description: draft.Description,
		Price:       price,
		Category:    draft.Category,
		Type:        types.TransactionType(draft.Type),
	}, nil
}

// ValidateField checks a single field value with the rules of the draft
func (s *Schema) ValidateField(field string, value string) error {
	rules, ok := s.fieldRules[field]
	if !ok {
		return errors.Errorf("Unknown field: %v", field)
	}
	if err := s.validate.Var(strings.TrimSpace(value), rules); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok || len(validationErrs) == 0 {
			return errors.Wrapf(err, "Failed to validate %v", field)
		}
		return newFieldError(field, validationErrs[0].Tag())
	}
	return nil
}

var defaultSchema = NewSchema()

// Validate validates the draft with the default schema
func Validate(draft Draft) (*NewTransaction, error) {
	return defaultSchema.Validate(draft)
}

// ValidateField validates single field with the default schema
func ValidateField(field string, value string) error {
	return defaultSchema.ValidateField(field, value)
}

// PriceInput accepts price given either as a json number or a string
type PriceInput string

// UnmarshalJSON keeps the raw number text so no precision is lost
func (p *PriceInput) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*p = PriceInput(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.Wrap(err, "price should be a number or a string")
	}
	*p = PriceInput(num.String())
	return nil
}
