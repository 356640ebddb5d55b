package models

import (
	"fmt"
	"strings"

	"github.com/finance-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
)

// RecordType is the recurrence classification of a record.
type RecordType string

const (
	Fixed    RecordType = "Fixed"
	Variable RecordType = "Variable"
)

// InstallmentType describes how an expense is paid.
type InstallmentType string

const (
	UpFront      InstallmentType = "UpFront"
	Installments InstallmentType = "Installments"
)

// Kind discriminates income from expense records once they are merged
// into a single set.
type Kind string

const (
	Income      Kind = "Income"
	ExpenseKind Kind = "Expense"
)

// CreditCard is the payment method that enables installments and card names.
const CreditCard = "Credit Card"

// MoneyRecord is the shape shared by entries and expenses.
type MoneyRecord struct {
	ID          string          `json:"id" example:"65392deb-5e92-4268-b114-297faad6cdce"` // Identifier assigned by the store
	Date        types.Date      `json:"date" example:"2024-03-05" swaggertype:"string"`    // Date of the record
	Description string          `json:"description" example:"Salary"`                      // Description
	Value       decimal.Decimal `json:"value" example:"1500.00" swaggertype:"string"`      // Non-negative amount
	Type        RecordType      `json:"type" example:"Fixed" enums:"Fixed,Variable"`       // Recurrence classification
}

// Month returns the partition the record belongs to.
func (r MoneyRecord) Month() types.Month {
	return r.Date.Month()
}

// normalize trims whitespace from string fields and rounds the value
// to two decimals.
func (r *MoneyRecord) normalize() {
	r.Description = strings.TrimSpace(r.Description)
	r.Type = RecordType(strings.TrimSpace(string(r.Type)))
	r.Value = r.Value.Round(2)
}

func (r MoneyRecord) validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}

	if r.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	if r.Value.IsNegative() {
		return fmt.Errorf("%w: value must not be negative", ErrValidation)
	}

	if r.Type != Fixed && r.Type != Variable {
		return fmt.Errorf("%w: type must be one of %s, %s", ErrValidation, Fixed, Variable)
	}

	return nil
}

// Entry is an income record.
type Entry struct {
	MoneyRecord
}

// Normalize prepares the entry for storage.
func (e *Entry) Normalize() {
	e.MoneyRecord.normalize()
}

// Validate checks that the entry can be stored.
func (e Entry) Validate() error {
	return e.MoneyRecord.validate()
}

// Expense is an outflow record with payment metadata.
type Expense struct {
	MoneyRecord
	Category        string          `json:"category" example:"Food"`                                        // Category from the settings registry
	PaymentMethod   string          `json:"paymentMethod" example:"Credit Card"`                            // Payment method from the settings registry
	CreditCardName  string          `json:"creditCardName,omitempty" example:"Card A"`                      // Only set for credit card payments
	InstallmentType InstallmentType `json:"installmentType" example:"UpFront" enums:"UpFront,Installments"` // How the expense is paid
	Installments    int             `json:"installments" example:"1" minimum:"1"`                           // Number of installments
}

// Normalize prepares the expense for storage.
//
// Card name and installments only apply to credit card payments and are
// reset for every other payment method.
func (e *Expense) Normalize() {
	e.MoneyRecord.normalize()
	e.Category = strings.TrimSpace(e.Category)
	e.PaymentMethod = strings.TrimSpace(e.PaymentMethod)
	e.CreditCardName = strings.TrimSpace(e.CreditCardName)

	if e.PaymentMethod != CreditCard {
		e.CreditCardName = ""
		e.InstallmentType = UpFront
	}

	if e.InstallmentType == "" {
		e.InstallmentType = UpFront
	}

	if e.InstallmentType == UpFront {
		e.Installments = 1
	}
}

// Validate checks that the expense can be stored.
func (e Expense) Validate() error {
	if err := e.MoneyRecord.validate(); err != nil {
		return err
	}

	if e.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}

	if e.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	if e.InstallmentType != UpFront && e.InstallmentType != Installments {
		return fmt.Errorf("%w: installment type must be one of %s, %s", ErrValidation, UpFront, Installments)
	}

	if e.Installments < 1 {
		return fmt.Errorf("%w: installments must be at least 1", ErrValidation)
	}

	return nil
}

// TaggedRecord is a record of either kind with its kind made explicit.
type TaggedRecord struct {
	Kind Kind
	Date types.Date
	// Value is the sign-free amount of the record
	Value decimal.Decimal
}

// Tag merges entries and expenses into one set, tagging every record
// with the collection it came from.
func Tag(entries []Entry, expenses []Expense) []TaggedRecord {
	tagged := make([]TaggedRecord, 0, len(entries)+len(expenses))
	for _, e := range entries {
		tagged = append(tagged, TaggedRecord{Kind: Income, Date: e.Date, Value: e.Value})
	}

	for _, e := range expenses {
		tagged = append(tagged, TaggedRecord{Kind: ExpenseKind, Date: e.Date, Value: e.Value})
	}

	return tagged
}

// Signed returns the contribution of the record to a balance.
func (t TaggedRecord) Signed() decimal.Decimal {
	if t.Kind == ExpenseKind {
		return t.Value.Neg()
	}

	return t.Value
}
