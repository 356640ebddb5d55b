package models

import (
	"encoding/json"
	"fmt"
)

// Fields returns the document fields stored for the entry.
//
// Values are stored as strings with two decimals so that equality
// filters in the store match independent of the backend.
func (e Entry) Fields() map[string]any {
	return map[string]any{
		"date":        e.Date.String(),
		"description": e.Description,
		"value":       e.Value.StringFixed(2),
		"type":        string(e.Type),
	}
}

// Fields returns the document fields stored for the expense.
func (e Expense) Fields() map[string]any {
	f := e.MoneyRecord.fields()
	f["category"] = e.Category
	f["paymentMethod"] = e.PaymentMethod
	f["creditCardName"] = e.CreditCardName
	f["installmentType"] = string(e.InstallmentType)
	f["installments"] = e.Installments

	return f
}

func (r MoneyRecord) fields() map[string]any {
	return Entry{MoneyRecord: r}.Fields()
}

// MatchFields are the fields two entries are compared on to detect duplicates.
func (e Entry) MatchFields() map[string]string {
	return map[string]string{
		"description": e.Description,
		"value":       e.Value.StringFixed(2),
		"type":        string(e.Type),
	}
}

// MatchFields are the fields two expenses are compared on to detect duplicates.
func (e Expense) MatchFields() map[string]string {
	f := Entry{MoneyRecord: e.MoneyRecord}.MatchFields()
	f["category"] = e.Category
	return f
}

// EntryFromFields decodes an entry from document fields.
func EntryFromFields(id string, data map[string]any) (Entry, error) {
	var e Entry
	if err := decode(data, &e); err != nil {
		return Entry{}, err
	}

	e.ID = id
	return e, nil
}

// ExpenseFromFields decodes an expense from document fields.
func ExpenseFromFields(id string, data map[string]any) (Expense, error) {
	var e Expense
	if err := decode(data, &e); err != nil {
		return Expense{}, err
	}

	e.ID = id
	return e, nil
}

// Fields returns the document fields stored for the settings.
func (s Settings) Fields() map[string]any {
	f := map[string]any{
		string(Categories):      nonNil(s.Categories),
		string(PaymentMethods):  nonNil(s.PaymentMethods),
		string(ExpenseTypes):    nonNil(s.ExpenseTypes),
		string(CreditCardNames): nonNil(s.CreditCardNames),
	}

	if s.Locale != "" {
		f["locale"] = s.Locale
	}

	return f
}

// SettingsFromFields decodes the settings document.
func SettingsFromFields(data map[string]any) (Settings, error) {
	var s Settings
	if err := decode(data, &s); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// decode converts the generic document representation into a typed value.
// Backends return numbers and nested values in different Go types, JSON
// is the common denominator.
func decode(data map[string]any, target any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
