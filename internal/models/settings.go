package models

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// SettingsList names one of the ordered lists in the settings document.
type SettingsList string

const (
	Categories      SettingsList = "categories"
	PaymentMethods  SettingsList = "paymentMethods"
	ExpenseTypes    SettingsList = "expenseTypes"
	CreditCardNames SettingsList = "creditCardNames"
)

// SettingsLists contains all lists in the order they are presented.
var SettingsLists = []SettingsList{Categories, PaymentMethods, ExpenseTypes, CreditCardNames}

// ParseSettingsList returns the list for its name.
func ParseSettingsList(s string) (SettingsList, error) {
	l := SettingsList(s)
	if !slices.Contains(SettingsLists, l) {
		return "", fmt.Errorf("%w '%s', must be one of %v", ErrUnknownSettingsList, s, SettingsLists)
	}

	return l, nil
}

// Settings holds the user-editable lists of selectable values.
//
// Order is meaningful: the first element of each list is the default
// selection for new records.
type Settings struct {
	Categories      []string `json:"categories" example:"Food,Transport"`
	PaymentMethods  []string `json:"paymentMethods" example:"Cash,Credit Card"`
	ExpenseTypes    []string `json:"expenseTypes" example:"Fixed,Variable"`
	CreditCardNames []string `json:"creditCardNames" example:"Card A"`
	Locale          string   `json:"locale,omitempty" example:"en"` // Language used for month labels
}

// DefaultSettings returns the settings written for users that do not
// have a settings document yet.
func DefaultSettings() Settings {
	return Settings{
		Categories:      []string{"Food", "Transport", "Housing", "Leisure", "Health", "Education", "Other"},
		PaymentMethods:  []string{"Cash", CreditCard, "Debit", "PIX"},
		ExpenseTypes:    []string{string(Fixed), string(Variable)},
		CreditCardNames: []string{"Card A", "Card B"},
		Locale:          "en",
	}
}

// List returns a pointer to the named list.
func (s *Settings) List(l SettingsList) (*[]string, error) {
	switch l {
	case Categories:
		return &s.Categories, nil
	case PaymentMethods:
		return &s.PaymentMethods, nil
	case ExpenseTypes:
		return &s.ExpenseTypes, nil
	case CreditCardNames:
		return &s.CreditCardNames, nil
	}

	return nil, fmt.Errorf("%w '%s'", ErrUnknownSettingsList, l)
}

// Defaults returns the default selection of each list. Empty lists
// have no default.
func (s Settings) Defaults() map[SettingsList]string {
	defaults := make(map[SettingsList]string, len(SettingsLists))
	for _, l := range SettingsLists {
		list, _ := s.List(l)
		if len(*list) > 0 {
			defaults[l] = (*list)[0]
		}
	}

	return defaults
}
