package store

import (
	"fmt"

	"github.com/finance-tracker/backend/internal/types"
)

// EntriesPath is the collection of income entries of a user for a month.
func EntriesPath(userID string, month types.Month) string {
	return fmt.Sprintf("users/%s/financialData/%s/entries", userID, month)
}

// ExpensesPath is the collection of expenses of a user for a month.
func ExpensesPath(userID string, month types.Month) string {
	return fmt.Sprintf("users/%s/financialData/%s/expenses", userID, month)
}

// SettingsPath is the settings document of a user.
func SettingsPath(userID string) string {
	return fmt.Sprintf("users/%s/userConfig/settings", userID)
}

// RecordPath is the path of a document in a collection.
func RecordPath(collection, id string) string {
	return collection + "/" + id
}
