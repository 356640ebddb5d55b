package v1

import (
	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
)

type MonthLinks struct {
	Entries  string `json:"entries" example:"https://example.com/api/v1/users/alice/entries?month=2024-03"`   // Entries of the month
	Expenses string `json:"expenses" example:"https://example.com/api/v1/users/alice/expenses?month=2024-03"` // Expenses of the month
	Daily    string `json:"daily" example:"https://example.com/api/v1/users/alice/months/2024-03/daily"`      // Daily projection of the month
	Live     string `json:"live" example:"https://example.com/api/v1/users/alice/months/2024-03/live"`        // Live updates of the month summary
	Year     string `json:"year" example:"https://example.com/api/v1/users/alice/years/2024"`                 // Annual rollup of the year of the month
}

type Month struct {
	Month types.Month `json:"month" swaggertype:"string" example:"2024-03"`
	finance.MonthTotals
	Defaults map[models.SettingsList]string `json:"defaults"` // Default selection of each settings list for new records
	Links    MonthLinks                     `json:"links"`
}

type MonthResponse struct {
	Data  *Month  `json:"data"`                                                               // Data for the month
	Error *string `json:"error" example:"invalid parameter: month must be in YYYY-MM format"` // The error, if any occurred
}

type DailyResponse struct {
	Data  []finance.DailyPoint `json:"data"`                                                               // One point for every day of the month
	Error *string              `json:"error" example:"invalid parameter: month must be in YYYY-MM format"` // The error, if any occurred
}
