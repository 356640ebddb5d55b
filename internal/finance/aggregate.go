// Package finance computes summaries and projections over entries and
// expenses and implements the operations that change them in bulk.
package finance

import (
	"github.com/finance-tracker/backend/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryAmount is the sum of all expenses of one category.
type CategoryAmount struct {
	Category        string          `json:"category" example:"Food"`
	Value           decimal.Decimal `json:"value" example:"250.00" swaggertype:"string"`
	PercentOfIncome decimal.Decimal `json:"percentOfIncome" example:"12.5" swaggertype:"string"` // Share of the total income, 0 when there is no income
}

// MonthTotals summarizes the records of a single month.
type MonthTotals struct {
	TotalIncome   decimal.Decimal  `json:"totalIncome" example:"2000.00" swaggertype:"string"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses" example:"1250.00" swaggertype:"string"`
	NetBalance    decimal.Decimal  `json:"netBalance" example:"750.00" swaggertype:"string"`
	Categories    []CategoryAmount `json:"categories"` // In order of the first expense of each category
}

// Summarize computes the totals of a month.
func Summarize(entries []models.Entry, expenses []models.Expense) MonthTotals {
	income := decimal.Zero
	for _, e := range entries {
		income = income.Add(e.Value)
	}

	spent := decimal.Zero
	index := make(map[string]int)
	categories := make([]CategoryAmount, 0)

	for _, e := range expenses {
		spent = spent.Add(e.Value)

		i, ok := index[e.Category]
		if !ok {
			i = len(categories)
			index[e.Category] = i
			categories = append(categories, CategoryAmount{Category: e.Category, Value: decimal.Zero})
		}
		categories[i].Value = categories[i].Value.Add(e.Value)
	}

	for i := range categories {
		categories[i].PercentOfIncome = PercentOfIncome(categories[i].Value, income)
	}

	return MonthTotals{
		TotalIncome:   income,
		TotalExpenses: spent,
		NetBalance:    income.Sub(spent),
		Categories:    categories,
	}
}

// PercentOfIncome returns value as percentage of income, rounded to one
// decimal. It is zero when there is no income.
func PercentOfIncome(value, income decimal.Decimal) decimal.Decimal {
	if income.IsZero() {
		return decimal.Zero
	}

	return value.Div(income).Mul(hundred).Round(1)
}
