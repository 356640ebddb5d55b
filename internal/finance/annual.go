package finance

import (
	"context"

	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MonthFetcher loads all records of one month.
type MonthFetcher interface {
	Month(ctx context.Context, userID string, month types.Month) ([]models.Entry, []models.Expense, error)
}

// MonthlySummary is one month of an annual rollup.
type MonthlySummary struct {
	Month              types.Month     `json:"month" swaggertype:"string" example:"2024-03"`
	Label              string          `json:"label" example:"Mar"`
	TotalEntries       decimal.Decimal `json:"totalEntries" example:"2000.00" swaggertype:"string"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses" example:"1250.00" swaggertype:"string"`
	NetBalance         decimal.Decimal `json:"netBalance" example:"750.00" swaggertype:"string"`
	AccumulatedBalance decimal.Decimal `json:"accumulatedBalance" example:"3100.00" swaggertype:"string"` // Running total including the prior year
}

// AnnualSummary is the rollup of a year.
type AnnualSummary struct {
	Year             int              `json:"year" example:"2024"`
	PriorYearBalance decimal.Decimal  `json:"priorYearBalance" example:"-150.00" swaggertype:"string"` // Net balance of the whole previous year
	Months           []MonthlySummary `json:"months"`                                                  // January to December
	FailedMonths     []types.Month    `json:"failedMonths" swaggertype:"array,string"`                 // Months that could not be loaded and count as zero
}

// Rollup computes the annual summary of year for a user.
//
// Months are loaded one after another. A month that cannot be loaded
// counts as zero. The failure is logged and listed in FailedMonths but
// never aborts the rollup.
func Rollup(ctx context.Context, fetcher MonthFetcher, userID string, year int, labels MonthLabels) AnnualSummary {
	summary := AnnualSummary{
		Year:         year,
		Months:       make([]MonthlySummary, 0, 12),
		FailedMonths: []types.Month{},
	}

	seed := decimal.Zero
	for _, month := range types.YearMonths(year - 1) {
		totals, ok := summary.fetch(ctx, fetcher, userID, month)
		if ok {
			seed = seed.Add(totals.NetBalance)
		}
	}
	summary.PriorYearBalance = seed

	accumulated := seed
	for _, month := range types.YearMonths(year) {
		totals, _ := summary.fetch(ctx, fetcher, userID, month)
		accumulated = accumulated.Add(totals.NetBalance)

		summary.Months = append(summary.Months, MonthlySummary{
			Month:              month,
			Label:              labels.Label(month.MonthOfYear()),
			TotalEntries:       totals.TotalIncome,
			TotalExpenses:      totals.TotalExpenses,
			NetBalance:         totals.NetBalance,
			AccumulatedBalance: accumulated,
		})
	}

	return summary
}

func (s *AnnualSummary) fetch(ctx context.Context, fetcher MonthFetcher, userID string, month types.Month) (MonthTotals, bool) {
	entries, expenses, err := fetcher.Month(ctx, userID, month)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Str("month", month.String()).Msg("could not load month for annual summary, counting it as zero")
		s.FailedMonths = append(s.FailedMonths, month)
		return Summarize(nil, nil), false
	}

	return Summarize(entries, expenses), true
}
