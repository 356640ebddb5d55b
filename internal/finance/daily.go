package finance

import (
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
)

// DailyPoint is the projected balance at the end of one day.
type DailyPoint struct {
	Date     types.Date      `json:"date" swaggertype:"string" example:"2024-03-05"`
	DailyNet decimal.Decimal `json:"dailyNet" example:"-50.00" swaggertype:"string"` // Income minus expenses of the day
	Balance  decimal.Decimal `json:"balance" example:"150.00" swaggertype:"string"`  // Running balance since the first of the month
}

// Project returns one point for every day of month. The balance starts
// at zero on the first day, records dated outside of month are ignored.
func Project(entries []models.Entry, expenses []models.Expense, month types.Month) []DailyPoint {
	days := month.DaysInMonth()

	net := make([]decimal.Decimal, days+1)
	for i := range net {
		net[i] = decimal.Zero
	}

	for _, r := range models.Tag(entries, expenses) {
		if !month.Contains(r.Date) {
			continue
		}
		net[r.Date.Day()] = net[r.Date.Day()].Add(r.Signed())
	}

	points := make([]DailyPoint, 0, days)
	balance := decimal.Zero
	for day := 1; day <= days; day++ {
		balance = balance.Add(net[day])
		points = append(points, DailyPoint{
			Date:     month.Date(day),
			DailyNet: net[day],
			Balance:  balance,
		})
	}

	return points
}
