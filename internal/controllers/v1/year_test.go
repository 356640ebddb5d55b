package v1_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	v1 "github.com/finance-tracker/backend/internal/controllers/v1"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/finance-tracker/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) createTestYear() {
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Date: types.NewDate(2023, time.December, 1), Description: "Salary", Value: decimal.NewNullDecimal(decimal.NewFromInt(1000))})
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Date: types.NewDate(2023, time.June, 1), Description: "Holiday", Value: decimal.NewNullDecimal(decimal.NewFromInt(1200))})
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Date: types.NewDate(2024, time.January, 1), Description: "Salary", Value: decimal.NewNullDecimal(decimal.NewFromInt(1000))})
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Date: types.NewDate(2024, time.February, 1), Description: "Rent", Value: decimal.NewNullDecimal(decimal.NewFromInt(300))})
}

func (suite *TestSuiteStandard) TestYearsGet() {
	suite.createTestYear()

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/years/2024", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.YearResponse
	test.DecodeResponse(suite.T(), &r, &response)

	year := response.Data
	suite.Assert().Equal(2024, year.Year)
	suite.Assert().Equal("en", year.Language)
	suite.Assert().Equal("-200.00", year.PriorYearBalance.StringFixed(2))
	suite.Assert().Empty(year.FailedMonths)
	suite.Assert().Equal("http://example.com/v1/users/alice/years/2024/csv", year.Links.CSV)

	suite.Require().Len(year.Months, 12)
	suite.Assert().Equal("Jan", year.Months[0].Label)
	suite.Assert().Equal("1000.00", year.Months[0].TotalEntries.StringFixed(2))
	suite.Assert().Equal("800.00", year.Months[0].AccumulatedBalance.StringFixed(2))
	suite.Assert().Equal("300.00", year.Months[1].TotalExpenses.StringFixed(2))
	suite.Assert().Equal("500.00", year.Months[1].AccumulatedBalance.StringFixed(2))
	suite.Assert().Equal("500.00", year.Months[11].AccumulatedBalance.StringFixed(2))
	suite.Assert().Equal("Dec", year.Months[11].Label)
}

func (suite *TestSuiteStandard) TestYearsGetLocalized() {
	r := test.Request(suite.T(), suite.router, http.MethodPut, "http://example.com/v1/users/alice/locale", v1.SettingsValue{Value: "pt-BR"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/years/2024", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.YearResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("pt", response.Data.Language)
	suite.Assert().Equal("Fev", response.Data.Months[1].Label)
}

func (suite *TestSuiteStandard) TestYearsGetFails() {
	tests := []struct {
		name string
		url  string
	}{
		{"Not a number", "http://example.com/v1/users/alice/years/twenty"},
		{"Zero", "http://example.com/v1/users/alice/years/0"},
		{"Out of range", "http://example.com/v1/users/alice/years/10000"},
		{"CSV not a number", "http://example.com/v1/users/alice/years/twenty/csv"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodGet, tt.url, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestYearsOptions() {
	for _, url := range []string{"http://example.com/v1/users/alice/years/2024", "http://example.com/v1/users/alice/years/2024/csv"} {
		suite.T().Run(url, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodOptions, url, "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, "OPTIONS, GET", r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestYearsCSV() {
	suite.createTestYear()

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/years/2024/csv", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	suite.Assert().Equal("text/csv; charset=utf-8", r.Header().Get("Content-Type"))
	suite.Assert().Equal(`attachment; filename="annual_summary_2024.csv"`, r.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(strings.NewReader(r.Body.String())).ReadAll()
	suite.Require().Nil(err)
	suite.Require().Len(rows, 13)
	suite.Assert().Equal([]string{"Month", "TotalEntries", "TotalExpenses", "NetBalance", "AccumulatedBalance"}, rows[0])
	suite.Assert().Equal([]string{"Jan", "1000.00", "0.00", "1000.00", "800.00"}, rows[1])
	suite.Assert().Equal([]string{"Feb", "0.00", "300.00", "-300.00", "500.00"}, rows[2])
}

// TestYearsDBClosed verifies that months that cannot be loaded do not fail
// the rollup.
func (suite *TestSuiteStandard) TestYearsDBClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/years/2024", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.YearResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data.FailedMonths, 24)
	suite.Assert().True(response.Data.PriorYearBalance.IsZero())
	suite.Assert().Equal("en", response.Data.Language)
}
