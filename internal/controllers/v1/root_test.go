package v1_test

import (
	"net/http"

	v1 "github.com/finance-tracker/backend/internal/controllers/v1"
	"github.com/finance-tracker/backend/test"
)

func (suite *TestSuiteStandard) TestGet() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Equal(v1.Links{
		Entries:  "http://example.com/v1/users/{userId}/entries",
		Expenses: "http://example.com/v1/users/{userId}/expenses",
		Months:   "http://example.com/v1/users/{userId}/months",
		Years:    "http://example.com/v1/users/{userId}/years",
		Settings: "http://example.com/v1/users/{userId}/settings",
		Locale:   "http://example.com/v1/users/{userId}/locale",
	}, response.Links)
}

func (suite *TestSuiteStandard) TestOptions() {
	r := test.Request(suite.T(), suite.router, http.MethodOptions, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, GET", r.Header().Get("allow"))
}
