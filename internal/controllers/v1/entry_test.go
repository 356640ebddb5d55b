package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/finance-tracker/backend/internal/controllers/v1"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/finance-tracker/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) createTestEntry(t *testing.T, userID string, e v1.EntryEditable, expectedStatus ...int) v1.EntryResponse {
	if e.Date.IsZero() {
		e.Date = types.NewDate(2024, time.March, 5)
	}

	if e.Description == "" {
		e.Description = uuid.NewString()
	}

	if e.Type == "" {
		e.Type = models.Variable
	}

	if !e.Value.Valid {
		e.Value = decimal.NewNullDecimal(decimal.NewFromInt(10))
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.EntryEditable{e}

	r := test.Request(t, suite.router, http.MethodPost, fmt.Sprintf("http://example.com/v1/users/%s/entries", userID), body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.EntryCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.EntryResponse{}
}

func (suite *TestSuiteStandard) TestEntriesCreate() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{
		Date:        types.NewDate(2024, time.March, 5),
		Description: "  Salary ",
		Value:       decimal.NewNullDecimal(decimal.RequireFromString("1500.004")),
		Type:        models.Fixed,
	})

	suite.Assert().Nil(entry.Error)
	suite.Assert().Equal("Salary", entry.Data.Description)
	suite.Assert().True(decimal.RequireFromString("1500.00").Equal(entry.Data.Value), "value is %s", entry.Data.Value)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03", entry.Data.ID), entry.Data.Links.Self)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/users/alice/entries/%s/propagate?month=2024-03", entry.Data.ID), entry.Data.Links.Propagate)
}

// TestEntriesCreatePartial verifies that invalid entries are reported
// individually and valid ones are still created.
func (suite *TestSuiteStandard) TestEntriesCreatePartial() {
	body := []map[string]any{
		{"date": "2024-03-05", "description": "Salary", "value": "1500", "type": "Fixed"},
		{"date": "2024-03-06", "description": "", "value": "10", "type": "Fixed"},
		{"date": "2024-03-07", "description": "Refund", "value": "-10", "type": "Variable"},
		{"date": "2024-03-08", "description": "Bonus", "type": "Variable"},
	}

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/users/alice/entries", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.EntryCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().Len(response.Data, 4)
	suite.Assert().Nil(response.Data[0].Error)
	suite.Assert().Equal("Salary", response.Data[0].Data.Description)
	suite.Assert().Contains(*response.Data[1].Error, "description is required")
	suite.Assert().Contains(*response.Data[2].Error, "value must not be negative")
	suite.Assert().Contains(*response.Data[3].Error, "value is required")

	list := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/entries?month=2024-03", "")
	test.AssertHTTPStatus(suite.T(), &list, http.StatusOK)

	var entries v1.EntryListResponse
	test.DecodeResponse(suite.T(), &list, &entries)
	suite.Assert().Len(entries.Data, 1)
}

func (suite *TestSuiteStandard) TestEntriesCreateFails() {
	tests := []struct {
		name   string
		url    string
		body   any
		status int
	}{
		{"Empty body", "http://example.com/v1/users/alice/entries", "", http.StatusBadRequest},
		{"Broken body", "http://example.com/v1/users/alice/entries", `[{ "description": 2 }]`, http.StatusBadRequest},
		{"Invalid date", "http://example.com/v1/users/alice/entries", `[{ "date": "05.03.2024" }]`, http.StatusBadRequest},
		{"Missing date", "http://example.com/v1/users/alice/entries", `[{ "description": "Salary", "value": "1", "type": "Fixed" }]`, http.StatusBadRequest},
		{"Unknown type", "http://example.com/v1/users/alice/entries", `[{ "date": "2024-03-05", "description": "Salary", "value": "1", "type": "Monthly" }]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodPost, tt.url, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesGetList() {
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary", Type: models.Fixed})
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary bonus", Type: models.Variable})
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Gift", Type: models.Variable})
	suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "April salary", Date: types.NewDate(2024, time.April, 5)})
	suite.createTestEntry(suite.T(), "bob", v1.EntryEditable{Description: "Salary"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All of March", "month=2024-03", 3},
		{"All of April", "month=2024-04", 1},
		{"Empty month", "month=2024-05", 0},
		{"Description glob", "month=2024-03&description=Salary*", 2},
		{"Description glob single", "month=2024-03&description=*bonus", 1},
		{"Fixed", "month=2024-03&type=Fixed", 1},
		{"Variable and glob", "month=2024-03&type=Variable&description=S*", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/users/alice/entries?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.EntryListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesGetListOrder() {
	first := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "First", Date: types.NewDate(2024, time.March, 20)})
	second := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Second", Date: types.NewDate(2024, time.March, 1)})

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/entries?month=2024-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EntryListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal(first.Data.ID, response.Data[0].ID)
	suite.Assert().Equal(second.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestEntriesGetListFails() {
	tests := []struct {
		name   string
		url    string
		status int
		error  string
	}{
		{"No month", "http://example.com/v1/users/alice/entries", http.StatusBadRequest, "the month query parameter must be set"},
		{"Invalid month", "http://example.com/v1/users/alice/entries?month=2024-13", http.StatusBadRequest, "the query string contains unparseable data"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodGet, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Contains(t, test.DecodeError(t, r.Body.Bytes()), tt.error)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesGet() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary"})

	r := test.Request(suite.T(), suite.router, http.MethodGet, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(entry.Data.ID, response.Data.ID)
	suite.Assert().Equal("Salary", response.Data.Description)
}

func (suite *TestSuiteStandard) TestEntriesGetFails() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"Unknown ID", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03", uuid.New()), http.StatusNotFound},
		{"Wrong month", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-04", entry.Data.ID), http.StatusNotFound},
		{"Other user", fmt.Sprintf("http://example.com/v1/users/bob/entries/%s?month=2024-03", entry.Data.ID), http.StatusNotFound},
		{"Invalid ID", "http://example.com/v1/users/alice/entries/not-an-id?month=2024-03", http.StatusBadRequest},
		{"No month", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s", entry.Data.ID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodGet, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesOptions() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Type: models.Fixed})

	tests := []struct {
		name   string
		url    string
		status int
		allow  string
	}{
		{"List", "http://example.com/v1/users/alice/entries", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", entry.Data.Links.Self, http.StatusNoContent, "OPTIONS, GET, PUT, DELETE"},
		{"Propagate", entry.Data.Links.Propagate, http.StatusNoContent, "OPTIONS, POST"},
		{"Unknown ID", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03", uuid.New()), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodOptions, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesUpdate() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary", Value: decimal.NewNullDecimal(decimal.NewFromInt(100))})

	r := test.Request(suite.T(), suite.router, http.MethodPut, entry.Data.Links.Self, v1.EntryEditable{
		Date:        types.NewDate(2024, time.March, 28),
		Description: "Salary March",
		Value:       decimal.NewNullDecimal(decimal.NewFromInt(1800)),
		Type:        models.Fixed,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(entry.Data.ID, response.Data.ID)
	suite.Assert().Equal("Salary March", response.Data.Description)
	suite.Assert().Equal(models.Fixed, response.Data.Type)
	suite.Assert().Equal(entry.Data.Links.Self, response.Data.Links.Self)
}

// TestEntriesUpdateMovesMonth verifies that an entry is moved when its date
// changes to another month.
func (suite *TestSuiteStandard) TestEntriesUpdateMovesMonth() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary"})

	r := test.Request(suite.T(), suite.router, http.MethodPut, entry.Data.Links.Self, v1.EntryEditable{
		Date:        types.NewDate(2024, time.April, 10),
		Description: "Salary",
		Type:        models.Variable,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(entry.Data.ID, response.Data.ID)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-04", entry.Data.ID), response.Data.Links.Self)

	r = test.Request(suite.T(), suite.router, http.MethodGet, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), suite.router, http.MethodGet, response.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestEntriesUpdateFails() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{})

	tests := []struct {
		name   string
		url    string
		body   any
		status int
	}{
		{"Empty body", entry.Data.Links.Self, "", http.StatusBadRequest},
		{"Broken body", entry.Data.Links.Self, `{ "value": "many" }`, http.StatusBadRequest},
		{"Invalid", entry.Data.Links.Self, `{ "date": "2024-03-05", "description": "", "value": "1", "type": "Fixed" }`, http.StatusBadRequest},
		{"No value", entry.Data.Links.Self, `{ "date": "2024-03-05", "description": "Salary", "type": "Fixed" }`, http.StatusBadRequest},
		{"Unknown ID", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03", uuid.New()), `{ "date": "2024-03-05", "description": "Salary", "value": "1", "type": "Fixed" }`, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodPut, tt.url, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesDelete() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Description: "Salary"})

	r := test.Request(suite.T(), suite.router, http.MethodDelete, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionRequired)

	var prompt struct {
		Error  string `json:"error"`
		Prompt struct {
			Message string `json:"message"`
		} `json:"prompt"`
	}
	test.DecodeResponse(suite.T(), &r, &prompt)
	suite.Assert().Equal("Do you really want to delete the entry \"Salary\"?", prompt.Prompt.Message)

	// Not deleted without confirmation
	r = test.Request(suite.T(), suite.router, http.MethodGet, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), suite.router, http.MethodDelete, entry.Data.Links.Self+"&confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), suite.router, http.MethodGet, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEntriesDeleteFails() {
	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"Unknown ID", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03&confirm=true", uuid.New()), http.StatusNotFound},
		{"Invalid confirmation", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?month=2024-03&confirm=maybe", uuid.New()), http.StatusNotFound},
		{"No month", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s?confirm=true", uuid.New()), http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodDelete, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesPropagate() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{
		Date:        types.NewDate(2024, time.October, 31),
		Description: "Rent income",
		Value:       decimal.NewNullDecimal(decimal.NewFromInt(900)),
		Type:        models.Fixed,
	})

	r := test.Request(suite.T(), suite.router, http.MethodPost, entry.Data.Links.Propagate, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionRequired)

	var prompt struct {
		Prompt struct {
			Message string `json:"message"`
		} `json:"prompt"`
	}
	test.DecodeResponse(suite.T(), &r, &prompt)
	suite.Assert().Equal("Do you want to propagate the fixed entry \"Rent income\" to the remaining months of 2024?", prompt.Prompt.Message)

	r = test.Request(suite.T(), suite.router, http.MethodPost, entry.Data.Links.Propagate+"&confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PropagationResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Nil(response.Error)
	suite.Assert().Equal([]types.Month{types.NewMonth(2024, time.November), types.NewMonth(2024, time.December)}, response.Data.Created)
	suite.Assert().Empty(response.Data.Skipped)

	list := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/entries?month=2024-12", "")
	test.AssertHTTPStatus(suite.T(), &list, http.StatusOK)

	var entries v1.EntryListResponse
	test.DecodeResponse(suite.T(), &list, &entries)
	suite.Require().Len(entries.Data, 1)
	suite.Assert().Equal("Rent income", entries.Data[0].Description)
	suite.Assert().Equal(types.NewDate(2024, time.October, 31), entries.Data[0].Date, "propagated entries keep the date of the source")

	// All later months have the entry now
	r = test.Request(suite.T(), suite.router, http.MethodPost, entry.Data.Links.Propagate+"&confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Empty(response.Data.Created)
	suite.Assert().Len(response.Data.Skipped, 2)
}

func (suite *TestSuiteStandard) TestEntriesPropagateFails() {
	variable := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Type: models.Variable})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"Variable entry", variable.Data.Links.Propagate + "&confirm=true", http.StatusBadRequest},
		{"Unknown ID", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s/propagate?month=2024-03&confirm=true", uuid.New()), http.StatusNotFound},
		{"No month", fmt.Sprintf("http://example.com/v1/users/alice/entries/%s/propagate", uuid.New()), http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodPost, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestEntriesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestEntriesDBClosed() {
	entry := suite.createTestEntry(suite.T(), "alice", v1.EntryEditable{Type: models.Fixed})

	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				suite.createTestEntry(t, "alice", v1.EntryEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET list fails",
			func(t *testing.T) {
				r := test.Request(t, suite.router, http.MethodGet, "http://example.com/v1/users/alice/entries?month=2024-03", "")
				test.AssertHTTPStatus(t, &r, http.StatusInternalServerError)

				var response v1.EntryListResponse
				test.DecodeResponse(t, &r, &response)
				assert.Contains(t, *response.Error, "an error occurred on the server")
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				r := test.Request(t, suite.router, http.MethodGet, entry.Data.Links.Self, "")
				test.AssertHTTPStatus(t, &r, http.StatusInternalServerError)
			},
		},
		{
			"Propagation fails",
			func(t *testing.T) {
				r := test.Request(t, suite.router, http.MethodPost, entry.Data.Links.Propagate+"&confirm=true", "")
				test.AssertHTTPStatus(t, &r, http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}
