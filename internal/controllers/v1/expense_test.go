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

func (suite *TestSuiteStandard) createTestExpense(t *testing.T, userID string, e v1.ExpenseEditable, expectedStatus ...int) v1.ExpenseResponse {
	if e.Date.IsZero() {
		e.Date = types.NewDate(2024, time.March, 12)
	}

	if e.Description == "" {
		e.Description = uuid.NewString()
	}

	if e.Type == "" {
		e.Type = models.Variable
	}

	if e.Category == "" {
		e.Category = "Food"
	}

	if e.PaymentMethod == "" {
		e.PaymentMethod = "Cash"
	}

	if !e.Value.Valid {
		e.Value = decimal.NewNullDecimal(decimal.NewFromInt(10))
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.ExpenseEditable{e}

	r := test.Request(t, suite.router, http.MethodPost, fmt.Sprintf("http://example.com/v1/users/%s/expenses", userID), body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ExpenseCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.ExpenseResponse{}
}

func (suite *TestSuiteStandard) TestExpensesCreate() {
	tests := []struct {
		name                    string
		editable                v1.ExpenseEditable
		expectedCreditCardName  string
		expectedInstallmentType models.InstallmentType
		expectedInstallments    int
	}{
		{
			"Cash",
			v1.ExpenseEditable{PaymentMethod: "Cash", CreditCardName: "Card A", InstallmentType: models.Installments, Installments: 4},
			"",
			models.UpFront,
			1,
		},
		{
			"Credit card up front",
			v1.ExpenseEditable{PaymentMethod: models.CreditCard, CreditCardName: "Card A", Installments: 3},
			"Card A",
			models.UpFront,
			1,
		},
		{
			"Credit card in installments",
			v1.ExpenseEditable{PaymentMethod: models.CreditCard, CreditCardName: "Card B", InstallmentType: models.Installments, Installments: 3},
			"Card B",
			models.Installments,
			3,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			expense := suite.createTestExpense(t, "alice", tt.editable)
			assert.Equal(t, tt.expectedCreditCardName, expense.Data.CreditCardName)
			assert.Equal(t, tt.expectedInstallmentType, expense.Data.InstallmentType)
			assert.Equal(t, tt.expectedInstallments, expense.Data.Installments)
			assert.Equal(t, fmt.Sprintf("http://example.com/v1/users/alice/expenses/%s?month=2024-03", expense.Data.ID), expense.Data.Links.Self)
		})
	}
}

func (suite *TestSuiteStandard) TestExpensesCreateFails() {
	tests := []struct {
		name  string
		body  any
		error string
	}{
		{"Empty body", "", "the request body must not be empty"},
		{"No value", `[{ "date": "2024-03-12", "description": "Groceries", "type": "Variable", "category": "Food", "paymentMethod": "Cash" }]`, "value is required"},
		{"Null value", `[{ "date": "2024-03-12", "description": "Groceries", "value": null, "type": "Variable", "category": "Food", "paymentMethod": "Cash" }]`, "value is required"},
		{"No category", `[{ "date": "2024-03-12", "description": "Groceries", "value": "50", "type": "Variable", "paymentMethod": "Cash" }]`, "category is required"},
		{"No payment method", `[{ "date": "2024-03-12", "description": "Groceries", "value": "50", "type": "Variable", "category": "Food" }]`, "payment method is required"},
		{"Zero installments", `[{ "date": "2024-03-12", "description": "TV", "value": "900", "type": "Variable", "category": "Leisure", "paymentMethod": "Credit Card", "installmentType": "Installments", "installments": 0 }]`, "installments must be at least 1"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodPost, "http://example.com/v1/users/alice/expenses", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
			assert.Contains(t, r.Body.String(), tt.error)
		})
	}
}

func (suite *TestSuiteStandard) TestExpensesGetList() {
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "Groceries", Category: "Food", PaymentMethod: "Cash"})
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "Grocery delivery", Category: "Food", PaymentMethod: models.CreditCard})
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "Bus ticket", Category: "Transport", PaymentMethod: "Cash", Type: models.Fixed})
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "Groceries", Date: types.NewDate(2024, time.February, 2)})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All of March", "month=2024-03", 3},
		{"All of February", "month=2024-02", 1},
		{"Category", "month=2024-03&category=Food", 2},
		{"Payment method", "month=2024-03&paymentMethod=Cash", 2},
		{"Category and payment method", "month=2024-03&category=Food&paymentMethod=Cash", 1},
		{"Type", "month=2024-03&type=Fixed", 1},
		{"Description glob", "month=2024-03&description=Grocer*", 2},
		{"No match", "month=2024-03&category=Health", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/users/alice/expenses?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ExpenseListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

func (suite *TestSuiteStandard) TestExpensesGetListNoMonth() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/expenses", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Equal("the month query parameter must be set", test.DecodeError(suite.T(), r.Body.Bytes()))
}

func (suite *TestSuiteStandard) TestExpensesUpdate() {
	expense := suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "TV", PaymentMethod: models.CreditCard, CreditCardName: "Card A"})

	r := test.Request(suite.T(), suite.router, http.MethodPut, expense.Data.Links.Self, v1.ExpenseEditable{
		Date:            types.NewDate(2024, time.May, 1),
		Description:     "TV",
		Value:           decimal.NewNullDecimal(decimal.NewFromInt(1200)),
		Type:            models.Variable,
		Category:        "Leisure",
		PaymentMethod:   "Cash",
		CreditCardName:  "Card A",
		InstallmentType: models.Installments,
		Installments:    6,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(expense.Data.ID, response.Data.ID)
	suite.Assert().Equal("Leisure", response.Data.Category)
	suite.Assert().Equal("", response.Data.CreditCardName, "card names only apply to credit card payments")
	suite.Assert().Equal(1, response.Data.Installments)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/users/alice/expenses/%s?month=2024-05", expense.Data.ID), response.Data.Links.Self)

	r = test.Request(suite.T(), suite.router, http.MethodGet, response.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestExpensesUpdateUnknown() {
	r := test.Request(suite.T(), suite.router, http.MethodPut, fmt.Sprintf("http://example.com/v1/users/alice/expenses/%s?month=2024-03", uuid.New()), v1.ExpenseEditable{
		Date:          types.NewDate(2024, time.March, 1),
		Description:   "TV",
		Type:          models.Variable,
		Category:      "Leisure",
		PaymentMethod: "Cash",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestExpensesDelete() {
	expense := suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{Description: "Groceries"})

	r := test.Request(suite.T(), suite.router, http.MethodDelete, expense.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionRequired)
	suite.Assert().Contains(r.Body.String(), "Do you really want to delete the expense \\\"Groceries\\\"?")

	r = test.Request(suite.T(), suite.router, http.MethodDelete, expense.Data.Links.Self+"&confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), suite.router, http.MethodGet, expense.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestExpensesOptions() {
	expense := suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{})

	tests := []struct {
		url   string
		allow string
	}{
		{"http://example.com/v1/users/alice/expenses", "OPTIONS, GET, POST"},
		{expense.Data.Links.Self, "OPTIONS, GET, PUT, DELETE"},
		{expense.Data.Links.Propagate, "OPTIONS, POST"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.url, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodOptions, tt.url, "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestExpensesPropagate() {
	expense := suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{
		Date:        types.NewDate(2024, time.September, 10),
		Description: "Gym",
		Value:       decimal.NewNullDecimal(decimal.NewFromInt(60)),
		Type:        models.Fixed,
		Category:    "Health",
	})

	// An equal expense already exists in November
	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{
		Date:        types.NewDate(2024, time.November, 10),
		Description: "Gym",
		Value:       decimal.NewNullDecimal(decimal.NewFromInt(60)),
		Type:        models.Fixed,
		Category:    "Health",
	})

	r := test.Request(suite.T(), suite.router, http.MethodPost, expense.Data.Links.Propagate, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionRequired)
	suite.Assert().Contains(r.Body.String(), "Do you want to propagate the fixed expense \\\"Gym\\\" to the remaining months of 2024?")

	r = test.Request(suite.T(), suite.router, http.MethodPost, expense.Data.Links.Propagate+"&confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PropagationResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal([]types.Month{types.NewMonth(2024, time.October), types.NewMonth(2024, time.December)}, response.Data.Created)
	suite.Assert().Equal([]types.Month{types.NewMonth(2024, time.November)}, response.Data.Skipped)
}

func (suite *TestSuiteStandard) TestExpensesPropagateNotEligible() {
	tests := []struct {
		name     string
		editable v1.ExpenseEditable
	}{
		{"Variable", v1.ExpenseEditable{Type: models.Variable}},
		{"Installments", v1.ExpenseEditable{Type: models.Fixed, PaymentMethod: models.CreditCard, InstallmentType: models.Installments, Installments: 2}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			expense := suite.createTestExpense(t, "alice", tt.editable)

			r := test.Request(t, suite.router, http.MethodPost, expense.Data.Links.Propagate+"&confirm=true", "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.PropagationResponse
			test.DecodeResponse(t, &r, &response)
			assert.Contains(t, *response.Error, "record cannot be propagated")
		})
	}
}

// TestExpensesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestExpensesDBClosed() {
	suite.CloseDB()

	suite.createTestExpense(suite.T(), "alice", v1.ExpenseEditable{}, http.StatusInternalServerError)

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/expenses?month=2024-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)

	var response v1.ExpenseListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Contains(*response.Error, "an error occurred on the server")
}
