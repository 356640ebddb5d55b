package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/finance-tracker/backend/internal/controllers/v1"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestSettingsGetDefaults() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/settings", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	defaults := models.DefaultSettings()
	suite.Assert().Equal(defaults.Categories, response.Data.Categories)
	suite.Assert().Equal(defaults.PaymentMethods, response.Data.PaymentMethods)
	suite.Assert().Equal("Food", response.Data.Defaults[models.Categories])
	suite.Assert().Equal(v1.SettingsLinks{
		Categories:      "http://example.com/v1/users/alice/settings/categories",
		PaymentMethods:  "http://example.com/v1/users/alice/settings/paymentMethods",
		ExpenseTypes:    "http://example.com/v1/users/alice/settings/expenseTypes",
		CreditCardNames: "http://example.com/v1/users/alice/settings/creditCardNames",
		Locale:          "http://example.com/v1/users/alice/locale",
	}, response.Data.Links)
}

func (suite *TestSuiteStandard) TestSettingsAdd() {
	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/users/alice/settings/categories", v1.SettingsValue{Value: "  Pets "})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Pets", response.Data.Categories[len(response.Data.Categories)-1])

	// Duplicates are allowed
	r = test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/users/alice/settings/categories", v1.SettingsValue{Value: "Pets"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data.Categories, len(models.DefaultSettings().Categories)+2)

	// Other users are not affected
	r = test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/bob/settings", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().NotContains(response.Data.Categories, "Pets")
}

func (suite *TestSuiteStandard) TestSettingsAddFails() {
	tests := []struct {
		name  string
		url   string
		body  any
		error string
	}{
		{"Unknown list", "http://example.com/v1/users/alice/settings/colors", v1.SettingsValue{Value: "Blue"}, "unknown settings list 'colors'"},
		{"Empty value", "http://example.com/v1/users/alice/settings/categories", v1.SettingsValue{Value: "   "}, "the value must not be empty"},
		{"Empty body", "http://example.com/v1/users/alice/settings/categories", "", "the request body must not be empty"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodPost, tt.url, tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
			assert.Contains(t, test.DecodeError(t, r.Body.Bytes()), tt.error)
		})
	}
}

func (suite *TestSuiteStandard) TestSettingsRemove() {
	for i := 0; i < 2; i++ {
		r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/users/alice/settings/paymentMethods", v1.SettingsValue{Value: "Voucher"})
		test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	}

	r := test.Request(suite.T(), suite.router, http.MethodDelete, "http://example.com/v1/users/alice/settings/paymentMethods/Voucher", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionRequired)
	suite.Assert().Contains(r.Body.String(), "Do you really want to remove \\\"Voucher\\\" from paymentMethods?")

	r = test.Request(suite.T(), suite.router, http.MethodDelete, "http://example.com/v1/users/alice/settings/paymentMethods/Voucher?confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(models.DefaultSettings().PaymentMethods, response.Data.PaymentMethods)

	// Removing a value that is not in the list succeeds
	r = test.Request(suite.T(), suite.router, http.MethodDelete, "http://example.com/v1/users/alice/settings/paymentMethods/Voucher?confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

// TestSettingsRemoveFirst verifies that the next value becomes the default
// selection when the first one is removed.
func (suite *TestSuiteStandard) TestSettingsRemoveFirst() {
	r := test.Request(suite.T(), suite.router, http.MethodDelete, "http://example.com/v1/users/alice/settings/categories/Food?confirm=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Transport", response.Data.Defaults[models.Categories])
}

func (suite *TestSuiteStandard) TestSettingsRemoveFails() {
	tests := []struct {
		name string
		url  string
	}{
		{"Unknown list", "http://example.com/v1/users/alice/settings/colors/Blue?confirm=true"},
		{"Invalid confirmation", "http://example.com/v1/users/alice/settings/categories/Food?confirm=perhaps"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodDelete, tt.url, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestSettingsLocale() {
	r := test.Request(suite.T(), suite.router, http.MethodPut, "http://example.com/v1/users/alice/locale", v1.SettingsValue{Value: "pt-BR"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SettingsResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("pt-BR", response.Data.Locale)

	r = test.Request(suite.T(), suite.router, http.MethodPut, "http://example.com/v1/users/alice/locale", v1.SettingsValue{Value: "not/a/locale"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(test.DecodeError(suite.T(), r.Body.Bytes()), "invalid locale")
}

func (suite *TestSuiteStandard) TestSettingsOptions() {
	tests := []struct {
		url   string
		allow string
	}{
		{"http://example.com/v1/users/alice/settings", "OPTIONS, GET"},
		{"http://example.com/v1/users/alice/settings/categories", "OPTIONS, POST"},
		{"http://example.com/v1/users/alice/settings/categories/Food", "OPTIONS, DELETE"},
		{"http://example.com/v1/users/alice/locale", "OPTIONS, PUT"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.url, func(t *testing.T) {
			r := test.Request(t, suite.router, http.MethodOptions, tt.url, "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestSettingsDBClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/users/alice/settings", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)

	r = test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/users/alice/settings/categories", v1.SettingsValue{Value: "Pets"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}
