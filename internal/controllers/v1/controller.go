// Package v1 is the HTTP API over the financial data of users.
package v1

import (
	"net/http"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	Records    *store.Records
	Propagator finance.Propagator
	Registry   finance.Registry
}

// New returns a controller for the records. Propagated records are dated
// according to dating.
func New(records *store.Records, dating finance.Dating) Controller {
	return Controller{
		Records:    records,
		Propagator: finance.Propagator{Records: records, Dating: dating},
		Registry:   finance.Registry{Store: records},
	}
}

// RegisterRoutes registers all routes of the v1 API with the RouterGroup
// that is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", Options)
	r.GET("", Get)

	user := r.Group("/users/:userId")
	co.RegisterEntryRoutes(user.Group("/entries"))
	co.RegisterExpenseRoutes(user.Group("/expenses"))
	co.RegisterMonthRoutes(user.Group("/months"))
	co.RegisterYearRoutes(user.Group("/years"))
	co.RegisterSettingsRoutes(user.Group("/settings"))
	co.RegisterLocaleRoutes(user.Group("/locale"))
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Entries  string `json:"entries" example:"https://example.com/api/v1/users/{userId}/entries"`   // URL of the entry collection of a user
	Expenses string `json:"expenses" example:"https://example.com/api/v1/users/{userId}/expenses"` // URL of the expense collection of a user
	Months   string `json:"months" example:"https://example.com/api/v1/users/{userId}/months"`     // URL of the month summaries of a user
	Years    string `json:"years" example:"https://example.com/api/v1/users/{userId}/years"`       // URL of the annual rollups of a user
	Settings string `json:"settings" example:"https://example.com/api/v1/users/{userId}/settings"` // URL of the settings of a user
	Locale   string `json:"locale" example:"https://example.com/api/v1/users/{userId}/locale"`     // URL of the locale of a user
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := httputil.BaseURL(c) + "/v1/users/{userId}"

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Entries:  url + "/entries",
			Expenses: url + "/expenses",
			Months:   url + "/months",
			Years:    url + "/years",
			Settings: url + "/settings",
			Locale:   url + "/locale",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// userURL returns the base URL of the resources of a user.
func userURL(c *gin.Context, userID string) string {
	return httputil.BaseURL(c) + "/v1/users/" + userID
}
