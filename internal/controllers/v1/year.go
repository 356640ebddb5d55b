package v1

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/gin-gonic/gin"
)

type YearLinks struct {
	CSV string `json:"csv" example:"https://example.com/api/v1/users/alice/years/2024/csv"` // The rollup as CSV file
}

type Year struct {
	finance.AnnualSummary
	Language string    `json:"language" example:"en"` // Language of the month labels
	Links    YearLinks `json:"links"`
}

type YearResponse struct {
	Data  *Year   `json:"data"`                                                                // Data for the year
	Error *string `json:"error" example:"user ID must not be empty, '.', '..' or contain '/'"` // The error, if any occurred
}

// RegisterYearRoutes registers the routes for annual rollups with
// the RouterGroup that is passed.
func (co Controller) RegisterYearRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:year", OptionsYear)
	r.GET("/:year", co.GetYear)
	r.OPTIONS("/:year/csv", OptionsYear)
	r.GET("/:year/csv", co.GetYearCSV)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Years
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Param			year	path	int		true	"The year"
// @Router			/v1/users/{userId}/years/{year} [options]
// @Router			/v1/users/{userId}/years/{year}/csv [options]
func OptionsYear(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get annual rollup
// @Description	Returns the totals of every month of the year with the balance accumulated since the start of
// @Description	the previous year. Months that cannot be loaded count as zero and are listed in failedMonths.
// @Tags			Years
// @Produce		json
// @Success		200		{object}	YearResponse
// @Failure		400		{object}	YearResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			year	path		int		true	"The year"
// @Router			/v1/users/{userId}/years/{year} [get]
func (co Controller) GetYear(c *gin.Context) {
	var uri URIYear
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), YearResponse{Error: errorText(c, err)})
		return
	}

	if err := store.ValidateUser(uri.UserID); err != nil {
		c.JSON(status(err), YearResponse{Error: errorText(c, err)})
		return
	}

	labels := co.Registry.Labels(c.Request.Context(), uri.UserID)
	summary := finance.Rollup(c.Request.Context(), co.Records, uri.UserID, uri.Year, labels)

	c.JSON(http.StatusOK, YearResponse{Data: &Year{
		AnnualSummary: summary,
		Language:      labels.Language(),
		Links: YearLinks{
			CSV: fmt.Sprintf("%s/years/%d/csv", userURL(c, uri.UserID), uri.Year),
		},
	}})
}

// @Summary		Export annual rollup
// @Description	Returns the annual rollup as CSV file with one row per month
// @Tags			Years
// @Produce		text/csv
// @Success		200
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			year	path		int		true	"The year"
// @Router			/v1/users/{userId}/years/{year}/csv [get]
func (co Controller) GetYearCSV(c *gin.Context) {
	var uri URIYear
	if err := bindURI(c, &uri); err != nil {
		abort(c, err)
		return
	}

	if err := store.ValidateUser(uri.UserID); err != nil {
		abort(c, err)
		return
	}

	labels := co.Registry.Labels(c.Request.Context(), uri.UserID)
	summary := finance.Rollup(c.Request.Context(), co.Records, uri.UserID, uri.Year, labels)

	var buf bytes.Buffer
	if err := finance.WriteCSV(&buf, summary); err != nil {
		abort(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", finance.CSVFilename(uri.Year)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
