package v1

import (
	"fmt"
	"net/http"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/live"
	"github.com/gin-gonic/gin"
)

// RegisterMonthRoutes registers the routes for months with
// the RouterGroup that is passed.
func (co Controller) RegisterMonthRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", OptionsMonth)
	r.GET("/:month", co.GetMonth)
	r.OPTIONS("/:month/daily", OptionsMonth)
	r.GET("/:month/daily", co.GetMonthDaily)
	r.OPTIONS("/:month/live", OptionsMonth)
	r.GET("/:month/live", co.GetMonthLive)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/users/{userId}/months/{month} [options]
// @Router			/v1/users/{userId}/months/{month}/daily [options]
// @Router			/v1/users/{userId}/months/{month}/live [options]
func OptionsMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get month summary
// @Description	Returns the total income, total expenses, net balance and the expenses per category of a month
// @Tags			Months
// @Produce		json
// @Success		200		{object}	MonthResponse
// @Failure		400		{object}	MonthResponse
// @Failure		500		{object}	MonthResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/users/{userId}/months/{month} [get]
func (co Controller) GetMonth(c *gin.Context) {
	var uri URIMonth
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), MonthResponse{Error: errorText(c, err)})
		return
	}

	entries, expenses, err := co.Records.Month(c.Request.Context(), uri.UserID, uri.Month)
	if err != nil {
		c.JSON(status(err), MonthResponse{Error: errorText(c, err)})
		return
	}

	settings, err := co.Registry.Get(c.Request.Context(), uri.UserID)
	if err != nil {
		c.JSON(status(err), MonthResponse{Error: errorText(c, err)})
		return
	}

	url := userURL(c, uri.UserID)
	month := uri.Month.String()

	c.JSON(http.StatusOK, MonthResponse{Data: &Month{
		Month:       uri.Month,
		MonthTotals: finance.Summarize(entries, expenses),
		Defaults:    settings.Defaults(),
		Links: MonthLinks{
			Entries:  fmt.Sprintf("%s/entries?month=%s", url, month),
			Expenses: fmt.Sprintf("%s/expenses?month=%s", url, month),
			Daily:    fmt.Sprintf("%s/months/%s/daily", url, month),
			Live:     fmt.Sprintf("%s/months/%s/live", url, month),
			Year:     fmt.Sprintf("%s/years/%d", url, uri.Month.Year()),
		},
	}})
}

// @Summary		Get daily projection
// @Description	Returns the balance at the end of every day of the month, starting at zero on the first
// @Tags			Months
// @Produce		json
// @Success		200		{object}	DailyResponse
// @Failure		400		{object}	DailyResponse
// @Failure		500		{object}	DailyResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/users/{userId}/months/{month}/daily [get]
func (co Controller) GetMonthDaily(c *gin.Context) {
	var uri URIMonth
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), DailyResponse{Error: errorText(c, err)})
		return
	}

	entries, expenses, err := co.Records.Month(c.Request.Context(), uri.UserID, uri.Month)
	if err != nil {
		c.JSON(status(err), DailyResponse{Error: errorText(c, err)})
		return
	}

	c.JSON(http.StatusOK, DailyResponse{Data: finance.Project(entries, expenses, uri.Month)})
}

// @Summary		Follow month
// @Description	Streams the summary of a month as server-sent events. A "snapshot" event is sent once the month
// @Description	is loaded and after every change of its records or the settings. Failures to load the month are
// @Description	sent as "error" events.
// @Tags			Months
// @Produce		text/event-stream
// @Success		200		{object}	live.Snapshot
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/users/{userId}/months/{month}/live [get]
func (co Controller) GetMonthLive(c *gin.Context) {
	var uri URIMonth
	if err := bindURI(c, &uri); err != nil {
		abort(c, err)
		return
	}

	ctx := c.Request.Context()
	session := live.NewSession(co.Records.Store())
	defer session.Close()

	if err := session.Apply(ctx, live.View{UserID: uri.UserID, Month: uri.Month}); err != nil {
		abort(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return

		case snapshot := <-session.Updates():
			c.SSEvent("snapshot", snapshot)
			c.Writer.Flush()

		case err := <-session.Errors():
			c.SSEvent("error", httpError{Error: *errorText(c, err)})
			c.Writer.Flush()
		}
	}
}
