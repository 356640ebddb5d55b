package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/finance-tracker/backend/internal/database"
	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/gin-gonic/gin"
)

type httpError struct {
	Error string `json:"error" example:"the month query parameter must be set"`
}

// confirmationError is the response for operations that have not been
// confirmed yet.
type confirmationError struct {
	Error  string         `json:"error" example:"this operation must be confirmed by repeating the request with confirm=true"`
	Prompt finance.Prompt `json:"prompt"`
}

var (
	errMonthNotSetInQuery   = errors.New("the month query parameter must be set")
	errInvalidParameter     = errors.New("invalid parameter")
	errConfirmationRequired = errors.New("this operation must be confirmed by repeating the request with confirm=true")
	errValueRequired        = fmt.Errorf("%w: value is required", models.ErrValidation)
)

// status returns the appropriate HTTP status for an error
func status(err error) int {
	switch {
	case errors.Is(err, errConfirmationRequired):
		return http.StatusPreconditionRequired

	case errors.Is(err, store.ErrNotFound), errors.Is(err, database.ErrResourceNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrUnknownSettingsList),
		errors.Is(err, finance.ErrNotEligible),
		errors.Is(err, finance.ErrInvalidLocale),
		errors.Is(err, store.ErrInvalidUser),
		errors.Is(err, store.ErrInvalidPath),
		errors.Is(err, store.ErrInvalidField),
		errors.Is(err, httputil.ErrInvalidBody),
		errors.Is(err, httputil.ErrRequestBodyEmpty),
		errors.Is(err, httputil.ErrInvalidQueryString),
		errors.Is(err, errMonthNotSetInQuery),
		errors.Is(err, errInvalidParameter):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// errorText returns the message for err that is sent to the client.
// Server errors are logged and replaced by a generic message.
func errorText(c *gin.Context, err error) *string {
	var s string
	if status(err) == http.StatusInternalServerError {
		s = httputil.ServerError(c, err)
	} else {
		s = err.Error()
	}

	return &s
}

// abort writes an error response without a data envelope.
func abort(c *gin.Context, err error) {
	c.JSON(status(err), httpError{Error: *errorText(c, err)})
}

// requireConfirmation writes the prompt of an unconfirmed operation.
func requireConfirmation(c *gin.Context, prompt finance.Prompt) {
	c.JSON(http.StatusPreconditionRequired, confirmationError{
		Error:  errConfirmationRequired.Error(),
		Prompt: prompt,
	})
}
