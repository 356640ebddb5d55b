package v1

import (
	"fmt"

	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/finance-tracker/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

type URIUser struct {
	UserID string `uri:"userId" binding:"required" example:"alice"` // ID of the user owning the data
}

type URIRecord struct {
	URIUser
	ID uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the record
}

type URIMonth struct {
	URIUser
	Month types.Month `uri:"month" binding:"required" swaggertype:"string" example:"2024-03"` // Year and month in YYYY-MM format
}

type URIYear struct {
	URIUser
	Year int `uri:"year" binding:"required,min=1,max=9999" example:"2024"` // Year of the rollup
}

type URISettingsList struct {
	URIUser
	List string `uri:"list" binding:"required" example:"categories" enums:"categories,paymentMethods,expenseTypes,creditCardNames"` // Name of the settings list
}

type URISettingsValue struct {
	URISettingsList
	Value string `uri:"value" binding:"required" example:"Food"` // Value to remove
}

type QueryMonth struct {
	Month types.Month `form:"month" swaggertype:"string" example:"2024-03"` // Year and month in YYYY-MM format
}

type QueryConfirm struct {
	Confirm bool `form:"confirm"` // Confirms the operation
}

// bindURI binds the path parameters of the request to uri.
func bindURI(c *gin.Context, uri any) error {
	if err := c.ShouldBindUri(uri); err != nil {
		return fmt.Errorf("%w: %w", errInvalidParameter, err)
	}

	return nil
}

// bindQuery binds the query string of the request to query.
func bindQuery(c *gin.Context, query any) error {
	if err := c.ShouldBindQuery(query); err != nil {
		return fmt.Errorf("%w: %w", httputil.ErrInvalidQueryString, err)
	}

	return nil
}

// bindMonth binds the month query parameter, which must be set.
func bindMonth(c *gin.Context) (types.Month, error) {
	var q QueryMonth
	if err := bindQuery(c, &q); err != nil {
		return types.Month{}, err
	}

	if q.Month.IsZero() {
		return types.Month{}, errMonthNotSetInQuery
	}

	return q.Month, nil
}

// bindRecord binds the path parameters and month of a single record.
func bindRecord(c *gin.Context) (URIRecord, types.Month, error) {
	var uri URIRecord
	if err := bindURI(c, &uri); err != nil {
		return URIRecord{}, types.Month{}, err
	}

	month, err := bindMonth(c)
	if err != nil {
		return URIRecord{}, types.Month{}, err
	}

	return uri, month, nil
}

// confirmed reports whether the request confirms the operation.
func confirmed(c *gin.Context) (bool, error) {
	var q QueryConfirm
	if err := bindQuery(c, &q); err != nil {
		return false, err
	}

	return q.Confirm, nil
}
