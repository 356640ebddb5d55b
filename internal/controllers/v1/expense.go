package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/httputil"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/ryanuber/go-glob"
)

// RegisterExpenseRoutes registers the routes for expenses with
// the RouterGroup that is passed.
func (co Controller) RegisterExpenseRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsExpenseList)
		r.GET("", co.GetExpenses)
		r.POST("", co.CreateExpenses)
	}

	// Expense with ID
	{
		r.OPTIONS("/:id", co.OptionsExpenseDetail)
		r.GET("/:id", co.GetExpense)
		r.PUT("/:id", co.UpdateExpense)
		r.DELETE("/:id", co.DeleteExpense)
		r.OPTIONS("/:id/propagate", co.OptionsExpensePropagate)
		r.POST("/:id/propagate", co.PropagateExpense)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Router			/v1/users/{userId}/expenses [options]
func OptionsExpenseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the expense"
// @Param			month	query		string	true	"Month the expense is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/expenses/{id} [options]
func (co Controller) OptionsExpenseDetail(c *gin.Context) {
	if _, _, _, ok := co.expense(c); !ok {
		return
	}

	httputil.OptionsGetPutDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the expense"
// @Param			month	query		string	true	"Month the expense is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/expenses/{id}/propagate [options]
func (co Controller) OptionsExpensePropagate(c *gin.Context) {
	if _, _, _, ok := co.expense(c); !ok {
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Get expenses
// @Description	Returns the expenses of a month in the order they were created
// @Tags			Expenses
// @Produce		json
// @Success		200			{object}	ExpenseListResponse
// @Failure		400			{object}	ExpenseListResponse
// @Failure		500			{object}	ExpenseListResponse
// @Param			userId		path		string	true	"ID of the user"
// @Param			month		query		string	true	"Month, YYYY-MM"
// @Param			description	query		string	false	"Glob pattern for the description"
// @Param			type			query		string	false	"Filter by type"
// @Param			category		query		string	false	"Filter by category"
// @Param			paymentMethod	query		string	false	"Filter by payment method"
// @Router			/v1/users/{userId}/expenses [get]
func (co Controller) GetExpenses(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), ExpenseListResponse{Error: errorText(c, err)})
		return
	}

	var filter ExpenseQueryFilter
	if err := bindQuery(c, &filter); err != nil {
		c.JSON(status(err), ExpenseListResponse{Error: errorText(c, err)})
		return
	}

	if filter.Month.IsZero() {
		c.JSON(status(errMonthNotSetInQuery), ExpenseListResponse{Error: errorText(c, errMonthNotSetInQuery)})
		return
	}

	expenses, err := co.Records.FindExpenses(c.Request.Context(), uri.UserID, filter.Month, filter.match())
	if err != nil {
		c.JSON(status(err), ExpenseListResponse{Error: errorText(c, err)})
		return
	}

	data := make([]Expense, 0, len(expenses))
	for _, expense := range expenses {
		if filter.Description != "" && !glob.Glob(filter.Description, expense.Description) {
			continue
		}
		data = append(data, newExpense(c, uri.UserID, filter.Month, expense))
	}

	c.JSON(http.StatusOK, ExpenseListResponse{Data: data})
}

// @Summary		Create expenses
// @Description	Creates new expenses. Each expense is stored in the month of its date.
// @Tags			Expenses
// @Accept			json
// @Produce		json
// @Success		201		{object}	ExpenseCreateResponse
// @Failure		400		{object}	ExpenseCreateResponse
// @Failure		500		{object}	ExpenseCreateResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			expenses	body		[]ExpenseEditable	true	"Expenses"
// @Router			/v1/users/{userId}/expenses [post]
func (co Controller) CreateExpenses(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), ExpenseCreateResponse{Error: errorText(c, err)})
		return
	}

	var editables []ExpenseEditable
	if err := httputil.BindData(c, &editables); err != nil {
		c.JSON(status(err), ExpenseCreateResponse{Error: errorText(c, err)})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ExpenseCreateResponse{}

	for _, editable := range editables {
		model, err := editable.model("")
		if err != nil {
			status = r.appendError(c, err, status)
			continue
		}

		expense, err := co.Records.AddExpense(c.Request.Context(), uri.UserID, model)
		if err != nil {
			status = r.appendError(c, err, status)
			continue
		}

		data := newExpense(c, uri.UserID, expense.Month(), expense)
		r.Data = append(r.Data, ExpenseResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get expense
// @Description	Returns a specific expense
// @Tags			Expenses
// @Produce		json
// @Success		200		{object}	ExpenseResponse
// @Failure		400		{object}	ExpenseResponse
// @Failure		404		{object}	ExpenseResponse
// @Failure		500		{object}	ExpenseResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the expense"
// @Param			month	query		string	true	"Month the expense is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/expenses/{id} [get]
func (co Controller) GetExpense(c *gin.Context) {
	uri, month, expense, ok := co.expense(c)
	if !ok {
		return
	}

	data := newExpense(c, uri.UserID, month, expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &data})
}

// @Summary		Update expense
// @Description	Replaces all fields of an existing expense. If the date changes to another month, the expense moves to that month.
// @Tags			Expenses
// @Accept			json
// @Produce		json
// @Success		200		{object}	ExpenseResponse
// @Failure		400		{object}	ExpenseResponse
// @Failure		404		{object}	ExpenseResponse
// @Failure		500		{object}	ExpenseResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			id		path		string			true	"ID of the expense"
// @Param			month	query		string			true	"Month the expense is stored in, YYYY-MM"
// @Param			expense	body		ExpenseEditable	true	"Expense"
// @Router			/v1/users/{userId}/expenses/{id} [put]
func (co Controller) UpdateExpense(c *gin.Context) {
	uri, month, err := bindRecord(c)
	if err != nil {
		c.JSON(status(err), ExpenseResponse{Error: errorText(c, err)})
		return
	}

	var editable ExpenseEditable
	if err := httputil.BindData(c, &editable); err != nil {
		c.JSON(status(err), ExpenseResponse{Error: errorText(c, err)})
		return
	}

	model, err := editable.model(uri.ID.String())
	if err != nil {
		c.JSON(status(err), ExpenseResponse{Error: errorText(c, err)})
		return
	}

	expense, partition, err := co.Records.UpdateExpense(c.Request.Context(), uri.UserID, month, model)
	if err != nil {
		c.JSON(status(err), ExpenseResponse{Error: errorText(c, err)})
		return
	}

	data := newExpense(c, uri.UserID, partition, expense)
	c.JSON(http.StatusOK, ExpenseResponse{Data: &data})
}

// @Summary		Delete expense
// @Description	Deletes an expense. Without confirm=true, the confirmation prompt is returned instead.
// @Tags			Expenses
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		428		{object}	confirmationError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the expense"
// @Param			month	query		string	true	"Month the expense is stored in, YYYY-MM"
// @Param			confirm	query		bool	false	"Confirms the deletion"
// @Router			/v1/users/{userId}/expenses/{id} [delete]
func (co Controller) DeleteExpense(c *gin.Context) {
	uri, month, expense, ok := co.expense(c)
	if !ok {
		return
	}

	deletion := finance.Confirmable[struct{}]{
		Prompt: finance.Prompt{Message: fmt.Sprintf("Do you really want to delete the expense \"%s\"?", expense.Description)},
		Continue: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, co.Records.DeleteExpense(ctx, uri.UserID, month, expense.ID)
		},
	}

	yes, err := confirmed(c)
	if err != nil {
		abort(c, err)
		return
	}

	if !yes {
		requireConfirmation(c, deletion.Prompt)
		return
	}

	if _, err := deletion.Confirm(c.Request.Context()); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Propagate expense
// @Description	Copies a fixed expense paid up front to every remaining month of its year that does not have a matching expense yet.
// @Description	Without confirm=true, the confirmation prompt is returned instead.
// @Tags			Expenses
// @Produce		json
// @Success		200		{object}	PropagationResponse
// @Failure		400		{object}	PropagationResponse
// @Failure		404		{object}	PropagationResponse
// @Failure		428		{object}	confirmationError
// @Failure		500		{object}	PropagationResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the expense"
// @Param			month	query		string	true	"Month the expense is stored in, YYYY-MM"
// @Param			confirm	query		bool	false	"Confirms the propagation"
// @Router			/v1/users/{userId}/expenses/{id}/propagate [post]
func (co Controller) PropagateExpense(c *gin.Context) {
	uri, _, expense, ok := co.expense(c)
	if !ok {
		return
	}

	propagation, err := co.Propagator.ExpensePropagation(uri.UserID, expense)
	if err != nil {
		c.JSON(status(err), PropagationResponse{Error: errorText(c, err)})
		return
	}

	yes, err := confirmed(c)
	if err != nil {
		c.JSON(status(err), PropagationResponse{Error: errorText(c, err)})
		return
	}

	if !yes {
		requireConfirmation(c, propagation.Prompt)
		return
	}

	result, err := propagation.Confirm(c.Request.Context())
	if err != nil {
		// Months propagated before the failure are kept and reported
		c.JSON(status(err), PropagationResponse{Data: &result, Error: errorText(c, err)})
		return
	}

	c.JSON(http.StatusOK, PropagationResponse{Data: &result})
}

// expense loads the expense the request refers to. If that is not possible,
// the error response is written.
func (co Controller) expense(c *gin.Context) (URIRecord, types.Month, models.Expense, bool) {
	uri, month, err := bindRecord(c)
	if err != nil {
		abort(c, err)
		return URIRecord{}, types.Month{}, models.Expense{}, false
	}

	expense, err := co.Records.Expense(c.Request.Context(), uri.UserID, month, uri.ID.String())
	if err != nil {
		abort(c, err)
		return URIRecord{}, types.Month{}, models.Expense{}, false
	}

	return uri, month, expense, true
}
