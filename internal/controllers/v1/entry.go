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

// RegisterEntryRoutes registers the routes for entries with
// the RouterGroup that is passed.
func (co Controller) RegisterEntryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsEntryList)
		r.GET("", co.GetEntries)
		r.POST("", co.CreateEntries)
	}

	// Entry with ID
	{
		r.OPTIONS("/:id", co.OptionsEntryDetail)
		r.GET("/:id", co.GetEntry)
		r.PUT("/:id", co.UpdateEntry)
		r.DELETE("/:id", co.DeleteEntry)
		r.OPTIONS("/:id/propagate", co.OptionsEntryPropagate)
		r.POST("/:id/propagate", co.PropagateEntry)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entries
// @Success		204
// @Param			userId	path	string	true	"ID of the user"
// @Router			/v1/users/{userId}/entries [options]
func OptionsEntryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entries
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the entry"
// @Param			month	query		string	true	"Month the entry is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/entries/{id} [options]
func (co Controller) OptionsEntryDetail(c *gin.Context) {
	if _, _, _, ok := co.entry(c); !ok {
		return
	}

	httputil.OptionsGetPutDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entries
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the entry"
// @Param			month	query		string	true	"Month the entry is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/entries/{id}/propagate [options]
func (co Controller) OptionsEntryPropagate(c *gin.Context) {
	if _, _, _, ok := co.entry(c); !ok {
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Get entries
// @Description	Returns the entries of a month in the order they were created
// @Tags			Entries
// @Produce		json
// @Success		200			{object}	EntryListResponse
// @Failure		400			{object}	EntryListResponse
// @Failure		500			{object}	EntryListResponse
// @Param			userId		path		string	true	"ID of the user"
// @Param			month		query		string	true	"Month, YYYY-MM"
// @Param			description	query		string	false	"Glob pattern for the description"
// @Param			type		query		string	false	"Filter by type"
// @Router			/v1/users/{userId}/entries [get]
func (co Controller) GetEntries(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), EntryListResponse{Error: errorText(c, err)})
		return
	}

	var filter EntryQueryFilter
	if err := bindQuery(c, &filter); err != nil {
		c.JSON(status(err), EntryListResponse{Error: errorText(c, err)})
		return
	}

	if filter.Month.IsZero() {
		c.JSON(status(errMonthNotSetInQuery), EntryListResponse{Error: errorText(c, errMonthNotSetInQuery)})
		return
	}

	match := map[string]string{}
	if filter.Type != "" {
		match["type"] = filter.Type
	}

	entries, err := co.Records.FindEntries(c.Request.Context(), uri.UserID, filter.Month, match)
	if err != nil {
		c.JSON(status(err), EntryListResponse{Error: errorText(c, err)})
		return
	}

	data := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if filter.Description != "" && !glob.Glob(filter.Description, entry.Description) {
			continue
		}
		data = append(data, newEntry(c, uri.UserID, filter.Month, entry))
	}

	c.JSON(http.StatusOK, EntryListResponse{Data: data})
}

// @Summary		Create entries
// @Description	Creates new entries. Each entry is stored in the month of its date.
// @Tags			Entries
// @Accept			json
// @Produce		json
// @Success		201		{object}	EntryCreateResponse
// @Failure		400		{object}	EntryCreateResponse
// @Failure		500		{object}	EntryCreateResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			entries	body		[]EntryEditable	true	"Entries"
// @Router			/v1/users/{userId}/entries [post]
func (co Controller) CreateEntries(c *gin.Context) {
	var uri URIUser
	if err := bindURI(c, &uri); err != nil {
		c.JSON(status(err), EntryCreateResponse{Error: errorText(c, err)})
		return
	}

	var editables []EntryEditable
	if err := httputil.BindData(c, &editables); err != nil {
		c.JSON(status(err), EntryCreateResponse{Error: errorText(c, err)})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := EntryCreateResponse{}

	for _, editable := range editables {
		model, err := editable.model("")
		if err != nil {
			status = r.appendError(c, err, status)
			continue
		}

		entry, err := co.Records.AddEntry(c.Request.Context(), uri.UserID, model)
		if err != nil {
			status = r.appendError(c, err, status)
			continue
		}

		data := newEntry(c, uri.UserID, entry.Month(), entry)
		r.Data = append(r.Data, EntryResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get entry
// @Description	Returns a specific entry
// @Tags			Entries
// @Produce		json
// @Success		200		{object}	EntryResponse
// @Failure		400		{object}	EntryResponse
// @Failure		404		{object}	EntryResponse
// @Failure		500		{object}	EntryResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the entry"
// @Param			month	query		string	true	"Month the entry is stored in, YYYY-MM"
// @Router			/v1/users/{userId}/entries/{id} [get]
func (co Controller) GetEntry(c *gin.Context) {
	uri, month, entry, ok := co.entry(c)
	if !ok {
		return
	}

	data := newEntry(c, uri.UserID, month, entry)
	c.JSON(http.StatusOK, EntryResponse{Data: &data})
}

// @Summary		Update entry
// @Description	Replaces all fields of an existing entry. If the date changes to another month, the entry moves to that month.
// @Tags			Entries
// @Accept			json
// @Produce		json
// @Success		200		{object}	EntryResponse
// @Failure		400		{object}	EntryResponse
// @Failure		404		{object}	EntryResponse
// @Failure		500		{object}	EntryResponse
// @Param			userId	path		string			true	"ID of the user"
// @Param			id		path		string			true	"ID of the entry"
// @Param			month	query		string			true	"Month the entry is stored in, YYYY-MM"
// @Param			entry	body		EntryEditable	true	"Entry"
// @Router			/v1/users/{userId}/entries/{id} [put]
func (co Controller) UpdateEntry(c *gin.Context) {
	uri, month, err := bindRecord(c)
	if err != nil {
		c.JSON(status(err), EntryResponse{Error: errorText(c, err)})
		return
	}

	var editable EntryEditable
	if err := httputil.BindData(c, &editable); err != nil {
		c.JSON(status(err), EntryResponse{Error: errorText(c, err)})
		return
	}

	model, err := editable.model(uri.ID.String())
	if err != nil {
		c.JSON(status(err), EntryResponse{Error: errorText(c, err)})
		return
	}

	entry, partition, err := co.Records.UpdateEntry(c.Request.Context(), uri.UserID, month, model)
	if err != nil {
		c.JSON(status(err), EntryResponse{Error: errorText(c, err)})
		return
	}

	data := newEntry(c, uri.UserID, partition, entry)
	c.JSON(http.StatusOK, EntryResponse{Data: &data})
}

// @Summary		Delete entry
// @Description	Deletes an entry. Without confirm=true, the confirmation prompt is returned instead.
// @Tags			Entries
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		428		{object}	confirmationError
// @Failure		500		{object}	httpError
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the entry"
// @Param			month	query		string	true	"Month the entry is stored in, YYYY-MM"
// @Param			confirm	query		bool	false	"Confirms the deletion"
// @Router			/v1/users/{userId}/entries/{id} [delete]
func (co Controller) DeleteEntry(c *gin.Context) {
	uri, month, entry, ok := co.entry(c)
	if !ok {
		return
	}

	deletion := finance.Confirmable[struct{}]{
		Prompt: finance.Prompt{Message: fmt.Sprintf("Do you really want to delete the entry \"%s\"?", entry.Description)},
		Continue: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, co.Records.DeleteEntry(ctx, uri.UserID, month, entry.ID)
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

// @Summary		Propagate entry
// @Description	Copies a fixed entry to every remaining month of its year that does not have a matching entry yet.
// @Description	Without confirm=true, the confirmation prompt is returned instead.
// @Tags			Entries
// @Produce		json
// @Success		200		{object}	PropagationResponse
// @Failure		400		{object}	PropagationResponse
// @Failure		404		{object}	PropagationResponse
// @Failure		428		{object}	confirmationError
// @Failure		500		{object}	PropagationResponse
// @Param			userId	path		string	true	"ID of the user"
// @Param			id		path		string	true	"ID of the entry"
// @Param			month	query		string	true	"Month the entry is stored in, YYYY-MM"
// @Param			confirm	query		bool	false	"Confirms the propagation"
// @Router			/v1/users/{userId}/entries/{id}/propagate [post]
func (co Controller) PropagateEntry(c *gin.Context) {
	uri, _, entry, ok := co.entry(c)
	if !ok {
		return
	}

	propagation, err := co.Propagator.EntryPropagation(uri.UserID, entry)
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

// entry loads the entry the request refers to. If that is not possible,
// the error response is written.
func (co Controller) entry(c *gin.Context) (URIRecord, types.Month, models.Entry, bool) {
	uri, month, err := bindRecord(c)
	if err != nil {
		abort(c, err)
		return URIRecord{}, types.Month{}, models.Entry{}, false
	}

	entry, err := co.Records.Entry(c.Request.Context(), uri.UserID, month, uri.ID.String())
	if err != nil {
		abort(c, err)
		return URIRecord{}, types.Month{}, models.Entry{}, false
	}

	return uri, month, entry, true
}
