package v1

import (
	"fmt"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EntryEditable represents all user configurable parameters
type EntryEditable struct {
	Date        types.Date          `json:"date" example:"2024-03-05" swaggertype:"string"` // Date of the entry, decides the month it is stored in
	Description string              `json:"description" example:"Salary"`                   // Description
	Value       decimal.NullDecimal `json:"value" example:"1500.00" swaggertype:"string"`   // Non-negative amount, required
	Type        models.RecordType   `json:"type" example:"Fixed" enums:"Fixed,Variable"`    // Fixed entries can be propagated
}

func (editable EntryEditable) model(id string) (models.Entry, error) {
	if !editable.Value.Valid {
		return models.Entry{}, errValueRequired
	}

	return models.Entry{
		MoneyRecord: models.MoneyRecord{
			ID:          id,
			Date:        editable.Date,
			Description: editable.Description,
			Value:       editable.Value.Decimal,
			Type:        editable.Type,
		},
	}, nil
}

type EntryLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/users/alice/entries/65392deb-5e92-4268-b114-297faad6cdce?month=2024-03"`                // The entry itself
	Propagate string `json:"propagate" example:"https://example.com/api/v1/users/alice/entries/65392deb-5e92-4268-b114-297faad6cdce/propagate?month=2024-03"` // Propagation of the entry to the remaining months of its year
}

type Entry struct {
	models.Entry
	Links EntryLinks `json:"links"`
}

// newEntry returns the API representation of an entry stored in month.
func newEntry(c *gin.Context, userID string, month types.Month, model models.Entry) Entry {
	url := fmt.Sprintf("%s/entries/%s", userURL(c, userID), model.ID)

	return Entry{
		Entry: model,
		Links: EntryLinks{
			Self:      fmt.Sprintf("%s?month=%s", url, month.String()),
			Propagate: fmt.Sprintf("%s/propagate?month=%s", url, month.String()),
		},
	}
}

type EntryListResponse struct {
	Data  []Entry `json:"data"`                                                  // List of entries
	Error *string `json:"error" example:"the month query parameter must be set"` // The error, if any occurred
}

type EntryCreateResponse struct {
	Data  []EntryResponse `json:"data"`                                             // List of the created entries or their respective error
	Error *string         `json:"error" example:"invalid record: date is required"` // The error, if any occurred
}

func (r *EntryCreateResponse) appendError(c *gin.Context, err error, currentStatus int) int {
	r.Data = append(r.Data, EntryResponse{Error: errorText(c, err)})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EntryResponse struct {
	Data  *Entry  `json:"data"`                                            // Data for the entry
	Error *string `json:"error" example:"document not found: users/alice"` // The error, if any occurred
}

type EntryQueryFilter struct {
	QueryMonth
	Description string `form:"description"` // Glob pattern the description must match, e.g. "Sal*"
	Type        string `form:"type"`        // By type
}

type PropagationResponse struct {
	Data  *finance.PropagationResult `json:"data"`                                                                                      // Months the record was copied to or skipped
	Error *string                    `json:"error" example:"record cannot be propagated: only entries of type Fixed can be propagated"` // The error, if any occurred
}
