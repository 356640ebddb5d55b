package v1

import (
	"fmt"

	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExpenseEditable represents all user configurable parameters
type ExpenseEditable struct {
	Date            types.Date             `json:"date" example:"2024-03-12" swaggertype:"string"` // Date of the expense, decides the month it is stored in
	Description     string                 `json:"description" example:"Groceries"`                // Description
	Value           decimal.NullDecimal    `json:"value" example:"50.00" swaggertype:"string"`     // Non-negative amount, required
	Type            models.RecordType      `json:"type" example:"Variable" enums:"Fixed,Variable"` // Fixed expenses paid up front can be propagated
	Category        string                 `json:"category" example:"Food"`                        // Category from the settings
	PaymentMethod   string                 `json:"paymentMethod" example:"Credit Card"`            // Payment method from the settings
	CreditCardName  string                 `json:"creditCardName" example:"Card A"`                // Ignored unless paid by credit card
	InstallmentType models.InstallmentType `json:"installmentType" example:"Installments" enums:"UpFront,Installments" default:"UpFront"`
	Installments    int                    `json:"installments" example:"3" default:"1"` // Ignored unless paid in installments
}

func (editable ExpenseEditable) model(id string) (models.Expense, error) {
	if !editable.Value.Valid {
		return models.Expense{}, errValueRequired
	}

	return models.Expense{
		MoneyRecord: models.MoneyRecord{
			ID:          id,
			Date:        editable.Date,
			Description: editable.Description,
			Value:       editable.Value.Decimal,
			Type:        editable.Type,
		},
		Category:        editable.Category,
		PaymentMethod:   editable.PaymentMethod,
		CreditCardName:  editable.CreditCardName,
		InstallmentType: editable.InstallmentType,
		Installments:    editable.Installments,
	}, nil
}

type ExpenseLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/users/alice/expenses/0b3e1dc6-0b6a-4e0b-a0a2-0f5d0d4df8e1?month=2024-03"`                // The expense itself
	Propagate string `json:"propagate" example:"https://example.com/api/v1/users/alice/expenses/0b3e1dc6-0b6a-4e0b-a0a2-0f5d0d4df8e1/propagate?month=2024-03"` // Propagation of the expense to the remaining months of its year
}

type Expense struct {
	models.Expense
	Links ExpenseLinks `json:"links"`
}

// newExpense returns the API representation of an expense stored in month.
func newExpense(c *gin.Context, userID string, month types.Month, model models.Expense) Expense {
	url := fmt.Sprintf("%s/expenses/%s", userURL(c, userID), model.ID)

	return Expense{
		Expense: model,
		Links: ExpenseLinks{
			Self:      fmt.Sprintf("%s?month=%s", url, month.String()),
			Propagate: fmt.Sprintf("%s/propagate?month=%s", url, month.String()),
		},
	}
}

type ExpenseListResponse struct {
	Data  []Expense `json:"data"`                                                  // List of expenses
	Error *string   `json:"error" example:"the month query parameter must be set"` // The error, if any occurred
}

type ExpenseCreateResponse struct {
	Data  []ExpenseResponse `json:"data"`                                                 // List of the created expenses or their respective error
	Error *string           `json:"error" example:"invalid record: category is required"` // The error, if any occurred
}

func (r *ExpenseCreateResponse) appendError(c *gin.Context, err error, currentStatus int) int {
	r.Data = append(r.Data, ExpenseResponse{Error: errorText(c, err)})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ExpenseResponse struct {
	Data  *Expense `json:"data"`                                            // Data for the expense
	Error *string  `json:"error" example:"document not found: users/alice"` // The error, if any occurred
}

type ExpenseQueryFilter struct {
	QueryMonth
	Description   string `form:"description"`   // Glob pattern the description must match, e.g. "Gro*"
	Type          string `form:"type"`          // By type
	Category      string `form:"category"`      // By category
	PaymentMethod string `form:"paymentMethod"` // By payment method
}

// match returns the field values the store filters by.
func (f ExpenseQueryFilter) match() map[string]string {
	match := map[string]string{}
	for field, value := range map[string]string{
		"type":          f.Type,
		"category":      f.Category,
		"paymentMethod": f.PaymentMethod,
	} {
		if value != "" {
			match[field] = value
		}
	}

	return match
}
