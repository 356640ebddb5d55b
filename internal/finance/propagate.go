package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/rs/zerolog/log"
)

var ErrNotEligible = errors.New("record cannot be propagated")

// Dating decides which date propagated records get.
type Dating int

const (
	// KeepSourceDate copies the date of the source record unchanged.
	KeepSourceDate Dating = iota

	// RedateToTargetMonth moves the date into the target month, keeping the
	// day of month where the target month is long enough.
	RedateToTargetMonth
)

// RecordStore is the storage used by the Propagator.
type RecordStore interface {
	FindEntries(ctx context.Context, userID string, month types.Month, match map[string]string) ([]models.Entry, error)
	AddEntryIn(ctx context.Context, userID string, month types.Month, e models.Entry) (models.Entry, error)
	FindExpenses(ctx context.Context, userID string, month types.Month, match map[string]string) ([]models.Expense, error)
	AddExpenseIn(ctx context.Context, userID string, month types.Month, e models.Expense) (models.Expense, error)
}

// PropagationResult lists the months a record was copied to and the
// months that already had a matching record.
type PropagationResult struct {
	Created []types.Month `json:"created" swaggertype:"array,string"`
	Skipped []types.Month `json:"skipped" swaggertype:"array,string"`
}

// Propagator copies fixed records into the remaining months of their year.
type Propagator struct {
	Records RecordStore
	Dating  Dating
}

// remainingMonths returns the months strictly after month until December.
func remainingMonths(month types.Month) []types.Month {
	months := []types.Month{}
	for m := month.AddDate(0, 1); m.Year() == month.Year(); m = m.AddDate(0, 1) {
		months = append(months, m)
	}

	return months
}

func (p Propagator) date(source types.Date, target types.Month) types.Date {
	if p.Dating == RedateToTargetMonth {
		return target.Date(source.Day())
	}

	return source
}

// CheckEntry returns ErrNotEligible unless the entry can be propagated.
func CheckEntry(e models.Entry) error {
	if e.Type != models.Fixed {
		return fmt.Errorf("%w: only entries of type %s can be propagated", ErrNotEligible, models.Fixed)
	}

	return nil
}

// CheckExpense returns ErrNotEligible unless the expense can be
// propagated.
func CheckExpense(e models.Expense) error {
	if e.Type != models.Fixed || e.InstallmentType != models.UpFront {
		return fmt.Errorf("%w: only expenses of type %s paid %s can be propagated", ErrNotEligible, models.Fixed, models.UpFront)
	}

	return nil
}

// PropagateEntry copies a fixed entry into every later month of its
// year that does not have an entry with the same description, value
// and type yet.
//
// Propagation is not atomic. If a write fails, the months written so far
// are kept and returned together with the error.
func (p Propagator) PropagateEntry(ctx context.Context, userID string, e models.Entry) (PropagationResult, error) {
	result := PropagationResult{Created: []types.Month{}, Skipped: []types.Month{}}

	e.Normalize()
	if err := CheckEntry(e); err != nil {
		return result, err
	}

	for _, month := range remainingMonths(e.Month()) {
		existing, err := p.Records.FindEntries(ctx, userID, month, e.MatchFields())
		if err != nil {
			return result, fmt.Errorf("checking %s for existing entries: %w", month, err)
		}

		if len(existing) > 0 {
			result.Skipped = append(result.Skipped, month)
			propagatedRecords.WithLabelValues("entry", "skipped").Inc()
			continue
		}

		copied := models.Entry{MoneyRecord: e.MoneyRecord}
		copied.ID = ""
		copied.Date = p.date(e.Date, month)

		if _, err := p.Records.AddEntryIn(ctx, userID, month, copied); err != nil {
			return result, fmt.Errorf("propagating to %s: %w", month, err)
		}

		result.Created = append(result.Created, month)
		propagatedRecords.WithLabelValues("entry", "created").Inc()
	}

	log.Debug().Str("user", userID).Str("description", e.Description).Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).Msg("propagated entry")
	return result, nil
}

// PropagateExpense copies a fixed expense paid up front into every
// later month of its year that does not have an expense with the same
// description, value, type and category yet.
func (p Propagator) PropagateExpense(ctx context.Context, userID string, e models.Expense) (PropagationResult, error) {
	result := PropagationResult{Created: []types.Month{}, Skipped: []types.Month{}}

	e.Normalize()
	if err := CheckExpense(e); err != nil {
		return result, err
	}

	for _, month := range remainingMonths(e.Month()) {
		existing, err := p.Records.FindExpenses(ctx, userID, month, e.MatchFields())
		if err != nil {
			return result, fmt.Errorf("checking %s for existing expenses: %w", month, err)
		}

		if len(existing) > 0 {
			result.Skipped = append(result.Skipped, month)
			propagatedRecords.WithLabelValues("expense", "skipped").Inc()
			continue
		}

		copied := e
		copied.ID = ""
		copied.Date = p.date(e.Date, month)

		if _, err := p.Records.AddExpenseIn(ctx, userID, month, copied); err != nil {
			return result, fmt.Errorf("propagating to %s: %w", month, err)
		}

		result.Created = append(result.Created, month)
		propagatedRecords.WithLabelValues("expense", "created").Inc()
	}

	log.Debug().Str("user", userID).Str("description", e.Description).Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).Msg("propagated expense")
	return result, nil
}

// EntryPropagation returns the confirmable propagation of an entry.
// Entries that cannot be propagated are rejected before asking.
func (p Propagator) EntryPropagation(userID string, e models.Entry) (Confirmable[PropagationResult], error) {
	e.Normalize()
	if err := CheckEntry(e); err != nil {
		return Confirmable[PropagationResult]{}, err
	}

	return Confirmable[PropagationResult]{
		Prompt: Prompt{Message: fmt.Sprintf("Do you want to propagate the fixed entry \"%s\" to the remaining months of %d?", e.Description, e.Date.Year())},
		Continue: func(ctx context.Context) (PropagationResult, error) {
			return p.PropagateEntry(ctx, userID, e)
		},
	}, nil
}

// ExpensePropagation returns the confirmable propagation of an expense.
func (p Propagator) ExpensePropagation(userID string, e models.Expense) (Confirmable[PropagationResult], error) {
	e.Normalize()
	if err := CheckExpense(e); err != nil {
		return Confirmable[PropagationResult]{}, err
	}

	return Confirmable[PropagationResult]{
		Prompt: Prompt{Message: fmt.Sprintf("Do you want to propagate the fixed expense \"%s\" to the remaining months of %d?", e.Description, e.Date.Year())},
		Continue: func(ctx context.Context) (PropagationResult, error) {
			return p.PropagateExpense(ctx, userID, e)
		},
	}, nil
}
