package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/types"
)

var ErrInvalidUser = errors.New("user ID must not be empty, '.', '..' or contain '/'")

// Records is a typed repository of entries, expenses and settings on
// top of a Store.
type Records struct {
	store Store
}

// NewRecords returns a repository using s.
func NewRecords(s Store) *Records {
	return &Records{store: s}
}

// Store returns the underlying document store.
func (r *Records) Store() Store {
	return r.store
}

// ValidateUser returns ErrInvalidUser unless userID can be used in document paths.
func ValidateUser(userID string) error {
	if userID == "" || userID == "." || userID == ".." || strings.Contains(userID, "/") {
		return ErrInvalidUser
	}

	return nil
}

// AddEntry stores a new entry in the partition of its date.
func (r *Records) AddEntry(ctx context.Context, userID string, e models.Entry) (models.Entry, error) {
	return r.AddEntryIn(ctx, userID, e.Month(), e)
}

// AddEntryIn stores a new entry in the partition of month,
// independent of its date.
func (r *Records) AddEntryIn(ctx context.Context, userID string, month types.Month, e models.Entry) (models.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Entry{}, err
	}

	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Entry{}, err
	}

	id, err := r.store.Add(ctx, EntriesPath(userID, month), e.Fields())
	if err != nil {
		return models.Entry{}, err
	}

	e.ID = id
	return e, nil
}

// Entry returns a single entry.
func (r *Records) Entry(ctx context.Context, userID string, month types.Month, id string) (models.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Entry{}, err
	}

	doc, err := r.store.Get(ctx, RecordPath(EntriesPath(userID, month), id))
	if err != nil {
		return models.Entry{}, err
	}

	return models.EntryFromFields(doc.ID, doc.Data)
}

// UpdateEntry replaces all fields of the entry with the given ID that is
// currently stored in month. If the new date is in a different month
// than the previous one, the entry moves to the partition of the new date
// and keeps its ID. The month the entry is stored in afterwards is
// returned with it.
func (r *Records) UpdateEntry(ctx context.Context, userID string, month types.Month, e models.Entry) (models.Entry, types.Month, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Entry{}, types.Month{}, err
	}

	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Entry{}, types.Month{}, err
	}

	partition, err := r.replace(ctx, month, func(m types.Month) string { return RecordPath(EntriesPath(userID, m), e.ID) }, e.Date, e.Fields())
	if err != nil {
		return models.Entry{}, types.Month{}, err
	}

	return e, partition, nil
}

// DeleteEntry deletes an entry.
func (r *Records) DeleteEntry(ctx context.Context, userID string, month types.Month, id string) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}

	return r.store.Delete(ctx, RecordPath(EntriesPath(userID, month), id))
}

// Entries returns all entries of a month.
func (r *Records) Entries(ctx context.Context, userID string, month types.Month) ([]models.Entry, error) {
	return r.FindEntries(ctx, userID, month, nil)
}

// FindEntries returns the entries of a month whose fields equal all given values.
func (r *Records) FindEntries(ctx context.Context, userID string, month types.Month, match map[string]string) ([]models.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}

	docs, err := r.store.Query(ctx, EntriesPath(userID, month), filters(match)...)
	if err != nil {
		return nil, err
	}

	return decodeAll(docs, models.EntryFromFields)
}

// AddExpense stores a new expense in the partition of its date.
func (r *Records) AddExpense(ctx context.Context, userID string, e models.Expense) (models.Expense, error) {
	return r.AddExpenseIn(ctx, userID, e.Month(), e)
}

// AddExpenseIn stores a new expense in the partition of month,
// independent of its date.
func (r *Records) AddExpenseIn(ctx context.Context, userID string, month types.Month, e models.Expense) (models.Expense, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Expense{}, err
	}

	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}

	id, err := r.store.Add(ctx, ExpensesPath(userID, month), e.Fields())
	if err != nil {
		return models.Expense{}, err
	}

	e.ID = id
	return e, nil
}

// Expense returns a single expense.
func (r *Records) Expense(ctx context.Context, userID string, month types.Month, id string) (models.Expense, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Expense{}, err
	}

	doc, err := r.store.Get(ctx, RecordPath(ExpensesPath(userID, month), id))
	if err != nil {
		return models.Expense{}, err
	}

	return models.ExpenseFromFields(doc.ID, doc.Data)
}

// UpdateExpense replaces all fields of an expense, see UpdateEntry.
func (r *Records) UpdateExpense(ctx context.Context, userID string, month types.Month, e models.Expense) (models.Expense, types.Month, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Expense{}, types.Month{}, err
	}

	e.Normalize()
	if err := e.Validate(); err != nil {
		return models.Expense{}, types.Month{}, err
	}

	partition, err := r.replace(ctx, month, func(m types.Month) string { return RecordPath(ExpensesPath(userID, m), e.ID) }, e.Date, e.Fields())
	if err != nil {
		return models.Expense{}, types.Month{}, err
	}

	return e, partition, nil
}

// DeleteExpense deletes an expense.
func (r *Records) DeleteExpense(ctx context.Context, userID string, month types.Month, id string) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}

	return r.store.Delete(ctx, RecordPath(ExpensesPath(userID, month), id))
}

// Expenses returns all expenses of a month.
func (r *Records) Expenses(ctx context.Context, userID string, month types.Month) ([]models.Expense, error) {
	return r.FindExpenses(ctx, userID, month, nil)
}

// FindExpenses returns the expenses of a month whose fields equal all given values.
func (r *Records) FindExpenses(ctx context.Context, userID string, month types.Month, match map[string]string) ([]models.Expense, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}

	docs, err := r.store.Query(ctx, ExpensesPath(userID, month), filters(match)...)
	if err != nil {
		return nil, err
	}

	return decodeAll(docs, models.ExpenseFromFields)
}

// Month returns all entries and expenses of a month.
func (r *Records) Month(ctx context.Context, userID string, month types.Month) ([]models.Entry, []models.Expense, error) {
	entries, err := r.Entries(ctx, userID, month)
	if err != nil {
		return nil, nil, err
	}

	expenses, err := r.Expenses(ctx, userID, month)
	if err != nil {
		return nil, nil, err
	}

	return entries, expenses, nil
}

// Settings returns the settings of a user. Users without settings get
// the default settings, which are stored on first access.
func (r *Records) Settings(ctx context.Context, userID string) (models.Settings, error) {
	if err := ValidateUser(userID); err != nil {
		return models.Settings{}, err
	}

	doc, err := r.store.Get(ctx, SettingsPath(userID))
	if errors.Is(err, ErrNotFound) {
		settings := models.DefaultSettings()
		if err := r.SaveSettings(ctx, userID, settings); err != nil {
			return models.Settings{}, err
		}
		return settings, nil
	}

	if err != nil {
		return models.Settings{}, err
	}

	return models.SettingsFromFields(doc.Data)
}

// SaveSettings replaces the settings of a user.
func (r *Records) SaveSettings(ctx context.Context, userID string, s models.Settings) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}

	return r.store.Set(ctx, SettingsPath(userID), s.Fields(), SetOptions{Merge: false})
}

// replace overwrites the record that pathFor returns for month with
// fields. A record whose date moves to another month is moved to the
// partition of that month. Records that keep the month of their date stay
// where they are, even if that is not the month of the date.
func (r *Records) replace(ctx context.Context, month types.Month, pathFor func(types.Month) string, date types.Date, fields map[string]any) (types.Month, error) {
	from := pathFor(month)
	existing, err := r.store.Get(ctx, from)
	if err != nil {
		return types.Month{}, err
	}

	target := month
	if previous, err := types.ParseDate(fmt.Sprint(existing.Data["date"])); err != nil || !previous.Month().Equal(date.Month()) {
		target = date.Month()
	}

	to := pathFor(target)
	if err := r.store.Set(ctx, to, fields, SetOptions{Merge: false}); err != nil {
		return types.Month{}, err
	}

	if from == to {
		return target, nil
	}

	if err := r.store.Delete(ctx, from); err != nil {
		return types.Month{}, fmt.Errorf("moving record to %s: %w", to, err)
	}

	return target, nil
}

func filters(match map[string]string) []Filter {
	f := make([]Filter, 0, len(match))
	for field, value := range match {
		f = append(f, Eq(field, value))
	}

	return f
}

func decodeAll[T any](docs []Document, decode func(string, map[string]any) (T, error)) ([]T, error) {
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		record, err := decode(doc.ID, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		records = append(records, record)
	}

	return records, nil
}
