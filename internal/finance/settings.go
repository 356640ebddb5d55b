package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/backend/internal/models"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
)

var (
	ErrEmptySetting  = errors.New("the value must not be empty")
	ErrInvalidLocale = errors.New("invalid locale")
)

// SettingsStore persists the settings of a user.
type SettingsStore interface {
	Settings(ctx context.Context, userID string) (models.Settings, error)
	SaveSettings(ctx context.Context, userID string, s models.Settings) error
}

// Registry manages the lists of selectable values of a user.
type Registry struct {
	Store SettingsStore
}

// Get returns the settings of a user.
func (r Registry) Get(ctx context.Context, userID string) (models.Settings, error) {
	return r.Store.Settings(ctx, userID)
}

// Add appends value to the list. Values are trimmed, empty values are
// rejected. Duplicates are allowed.
func (r Registry) Add(ctx context.Context, userID string, list models.SettingsList, value string) (models.Settings, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Settings{}, fmt.Errorf("%w: %w", models.ErrValidation, ErrEmptySetting)
	}

	return r.modify(ctx, userID, list, func(values []string) []string {
		return append(values, value)
	})
}

// Remove deletes every occurrence of value from the list. Removing a
// value that is not in the list succeeds without changes.
func (r Registry) Remove(ctx context.Context, userID string, list models.SettingsList, value string) (models.Settings, error) {
	return r.modify(ctx, userID, list, func(values []string) []string {
		return slices.DeleteFunc(values, func(v string) bool { return v == value })
	})
}

// SetLocale changes the language of month labels.
func (r Registry) SetLocale(ctx context.Context, userID, locale string) (models.Settings, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: %w '%s'", models.ErrValidation, ErrInvalidLocale, locale)
	}

	settings, err := r.Store.Settings(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}

	settings.Locale = tag.String()
	if err := r.Store.SaveSettings(ctx, userID, settings); err != nil {
		return models.Settings{}, err
	}

	return settings, nil
}

// Labels returns the month labels for the locale of a user. If the
// settings cannot be loaded, the default labels are used.
func (r Registry) Labels(ctx context.Context, userID string) MonthLabels {
	settings, err := r.Store.Settings(ctx, userID)
	if err != nil {
		return LabelsFor("")
	}

	return LabelsFor(settings.Locale)
}

// Removal returns the confirmable removal of value from the list.
func (r Registry) Removal(userID string, list models.SettingsList, value string) Confirmable[models.Settings] {
	return Confirmable[models.Settings]{
		Prompt: Prompt{Message: fmt.Sprintf("Do you really want to remove \"%s\" from %s?", value, list)},
		Continue: func(ctx context.Context) (models.Settings, error) {
			return r.Remove(ctx, userID, list, value)
		},
	}
}

func (r Registry) modify(ctx context.Context, userID string, list models.SettingsList, change func([]string) []string) (models.Settings, error) {
	settings, err := r.Store.Settings(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}

	values, err := settings.List(list)
	if err != nil {
		return models.Settings{}, err
	}
	*values = change(*values)

	if err := r.Store.SaveSettings(ctx, userID, settings); err != nil {
		return models.Settings{}, err
	}

	return settings, nil
}
