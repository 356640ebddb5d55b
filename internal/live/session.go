// Package live keeps the summary of the month a user is looking at up
// to date while the month's records and the user's settings change.
package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/models"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/finance-tracker/backend/internal/types"
	"github.com/rs/zerolog/log"
)

// View is the month a user is looking at.
type View struct {
	UserID string
	Month  types.Month
}

// Snapshot is the computed state of a view.
type Snapshot struct {
	UserID   string               `json:"userId" example:"alice"`
	Month    types.Month          `json:"month" swaggertype:"string" example:"2024-03"`
	Totals   finance.MonthTotals  `json:"totals"`
	Daily    []finance.DailyPoint `json:"daily"`
	Settings models.Settings      `json:"settings"`
}

// feeds that must have delivered before the first snapshot is sent.
const (
	feedEntries = 1 << iota
	feedExpenses
	feedSettings

	feedsAll = feedEntries | feedExpenses | feedSettings
)

// Session holds the subscriptions of one view. Applying a new view tears
// down the subscriptions of the previous one before new ones are
// established.
type Session struct {
	store store.Store

	apply sync.Mutex // serializes Apply and Close

	mu          sync.Mutex
	view        View
	generation  int
	active      bool
	loaded      int
	entries     []models.Entry
	expenses    []models.Expense
	settings    models.Settings
	unsubscribe []store.Unsubscribe

	updates chan Snapshot
	errors  chan error
}

// NewSession returns a session without a view.
func NewSession(s store.Store) *Session {
	return &Session{
		store:   s,
		updates: make(chan Snapshot, 1),
		errors:  make(chan error, 1),
	}
}

// Updates delivers a snapshot after every change of the view. Snapshots
// that have not been received yet are replaced by newer ones.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Errors delivers failures to load the state of the view.
func (s *Session) Errors() <-chan error {
	return s.errors
}

// View returns the current view and whether the session has one.
func (s *Session) View() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view, s.active
}

// Apply switches the session to view. Applying the current view again
// does nothing.
func (s *Session) Apply(ctx context.Context, view View) error {
	s.apply.Lock()
	defer s.apply.Unlock()

	s.mu.Lock()
	if s.active && s.view.UserID == view.UserID && s.view.Month.Equal(view.Month) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.teardown()

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.view = view
	s.active = true
	s.loaded = 0
	s.entries = nil
	s.expenses = nil
	s.settings = models.Settings{}
	drain(s.updates)
	drain(s.errors)
	s.mu.Unlock()

	feeds := []struct {
		path     string
		onChange func([]store.Document)
	}{
		{store.EntriesPath(view.UserID, view.Month), func(docs []store.Document) {
			entries := decode(docs, models.EntryFromFields)
			s.update(generation, feedEntries, func() { s.entries = entries })
		}},
		{store.ExpensesPath(view.UserID, view.Month), func(docs []store.Document) {
			expenses := decode(docs, models.ExpenseFromFields)
			s.update(generation, feedExpenses, func() { s.expenses = expenses })
		}},
		{store.SettingsPath(view.UserID), func(docs []store.Document) {
			settings := models.DefaultSettings()
			if len(docs) > 0 {
				decoded, err := models.SettingsFromFields(docs[0].Data)
				if err != nil {
					log.Warn().Err(err).Str("path", docs[0].Path).Msg("ignoring malformed settings")
				} else {
					settings = decoded
				}
			}
			s.update(generation, feedSettings, func() { s.settings = settings })
		}},
	}

	unsubscribe := make([]store.Unsubscribe, 0, len(feeds))
	for _, f := range feeds {
		u, err := s.store.Subscribe(ctx, f.path, f.onChange, func(err error) { s.fail(generation, err) })
		if err != nil {
			for _, u := range unsubscribe {
				u()
			}

			s.mu.Lock()
			s.active = false
			s.mu.Unlock()

			return fmt.Errorf("subscribing to %s: %w", f.path, err)
		}
		unsubscribe = append(unsubscribe, u)
	}

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	log.Debug().Str("user", view.UserID).Str("month", view.Month.String()).Msg("applied live view")
	return nil
}

// Close tears down all subscriptions. The session can be reused with
// Apply afterwards.
func (s *Session) Close() {
	s.apply.Lock()
	defer s.apply.Unlock()

	s.teardown()
}

// teardown ends all subscriptions. Callbacks of ended subscriptions are
// discarded by their generation, so the lock must not be held while
// waiting for them to finish.
func (s *Session) teardown() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.active = false
	s.generation++
	s.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
}

func (s *Session) update(generation, feed int, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return
	}

	apply()
	s.loaded |= feed

	if s.loaded != feedsAll {
		return
	}

	snapshot := Snapshot{
		UserID:   s.view.UserID,
		Month:    s.view.Month,
		Totals:   finance.Summarize(s.entries, s.expenses),
		Daily:    finance.Project(s.entries, s.expenses, s.view.Month),
		Settings: s.settings,
	}

	replace(s.updates, snapshot)
}

func (s *Session) fail(generation int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return
	}

	log.Error().Err(err).Str("user", s.view.UserID).Str("month", s.view.Month.String()).Msg("live view update failed")
	replace(s.errors, err)
}

// replace sends v on a channel with a buffer of one, dropping a value
// that has not been received yet. Callers must hold the session lock.
func replace[T any](c chan T, v T) {
	drain(c)
	c <- v
}

func drain[T any](c chan T) {
	select {
	case <-c:
	default:
	}
}

func decode[T any](docs []store.Document, fromFields func(string, map[string]any) (T, error)) []T {
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		r, err := fromFields(doc.ID, doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("path", doc.Path).Msg("ignoring malformed record")
			continue
		}
		records = append(records, r)
	}

	return records
}
