// Package scheduler runs the periodic export of annual summaries.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// LabelSource returns the month labels of a user.
type LabelSource interface {
	Labels(ctx context.Context, userID string) finance.MonthLabels
}

// Reporter writes the annual summary CSV of every configured user to
// Dir/{userId}/annual_summary_{year}.csv.
type Reporter struct {
	Fetcher finance.MonthFetcher
	Labels  LabelSource
	Dir     string
	Users   []string
	Now     func() time.Time // Defaults to time.Now
}

// Run exports the year of the previous month for all users. A run on
// the 1st of January exports the year that just ended.
//
// Failing users are logged and do not stop the export for other users.
func (r Reporter) Run(ctx context.Context) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	year := now().AddDate(0, -1, 0).Year()

	for _, userID := range r.Users {
		path, err := r.Export(ctx, userID, year)
		if err != nil {
			log.Error().Err(err).Str("user", userID).Int("year", year).Msg("annual summary export failed")
			continue
		}

		log.Info().Str("user", userID).Int("year", year).Str("path", path).Msg("exported annual summary")
	}
}

// Export writes the summary of year for one user and returns the path
// of the file. Existing files are replaced.
func (r Reporter) Export(ctx context.Context, userID string, year int) (string, error) {
	if err := store.ValidateUser(userID); err != nil {
		return "", err
	}

	summary := finance.Rollup(ctx, r.Fetcher, userID, year, r.Labels.Labels(ctx, userID))

	dir := filepath.Join(r.Dir, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".annual_summary_*")
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := finance.WriteCSV(tmp, summary); err != nil {
		tmp.Close()
		return "", err
	}

	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, finance.CSVFilename(year))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving report into place: %w", err)
	}

	return path, nil
}

// Start schedules the reporter with a standard five field cron
// expression, e.g. "0 9 1 * *" for 09:00 on the first of every month.
// Stop the returned cron to end the schedule.
func Start(ctx context.Context, schedule string, r Reporter) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		log.Info().Int("users", len(r.Users)).Msg("executing annual summary export")
		r.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule '%s': %w", schedule, err)
	}

	c.Start()
	return c, nil
}
