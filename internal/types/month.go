// Package types implements the calendar types used to partition financial data.
package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Month is a month in a specific year. It is the key under which
// entries and expenses are stored.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// MarshalJSON implements the json.Marshaler interface.
// The output is the result of m.String().
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

var fullDate = regexp.MustCompile("^[0-9]{4}-[0-9]{2}-[0-9]{2}$")

// UnmarshalJSON implements the json.Unmarshaler interface.
//
// Both "YYYY-MM" and "YYYY-MM-DD" are accepted. Everything except
// the year and month is ignored.
func (m *Month) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`) // get rid of "
	if value == "" || value == "null" {
		return nil
	}

	pattern := "2006-01"
	if fullDate.MatchString(value) {
		pattern = "2006-01-02"
	}

	t, err := time.Parse(pattern, value)
	if err != nil {
		return err
	}

	*m = MonthOf(t)
	return nil
}

// UnmarshalParam parses a month from a URI or query parameter.
func (m *Month) UnmarshalParam(p string) error {
	parsed, err := ParseMonth(p)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}

// MonthOf returns the Month in which a time occurs.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return NewMonth(year, month)
}

// ParseMonth parses a "YYYY-MM" string and returns the Month value it represents
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("month must be in YYYY-MM format: %w", err)
	}

	return MonthOf(t), nil
}

// Year returns the year of the month.
func (m Month) Year() int {
	return time.Time(m).Year()
}

// MonthOfYear returns the month of the year.
func (m Month) MonthOfYear() time.Month {
	return time.Time(m).Month()
}

// DaysInMonth returns the number of calendar days of the month.
func (m Month) DaysInMonth() int {
	// Day 0 of the following month is the last day of this month
	return time.Date(m.Year(), m.MonthOfYear()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Before reports whether the month instant m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// After reports whether the month instant m is after n.
func (m Month) After(n Month) bool {
	return time.Time(m).After(time.Time(n))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return m.Year() == n.Year() && m.MonthOfYear() == n.MonthOfYear()
}

// Contains reports whether the date is in the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year() && d.MonthOfYear() == m.MonthOfYear()
}

// Date returns the date for the given day in the month. Days past the
// end of the month are clamped to the last day.
func (m Month) Date(day int) Date {
	if day < 1 {
		day = 1
	}

	if days := m.DaysInMonth(); day > days {
		day = days
	}

	return NewDate(m.Year(), m.MonthOfYear(), day)
}

// YearMonths returns the twelve months of a year in calendar order.
func YearMonths(year int) []Month {
	months := make([]Month, 0, 12)
	for i := time.January; i <= time.December; i++ {
		months = append(months, NewMonth(year, i))
	}

	return months
}
