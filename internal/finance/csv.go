package finance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNothingToExport = errors.New("there is no data to export")
	ErrInvalidCSV      = errors.New("invalid annual summary CSV")
)

var csvHeader = []string{"Month", "TotalEntries", "TotalExpenses", "NetBalance", "AccumulatedBalance"}

// CSVFilename is the name under which the summary of a year is exported.
func CSVFilename(year int) string {
	return fmt.Sprintf("annual_summary_%d.csv", year)
}

// WriteCSV writes one row per month of the summary. Values have two
// decimals.
func WriteCSV(w io.Writer, s AnnualSummary) error {
	if len(s.Months) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, m := range s.Months {
		err := cw.Write([]string{
			m.Label,
			m.TotalEntries.StringFixed(2),
			m.TotalExpenses.StringFixed(2),
			m.NetBalance.StringFixed(2),
			m.AccumulatedBalance.StringFixed(2),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV. Only the labels and values
// are restored, Month is left empty.
func ReadCSV(r io.Reader) ([]MonthlySummary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}

	if strings.Join(header, ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrInvalidCSV, header)
	}

	rows := []MonthlySummary{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
		}

		values := make([]decimal.Decimal, 4)
		for i := range values {
			values[i], err = decimal.NewFromString(record[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: column %s of %s: %w", ErrInvalidCSV, csvHeader[i+1], record[0], err)
			}
		}

		rows = append(rows, MonthlySummary{
			Label:              record[0],
			TotalEntries:       values[0],
			TotalExpenses:      values[1],
			NetBalance:         values[2],
			AccumulatedBalance: values[3],
		})
	}

	return rows, nil
}
