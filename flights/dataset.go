package flights

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// timestampLayout matches the departure columns of the source datasets.
const timestampLayout = "2006-01-02 15:04:05"

// datasetRow mirrors the columns of the raw CSV export.
type datasetRow struct {
	ScheduledAt string `csv:"Fecha-I"`
	OperatedAt  string `csv:"Fecha-O"`
	Carrier     string `csv:"OPERA"`
	FlightType  string `csv:"TIPOVUELO"`
	Month       int    `csv:"MES"`
}

// RowError is a recoverable data-quality problem on a single dataset row.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// LoadDataset reads a raw CSV export into records. Rows that fail parsing
// are reported as RowErrors and excluded; they never abort the batch.
func LoadDataset(path string) ([]Record, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var rows []*datasetRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	records := make([]Record, 0, len(rows))
	var bad []RowError
	for i, row := range rows {
		rec := Record{
			Carrier:    CanonicalCarrier(row.Carrier),
			FlightType: strings.TrimSpace(row.FlightType),
			Month:      row.Month,
		}
		if rec.Carrier == "" {
			bad = append(bad, RowError{Row: i, Reason: "missing carrier"})
			continue
		}
		if rec.Month < 1 || rec.Month > 12 {
			bad = append(bad, RowError{Row: i, Reason: fmt.Sprintf("month %d out of range", row.Month)})
			continue
		}
		if row.ScheduledAt != "" {
			t, err := time.Parse(timestampLayout, row.ScheduledAt)
			if err != nil {
				bad = append(bad, RowError{Row: i, Reason: fmt.Sprintf("bad scheduled departure %q", row.ScheduledAt)})
				continue
			}
			rec.ScheduledDeparture = t
		}
		if row.OperatedAt != "" {
			t, err := time.Parse(timestampLayout, row.OperatedAt)
			if err != nil {
				bad = append(bad, RowError{Row: i, Reason: fmt.Sprintf("bad actual departure %q", row.OperatedAt)})
				continue
			}
			rec.ActualDeparture = t
		}
		records = append(records, rec)
	}
	return records, bad, nil
}

// asciiFold strips combining marks so accented dataset spellings collapse
// onto the canonical carrier vocabulary.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalCarrier trims and de-accents a raw carrier name.
func CanonicalCarrier(name string) string {
	trimmed := strings.TrimSpace(name)
	folded, _, err := transform.String(asciiFold, trimmed)
	if err != nil {
		return trimmed
	}
	return folded
}
