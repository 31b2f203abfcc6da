package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want csv or json)", s)
}

// Write encodes the log in the given format.
func (l *ResultLog) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return l.WriteJSON(w)
	case FormatCSV:
		return l.WriteCSV(w)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteCSV writes a header line followed by one line per row.
func (l *ResultLog) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range l.Rows() {
		rec := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			formatFloat(r.CurrentIncome),
			formatFloat(r.ExpectedRiseMean),
			formatFloat(r.ExpectedRiseSD),
			formatFloat(r.CurrentSavings),
			formatFloat(r.SavingRate),
			formatFloat(r.InterestRate),
			strconv.Itoa(r.Round),
			strconv.FormatBool(r.Final),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d/%d: %w", r.Round, r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as a JSON array of objects.
func (l *ResultLog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Rows())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
