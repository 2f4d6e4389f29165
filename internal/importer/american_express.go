package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// AmericanExpressParser parses American Express CSV activity exports.
// Columns are date, description, two unused columns, amount. Amex reports
// charges as positive, so amounts are negated.
type AmericanExpressParser struct{}

const (
	amexColDate   = 0
	amexColDesc   = 1
	amexColAmount = 4
)

// Bank returns the bank name.
func (p *AmericanExpressParser) Bank() string { return "American Express" }

// Parse reads an Amex CSV, skipping the header row.
func (p *AmericanExpressParser) Parse(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading american express CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]model.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, model.RawRow{
			Date:   field(rec, amexColDate),
			Name:   field(rec, amexColDesc),
			Amount: negate(field(rec, amexColAmount)),
		})
	}
	return rows, nil
}

// negate flips the sign of a textual amount. Blank input stays blank.
func negate(amount string) string {
	s := strings.TrimSpace(amount)
	switch {
	case s == "":
		return s
	case strings.HasPrefix(s, "-"):
		return s[1:]
	case strings.HasPrefix(s, "+"):
		return "-" + s[1:]
	default:
		return "-" + s
	}
}
