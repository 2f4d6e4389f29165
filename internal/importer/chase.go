package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tally-dev/tally/internal/model"
)

// ChaseParser parses Chase checking CSV exports.
type ChaseParser struct{}

const (
	chaseNumFields = 7
	chaseColDate   = 1
	chaseColDesc   = 2
	chaseColAmount = 3
)

// Bank returns the bank name.
func (p *ChaseParser) Bank() string { return "Chase" }

// Parse reads a Chase CSV. Amounts are already signed inflow-positive.
func (p *ChaseParser) Parse(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]model.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, model.RawRow{
			Date:   rec[chaseColDate],
			Name:   rec[chaseColDesc],
			Amount: rec[chaseColAmount],
		})
	}
	return rows, nil
}
