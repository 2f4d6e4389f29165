package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tally-dev/tally/internal/model"
)

// WellsFargoParser parses Wells Fargo CSV downloads. The file has no header;
// columns are date, amount, two unused columns, description.
type WellsFargoParser struct{}

const (
	wfColDate   = 0
	wfColAmount = 1
	wfColDesc   = 4
)

// Bank returns the bank name.
func (p *WellsFargoParser) Bank() string { return "Wells Fargo" }

// Parse reads a Wells Fargo CSV. Short records are kept with their missing
// columns empty so they fail normalization visibly.
func (p *WellsFargoParser) Parse(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading wells fargo CSV: %w", err)
	}

	var rows []model.RawRow
	for _, rec := range records {
		rows = append(rows, model.RawRow{
			Date:   field(rec, wfColDate),
			Amount: field(rec, wfColAmount),
			Name:   field(rec, wfColDesc),
		})
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
