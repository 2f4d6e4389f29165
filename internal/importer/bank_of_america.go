package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// BankOfAmericaParser parses Bank of America plain-text statement downloads.
// Rows start after the "Date" header line and the beginning-balance line that
// follows it; columns are separated by runs of two or more spaces.
type BankOfAmericaParser struct{}

const boaHeaderStart = "Date"

var boaColumnSep = regexp.MustCompile(`\s{2,}`)

// Bank returns the bank name.
func (p *BankOfAmericaParser) Bank() string { return "Bank of America" }

// Parse reads a statement. Lines with fewer than three columns are kept as
// rows with the line as the name so they fail normalization visibly.
func (p *BankOfAmericaParser) Parse(r io.Reader) ([]model.RawRow, error) {
	sc := bufio.NewScanner(r)

	inBody := false
	skip := 0
	var rows []model.RawRow
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !inBody {
			if strings.HasPrefix(line, boaHeaderStart) {
				inBody = true
				skip = 1 // beginning balance line
			}
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := boaColumnSep.Split(strings.TrimSpace(line), -1)
		if len(parts) < 3 {
			rows = append(rows, model.RawRow{Name: strings.TrimSpace(line)})
			continue
		}
		rows = append(rows, model.RawRow{
			Date:   parts[0],
			Name:   parts[1],
			Amount: parts[2],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading bank of america statement: %w", err)
	}
	return rows, nil
}
