// Package importlog keeps an append-only CSV record of committed import
// batches inside the book.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/pipeline"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	BatchID   string
	Bank      string
	File      string
	AccountID int
	Rows      int
	Imported  int
	Failed    int
	Net       decimal.Decimal
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,batch_id,bank,file,account_id,rows,imported,failed,net"

// File is the log location relative to the book root.
const File = "logs/import-log.csv"

const (
	numFields    = 9
	logDir       = "logs"
	colTimestamp = 0
	colBatchID   = 1
	colBank      = 2
	colFile      = 3
	colAccountID = 4
	colRows      = 5
	colImported  = 6
	colFailed    = 7
	colNet       = 8
)

// FromResult builds the log entry for a finished import.
func FromResult(r *pipeline.Result, at time.Time) Entry {
	return Entry{
		Timestamp: at.UTC(),
		BatchID:   r.ID,
		Bank:      r.Bank,
		File:      filepath.Base(r.File),
		AccountID: r.AccountID,
		Rows:      r.Rows,
		Imported:  r.Imported(),
		Failed:    len(r.RowErrors),
		Net:       r.Net,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colBatchID] = e.BatchID
	row[colBank] = e.Bank
	row[colFile] = e.File
	row[colAccountID] = strconv.Itoa(e.AccountID)
	row[colRows] = strconv.Itoa(e.Rows)
	row[colImported] = strconv.Itoa(e.Imported)
	row[colFailed] = strconv.Itoa(e.Failed)
	row[colNet] = e.Net.StringFixed(2)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var ints [4]int
	for i, col := range []int{colAccountID, colRows, colImported, colFailed} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing column %d %q: %w", col, record[col], err)
		}
		ints[i] = n
	}

	net, err := decimal.NewFromString(record[colNet])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing net %q: %w", record[colNet], err)
	}

	return Entry{
		Timestamp: ts,
		BatchID:   record[colBatchID],
		Bank:      record[colBank],
		File:      record[colFile],
		AccountID: ints[0],
		Rows:      ints[1],
		Imported:  ints[2],
		Failed:    ints[3],
		Net:       net,
	}, nil
}

// Append writes entries to <bookRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(bookRoot string, entries []Entry) error {
	dir := filepath.Join(bookRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(bookRoot, File)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <bookRoot>/logs/import-log.csv.
// Returns an empty slice if the file does not exist.
func Read(bookRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(bookRoot, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
