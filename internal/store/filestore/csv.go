package filestore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// TransactionsHeader is the CSV header for transactions.csv.
const TransactionsHeader = "transaction_id,date,account_id,category_id,name,amount"

const (
	numFields  = 6
	dateFormat = "2006-01-02"
	colID      = 0
	colDate    = 1
	colAcctID  = 2
	colCatID   = 3
	colName    = 4
	colAmount  = 5
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// AppendTransactions appends rows to an existing transactions.csv writer (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// WriteHeader writes the transactions.csv header.
func WriteHeader(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(TransactionsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(t.ID)
	row[colDate] = t.Date.Format(dateFormat)
	row[colAcctID] = strconv.Itoa(t.AccountID)
	row[colCatID] = strconv.Itoa(t.CategoryID)
	row[colName] = t.Name
	row[colAmount] = t.Amount.StringFixed(2)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction_id %q: %w", record[colID], err)
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	categoryID, err := strconv.Atoi(record[colCatID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing category_id %q: %w", record[colCatID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		ID:         id,
		Name:       record[colName],
		Amount:     amount,
		Date:       date,
		AccountID:  accountID,
		CategoryID: categoryID,
	}, nil
}
