package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorKind names the reason a single imported row was rejected.
type ErrorKind string

const (
	ErrorInvalidDate   ErrorKind = "InvalidDate"
	ErrorInvalidAmount ErrorKind = "InvalidAmount"
)

// RawRow is one loosely-typed row produced by a bank parser, before
// normalization. Date and Amount are kept as the bank wrote them.
type RawRow struct {
	Name     string
	Amount   string // signed; positive = inflow, negative = outflow
	Date     string
	Category CategoryRef
}

// TransactionImport is a normalized transaction that has not been persisted
// yet, so it has no ID.
type TransactionImport struct {
	Name       string
	Amount     decimal.Decimal // positive = inflow, negative = outflow
	Date       time.Time       // calendar date, midnight UTC
	AccountID  int
	CategoryID int
}

// Transaction is a persisted transaction.
type Transaction struct {
	ID         int
	Name       string
	Amount     decimal.Decimal
	Date       time.Time
	AccountID  int
	CategoryID int
}

// WithID returns the persisted form of t.
func (t TransactionImport) WithID(id int) Transaction {
	return Transaction{
		ID:         id,
		Name:       t.Name,
		Amount:     t.Amount,
		Date:       t.Date,
		AccountID:  t.AccountID,
		CategoryID: t.CategoryID,
	}
}

// SumAmounts returns the total of the transactions' amounts.
func SumAmounts(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
