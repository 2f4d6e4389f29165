// Package store holds persistence rules shared by the ledger backends.
package store

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ErrInvalid is wrapped by the error returned from Check.
var ErrInvalid = errors.New("invalid transactions")

// ValidationError describes a single rule a new transaction breaks.
type ValidationError struct {
	Index       int
	Rule        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%d]: %s", e.Rule, e.Index, e.Description)
}

// CatalogChecker tests whether referenced accounts and categories exist.
type CatalogChecker interface {
	HasAccount(id int) bool
	HasCategory(id int) bool
}

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ValidateTransactions checks new transactions before they are stored:
// references must exist, amounts are whole cents, dates carry no time of day.
func ValidateTransactions(txns []model.TransactionImport, check CatalogChecker) []ValidationError {
	var errs []ValidationError
	for i, t := range txns {
		if !check.HasAccount(t.AccountID) {
			errs = append(errs, ValidationError{
				Index:       i,
				Rule:        "account",
				Description: fmt.Sprintf("unknown account %d", t.AccountID),
			})
		}

		if !check.HasCategory(t.CategoryID) {
			errs = append(errs, ValidationError{
				Index:       i,
				Rule:        "category",
				Description: fmt.Sprintf("unknown category %d", t.CategoryID),
			})
		}

		if !IsWholeCents(t.Amount) {
			errs = append(errs, ValidationError{
				Index:       i,
				Rule:        "cents",
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", t.Amount),
			})
		}

		h, m, s := t.Date.Clock()
		if h != 0 || m != 0 || s != 0 || t.Date.Nanosecond() != 0 {
			errs = append(errs, ValidationError{
				Index:       i,
				Rule:        "date",
				Description: fmt.Sprintf("date %s has a time of day", t.Date.Format("2006-01-02 15:04:05")),
			})
		}
	}
	return errs
}

// Check runs ValidateTransactions and folds any violations into one error.
func Check(txns []model.TransactionImport, check CatalogChecker) error {
	verrs := ValidateTransactions(txns, check)
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// IsWholeCents reports whether d has at most two decimal places.
func IsWholeCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}

// ToCents converts a whole-cents amount to an integer number of cents.
func ToCents(d decimal.Decimal) (int64, error) {
	if !IsWholeCents(d) {
		return 0, fmt.Errorf("amount %s has more than 2 decimal places", d)
	}
	cents := d.Mul(hundred)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("amount %s is out of range", d)
	}
	return cents.IntPart(), nil
}

// FromCents converts cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
