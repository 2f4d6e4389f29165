// Package normalize turns raw parsed bank rows into canonical transactions.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/model"
)

// Per-row failures. They reject only the offending row.
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// DateLayouts are the date formats banks export, tried in order. "1/2/2006"
// also accepts zero-padded month and day.
var DateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
}

// Normalizer converts rows for one batch. It is bound to a single resolver,
// and therefore a single catalog snapshot.
type Normalizer struct {
	resolver        *categorize.Resolver
	defaultCategory model.CategoryRef
}

// New creates a Normalizer. defaultCategory is the batch-level category used
// when a row carries no usable reference of its own; pass model.NoCategory()
// to fall straight back to Uncategorized.
func New(resolver *categorize.Resolver, defaultCategory model.CategoryRef) *Normalizer {
	return &Normalizer{resolver: resolver, defaultCategory: defaultCategory}
}

// Normalize parses the row's date and amount, attaches accountID, and
// resolves the category. The row's own reference wins over the batch default.
func (n *Normalizer) Normalize(row model.RawRow, accountID int) (model.TransactionImport, error) {
	date, err := ParseDate(row.Date)
	if err != nil {
		return model.TransactionImport{}, err
	}

	amount, err := ParseAmount(row.Amount)
	if err != nil {
		return model.TransactionImport{}, err
	}

	category := n.resolver.ResolveFirst(row.Category, n.defaultCategory)

	return model.TransactionImport{
		Name:       strings.TrimSpace(row.Name),
		Amount:     amount,
		Date:       date,
		AccountID:  accountID,
		CategoryID: category.ID,
	}, nil
}

// ParseDate parses s as a calendar date in any of DateLayouts. The result
// is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseAmount coerces a bank amount string to a decimal. Thousands
// separators and a currency symbol are dropped; the sign is kept as is.
// Exponent notation and fractions of a cent are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.Replace(clean, "$", "", 1)
	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.ContainsAny(clean, "eE") {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not whole cents", ErrInvalidAmount, s)
	}
	return d, nil
}

// Kind maps a Normalize error to its row error kind.
func Kind(err error) (model.ErrorKind, bool) {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return model.ErrorInvalidDate, true
	case errors.Is(err, ErrInvalidAmount):
		return model.ErrorInvalidAmount, true
	default:
		return "", false
	}
}
