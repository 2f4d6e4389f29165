package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies a bank account.
type AccountType string

const (
	AccountTypeSavings   AccountType = "Savings"
	AccountTypeCheckings AccountType = "Checkings"
)

// ParseAccountType accepts "savings"/"checkings" in any case; "checking" is
// accepted as an alias.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "savings":
		return AccountTypeSavings, nil
	case "checkings", "checking":
		return AccountTypeCheckings, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Account is a bank account in the catalog. CurrentBalance is derived state:
// InitialBalance plus the sum of every transaction booked against the account.
type Account struct {
	ID             int
	Name           string
	BankID         int
	BankName       string
	Type           AccountType
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}
