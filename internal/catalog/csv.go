package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// CategoriesHeader is the CSV header for categories.csv.
const CategoriesHeader = "category_id,name,color,secondary_color,icon"

// AccountsHeader is the CSV header for accounts.csv.
const AccountsHeader = "account_id,name,bank_id,bank_name,account_type,initial_balance,current_balance"

const (
	numCategoryFields = 5
	colCatID          = 0
	colCatName        = 1
	colCatColor       = 2
	colCatSecondary   = 3
	colCatIcon        = 4

	numAccountFields = 7
	colAcctID        = 0
	colAcctName      = 1
	colAcctBankID    = 2
	colAcctBankName  = 3
	colAcctType      = 4
	colAcctInitial   = 5
	colAcctCurrent   = 6
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	records, err := readAll(r, numCategoryFields)
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	var categories []model.Category
	for i, rec := range records {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// WriteCategories writes categories.csv including the header.
func WriteCategories(w io.Writer, categories []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CategoriesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range categories {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numCategoryFields)
	row[colCatID] = strconv.Itoa(c.ID)
	row[colCatName] = c.Name
	row[colCatColor] = c.Color
	row[colCatSecondary] = c.SecondaryColor
	row[colCatIcon] = c.Icon
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numCategoryFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numCategoryFields, len(record))
	}

	id, err := strconv.Atoi(record[colCatID])
	if err != nil {
		return model.Category{}, fmt.Errorf("parsing category_id %q: %w", record[colCatID], err)
	}

	return model.Category{
		ID:             id,
		Name:           record[colCatName],
		Color:          record[colCatColor],
		SecondaryColor: record[colCatSecondary],
		Icon:           record[colCatIcon],
	}, nil
}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	records, err := readAll(r, numAccountFields)
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	var accounts []model.Account
	for i, rec := range records {
		a, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv including the header.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(AccountsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, numAccountFields)
	row[colAcctID] = strconv.Itoa(a.ID)
	row[colAcctName] = a.Name
	row[colAcctBankID] = strconv.Itoa(a.BankID)
	row[colAcctBankName] = a.BankName
	row[colAcctType] = string(a.Type)
	row[colAcctInitial] = a.InitialBalance.StringFixed(2)
	row[colAcctCurrent] = a.CurrentBalance.StringFixed(2)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numAccountFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numAccountFields, len(record))
	}

	id, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	bankID, err := strconv.Atoi(record[colAcctBankID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing bank_id %q: %w", record[colAcctBankID], err)
	}

	acctType, err := model.ParseAccountType(record[colAcctType])
	if err != nil {
		return model.Account{}, err
	}

	initial, err := decimal.NewFromString(record[colAcctInitial])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing initial_balance %q: %w", record[colAcctInitial], err)
	}

	current, err := decimal.NewFromString(record[colAcctCurrent])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing current_balance %q: %w", record[colAcctCurrent], err)
	}

	return model.Account{
		ID:             id,
		Name:           record[colAcctName],
		BankID:         bankID,
		BankName:       record[colAcctBankName],
		Type:           acctType,
		InitialBalance: initial,
		CurrentBalance: current,
	}, nil
}

// readAll returns the data records of a headed CSV, without the header.
func readAll(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}
