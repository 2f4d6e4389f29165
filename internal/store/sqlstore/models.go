package sqlstore

import (
	"time"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

const dateFormat = "2006-01-02"

// categoryRow is the category table.
type categoryRow struct {
	ID             int    `gorm:"primaryKey"`
	Name           string `gorm:"not null;uniqueIndex"`
	Color          string
	SecondaryColor string
	Icon           string
}

func (categoryRow) TableName() string { return "category" }

// bankRow is the bank table.
type bankRow struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

func (bankRow) TableName() string { return "bank" }

// accountRow is the account table. Balances are integer cents.
type accountRow struct {
	ID                  int    `gorm:"primaryKey"`
	Name                string `gorm:"not null"`
	BankID              int    `gorm:"not null;index"`
	Bank                bankRow
	AccountType         string `gorm:"not null"`
	InitialBalanceCents int64  `gorm:"not null;default:0"`
	CurrentBalanceCents int64  `gorm:"not null;default:0"`
}

func (accountRow) TableName() string { return "account" }

// transactionRow is the transaction table. Date is stored as YYYY-MM-DD.
type transactionRow struct {
	ID          int    `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	AmountCents int64  `gorm:"not null"`
	Date        string `gorm:"not null;index"`
	AccountID   int    `gorm:"not null;index"`
	Account     accountRow
	CategoryID  int `gorm:"not null;index"`
	Category    categoryRow
}

func (transactionRow) TableName() string { return "transaction" }

func (r categoryRow) toModel() model.Category {
	return model.Category{ID: r.ID, Name: r.Name, Color: r.Color, SecondaryColor: r.SecondaryColor, Icon: r.Icon}
}

func fromCategory(c model.Category) categoryRow {
	return categoryRow{ID: c.ID, Name: c.Name, Color: c.Color, SecondaryColor: c.SecondaryColor, Icon: c.Icon}
}

func (r accountRow) toModel() model.Account {
	return model.Account{
		ID:             r.ID,
		Name:           r.Name,
		BankID:         r.BankID,
		BankName:       r.Bank.Name,
		Type:           model.AccountType(r.AccountType),
		InitialBalance: store.FromCents(r.InitialBalanceCents),
		CurrentBalance: store.FromCents(r.CurrentBalanceCents),
	}
}

func (r transactionRow) toModel() (model.Transaction, error) {
	date, err := time.Parse(dateFormat, r.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:         r.ID,
		Name:       r.Name,
		Amount:     store.FromCents(r.AmountCents),
		Date:       date,
		AccountID:  r.AccountID,
		CategoryID: r.CategoryID,
	}, nil
}
