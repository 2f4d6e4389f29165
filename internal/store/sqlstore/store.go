// Package sqlstore keeps the ledger in SQLite through GORM. Money is stored
// as integer cents.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

var allModels = []any{
	&categoryRow{},
	&bankRow{},
	&accountRow{},
	&transactionRow{},
}

// Store is a SQLite-backed ledger.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// the schema. Use "file::memory:?cache=shared" for an in-memory database.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Init seeds the category table when it is empty.
func (s *Store) Init(ctx context.Context, categories []model.Category) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&categoryRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 || len(categories) == 0 {
		return nil
	}

	rows := make([]categoryRow, len(categories))
	for i, c := range categories {
		rows[i] = fromCategory(c)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	return nil
}

// FetchCategories returns all categories ordered by id.
func (s *Store) FetchCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	out := make([]model.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// FetchAccounts returns all accounts with their bank name, ordered by id.
func (s *Store) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Joins("Bank").Order("account.id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	out := make([]model.Account, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// AddAccount stores a new account, creating its bank if needed. Its current
// balance starts at the initial balance.
func (s *Store) AddAccount(ctx context.Context, a model.Account) (model.Account, error) {
	cents, err := store.ToCents(a.InitialBalance)
	if err != nil {
		return model.Account{}, err
	}

	row := accountRow{
		Name:                a.Name,
		AccountType:         string(a.Type),
		InitialBalanceCents: cents,
		CurrentBalanceCents: cents,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bank := bankRow{Name: a.BankName}
		if err := tx.Where(bankRow{Name: a.BankName}).FirstOrCreate(&bank).Error; err != nil {
			return fmt.Errorf("finding bank %q: %w", a.BankName, err)
		}
		row.BankID = bank.ID
		row.Bank = bank
		return tx.Omit(clause.Associations).Create(&row).Error
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}
	return row.toModel(), nil
}

// PersistTransactions validates and inserts txns in one database
// transaction, returning them with their assigned ids in input order.
func (s *Store) PersistTransactions(ctx context.Context, txns []model.TransactionImport) ([]model.Transaction, error) {
	categories, err := s.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.FetchAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Check(txns, catalog.NewSnapshot(categories, accounts)); err != nil {
		return nil, err
	}

	rows := make([]transactionRow, len(txns))
	for i, t := range txns {
		cents, err := store.ToCents(t.Amount)
		if err != nil {
			return nil, err
		}
		rows[i] = transactionRow{
			Name:        t.Name,
			AmountCents: cents,
			Date:        t.Date.Format(dateFormat),
			AccountID:   t.AccountID,
			CategoryID:  t.CategoryID,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return nil, fmt.Errorf("inserting transactions: %w", err)
	}

	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		out[i] = t.WithID(rows[i].ID)
	}
	return out, nil
}

// Transactions returns the stored transactions of accountID, or of every
// account when accountID is 0, ordered by date then id.
func (s *Store) Transactions(ctx context.Context, accountID int) ([]model.Transaction, error) {
	q := s.db.WithContext(ctx).Order("date, id")
	if accountID != 0 {
		q = q.Where("account_id = ?", accountID)
	}

	var rows []transactionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		t, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", r.ID, err)
		}
		out[i] = t
	}
	return out, nil
}

// AccountBalance returns the stored current balance of an account.
func (s *Store) AccountBalance(ctx context.Context, accountID int) (decimal.Decimal, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Select("current_balance_cents").First(&row, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Decimal{}, fmt.Errorf("account %d: %w", accountID, fs.ErrNotExist)
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("querying account %d: %w", accountID, err)
	}
	return store.FromCents(row.CurrentBalanceCents), nil
}

// PersistAccountBalance updates the stored current balance of an account.
func (s *Store) PersistAccountBalance(ctx context.Context, accountID int, balance decimal.Decimal) error {
	cents, err := store.ToCents(balance)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", accountID).Update("current_balance_cents", cents)
	if res.Error != nil {
		return fmt.Errorf("updating account %d: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %d: %w", accountID, fs.ErrNotExist)
	}
	return nil
}
