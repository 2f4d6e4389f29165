// Package filestore keeps the ledger as CSV files in a directory:
// categories.csv, accounts.csv and transactions.csv.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

const (
	categoriesFile   = "categories.csv"
	accountsFile     = "accounts.csv"
	transactionsFile = "transactions.csv"
)

// Store is a CSV-backed ledger. All writes in one process are serialized.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at dir. Call Init once to create the files.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Init creates the ledger directory and any missing files, seeding
// categories.csv with categories. Existing files are left alone.
func (s *Store) Init(_ context.Context, categories []model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	if !s.exists(categoriesFile) {
		if err := s.writeCategories(categories); err != nil {
			return err
		}
	}
	if !s.exists(accountsFile) {
		if err := s.writeAccounts(nil); err != nil {
			return err
		}
	}
	if !s.exists(transactionsFile) {
		f, err := os.Create(s.path(transactionsFile))
		if err != nil {
			return fmt.Errorf("creating transactions file: %w", err)
		}
		defer f.Close()
		if err := WriteHeader(f); err != nil {
			return err
		}
	}
	return nil
}

// FetchCategories returns all categories.
func (s *Store) FetchCategories(_ context.Context) ([]model.Category, error) {
	return s.readCategories()
}

// FetchAccounts returns all accounts.
func (s *Store) FetchAccounts(_ context.Context) ([]model.Account, error) {
	return s.readAccounts()
}

// AddAccount stores a new account with the next free id. Its current
// balance starts at the initial balance.
func (s *Store) AddAccount(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAccounts()
	if err != nil {
		return model.Account{}, err
	}

	maxID, maxBank := 0, 0
	for _, existing := range accounts {
		maxID = max(maxID, existing.ID)
		maxBank = max(maxBank, existing.BankID)
		if existing.BankName == a.BankName {
			a.BankID = existing.BankID
		}
	}
	if a.BankID == 0 {
		a.BankID = maxBank + 1
	}
	a.ID = maxID + 1
	a.CurrentBalance = a.InitialBalance

	if err := s.writeAccounts(append(accounts, a)); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// PersistTransactions validates txns against the stored catalog, assigns
// ids and appends them to transactions.csv.
func (s *Store) PersistTransactions(_ context.Context, txns []model.TransactionImport) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	accounts, err := s.readAccounts()
	if err != nil {
		return nil, err
	}
	if err := store.Check(txns, catalog.NewSnapshot(categories, accounts)); err != nil {
		return nil, err
	}

	existing, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	nextID := 1
	for _, t := range existing {
		nextID = max(nextID, t.ID+1)
	}

	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		out[i] = t.WithID(nextID + i)
	}

	path := s.path(transactionsFile)
	isNew := !s.exists(transactionsFile)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	if isNew {
		if err := WriteHeader(f); err != nil {
			return nil, err
		}
	}
	if err := AppendTransactions(f, out); err != nil {
		return nil, fmt.Errorf("appending transactions: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("syncing transactions: %w", err)
	}
	return out, nil
}

// Transactions returns the stored transactions of accountID, or of every
// account when accountID is 0, in id order.
func (s *Store) Transactions(_ context.Context, accountID int) ([]model.Transaction, error) {
	all, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	if accountID == 0 {
		return all, nil
	}
	var out []model.Transaction
	for _, t := range all {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

// AccountBalance returns the stored current balance of an account.
func (s *Store) AccountBalance(_ context.Context, accountID int) (decimal.Decimal, error) {
	accounts, err := s.readAccounts()
	if err != nil {
		return decimal.Decimal{}, err
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return a.CurrentBalance, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("account %d: %w", accountID, fs.ErrNotExist)
}

// PersistAccountBalance rewrites the stored current balance of an account.
func (s *Store) PersistAccountBalance(_ context.Context, accountID int, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAccounts()
	if err != nil {
		return err
	}
	found := false
	for i := range accounts {
		if accounts[i].ID == accountID {
			accounts[i].CurrentBalance = balance
			found = true
		}
	}
	if !found {
		return fmt.Errorf("account %d: %w", accountID, fs.ErrNotExist)
	}
	return s.writeAccounts(accounts)
}

// Close is a no-op; it lets Store satisfy the same interface as sqlstore.
func (s *Store) Close() error { return nil }

func (s *Store) path(name string) string { return filepath.Join(s.root, name) }

func (s *Store) exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) readCategories() ([]model.Category, error) {
	f, err := os.Open(s.path(categoriesFile))
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()
	return catalog.ReadCategories(f)
}

func (s *Store) readAccounts() ([]model.Account, error) {
	f, err := os.Open(s.path(accountsFile))
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()
	return catalog.ReadAccounts(f)
}

func (s *Store) readTransactions() ([]model.Transaction, error) {
	f, err := os.Open(s.path(transactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()
	return ReadTransactions(f)
}

func (s *Store) writeCategories(categories []model.Category) error {
	return s.replace(categoriesFile, func(f *os.File) error {
		return catalog.WriteCategories(f, categories)
	})
}

func (s *Store) writeAccounts(accounts []model.Account) error {
	return s.replace(accountsFile, func(f *os.File) error {
		return catalog.WriteAccounts(f, accounts)
	})
}

// replace writes name through a temp file and renames it into place so a
// reader never sees a half-written file.
func (s *Store) replace(name string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(s.root, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
