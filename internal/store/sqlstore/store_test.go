package sqlstore

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(context.Background(), catalog.DefaultCategories()))
	return s
}

func addChecking(t *testing.T, s *Store, bank string) model.Account {
	t.Helper()
	a, err := s.AddAccount(context.Background(), model.Account{
		Name:           "Primary Checking",
		BankName:       bank,
		Type:           model.AccountTypeCheckings,
		InitialBalance: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	return a
}

func imp(account int, day int, amount string) model.TransactionImport {
	return model.TransactionImport{
		Name:       "Market",
		Amount:     decimal.RequireFromString(amount),
		Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		AccountID:  account,
		CategoryID: 4,
	}
}

func TestInit_SeedsOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	cats, err := s.FetchCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultCategories(), cats)

	require.NoError(t, s.Init(ctx, []model.Category{{ID: 99, Name: "Other"}}))
	cats, err = s.FetchCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(catalog.DefaultCategories()))
}

func TestAddAccount_SharesBank(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := addChecking(t, s, "Chase")
	b := addChecking(t, s, "Chase")
	c := addChecking(t, s, "Amex")

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, a.BankID, b.BankID)
	assert.NotEqual(t, a.BankID, c.BankID)
	assert.Equal(t, "100", a.CurrentBalance.String())

	accts, err := s.FetchAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 3)
	assert.Equal(t, "Chase", accts[0].BankName)
	assert.Equal(t, "Amex", accts[2].BankName)
	assert.Equal(t, model.AccountTypeCheckings, accts[0].Type)
	assert.True(t, accts[0].InitialBalance.Equal(decimal.RequireFromString("100.00")))
}

func TestPersistTransactions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := addChecking(t, s, "Chase")

	got, err := s.PersistTransactions(ctx, []model.TransactionImport{
		imp(a.ID, 9, "-12.50"),
		imp(a.ID, 5, "1000.01"),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)

	stored, err := s.Transactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// ordered by date
	assert.Equal(t, 2, stored[0].ID)
	assert.Equal(t, "1000.01", stored[0].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), stored[0].Date)
	assert.Equal(t, "-12.50", stored[1].Amount.StringFixed(2))
	assert.Equal(t, 4, stored[1].CategoryID)

	other, err := s.Transactions(ctx, a.ID+1)
	require.NoError(t, err)
	assert.Empty(t, other)

	all, err := s.Transactions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPersistTransactions_RejectsInvalid(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := addChecking(t, s, "Chase")

	bad := imp(a.ID, 5, "1.005")
	_, err := s.PersistTransactions(ctx, []model.TransactionImport{imp(a.ID, 5, "1.00"), bad, imp(42, 5, "1.00")})
	require.ErrorIs(t, err, store.ErrInvalid)
	assert.Contains(t, err.Error(), "cents")
	assert.Contains(t, err.Error(), "unknown account 42")

	stored, err := s.Transactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBalance(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := addChecking(t, s, "Chase")

	bal, err := s.AccountBalance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", bal.StringFixed(2))

	require.NoError(t, s.PersistAccountBalance(ctx, a.ID, decimal.RequireFromString("-3.07")))
	bal, err = s.AccountBalance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "-3.07", bal.StringFixed(2))

	accts, err := s.FetchAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-3.07", accts[0].CurrentBalance.StringFixed(2))
	assert.Equal(t, "100.00", accts[0].InitialBalance.StringFixed(2))
}

func TestBalance_UnknownAccount(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AccountBalance(ctx, 7)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorIs(t, s.PersistAccountBalance(ctx, 7, decimal.Zero), fs.ErrNotExist)
}

func TestBalance_RejectsFractionalCents(t *testing.T) {
	s := newStore(t)
	a := addChecking(t, s, "Chase")

	err := s.PersistAccountBalance(context.Background(), a.ID, decimal.RequireFromString("0.001"))
	require.Error(t, err)
}
