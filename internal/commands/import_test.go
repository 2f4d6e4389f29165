package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store/filestore"
)

// balanceWriteFails stores transactions but cannot update balances.
type balanceWriteFails struct {
	*filestore.Store
}

func (balanceWriteFails) PersistAccountBalance(context.Context, int, decimal.Decimal) error {
	return errors.New("disk full")
}

func TestRunImport_ReconcileFailureRecordsBatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, runInit(ctx, io.Discard, dir, config.DriverCSV, false))

	fs := filestore.New(filepath.Join(dir, "ledger"))
	_, err := fs.AddAccount(ctx, model.Account{
		Name:           "Checking",
		BankName:       "Chase",
		Type:           model.AccountTypeCheckings,
		InitialBalance: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "jan.csv"), data, 0o644))

	b := &book{root: dir, cfg: config.Default(), ledger: balanceWriteFails{fs}, log: zerolog.Nop()}
	opts := importOptions{bank: "chase", accountID: 1}

	var out bytes.Buffer
	err = runImport(ctx, &out, b, nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, out.String(), "is saved but the balance was not updated")
	assert.Contains(t, out.String(), "reconcile --account 1 --fix")

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, out.String(), entries[0].BatchID)
	assert.Equal(t, 6, entries[0].Imported)

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "jan.csv"))
	require.NoError(t, err, "statement should be moved")

	out.Reset()
	require.NoError(t, runImport(ctx, &out, b, nil, opts))
	assert.Contains(t, out.String(), "No statements to import.")

	txns, err := fs.Transactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txns, 6)
}
