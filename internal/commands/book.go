package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store/filestore"
	"github.com/tally-dev/tally/internal/store/sqlstore"
)

// Ledger is the storage every command works against. Both the CSV and the
// SQLite stores implement it.
type Ledger interface {
	catalog.Source
	balance.Store
	Init(ctx context.Context, categories []model.Category) error
	AddAccount(ctx context.Context, a model.Account) (model.Account, error)
	PersistTransactions(ctx context.Context, txns []model.TransactionImport) ([]model.Transaction, error)
	Transactions(ctx context.Context, accountID int) ([]model.Transaction, error)
	Close() error
}

var (
	_ Ledger = (*filestore.Store)(nil)
	_ Ledger = (*sqlstore.Store)(nil)
)

// book is an opened book directory.
type book struct {
	root   string
	cfg    *config.Config
	ledger Ledger
	log    zerolog.Logger
}

// openBook loads the config of the book named by --book, applies .env and
// environment overrides, and opens its ledger.
func openBook(cmd *cobra.Command) (*book, error) {
	dir, err := cmd.Flags().GetString("book")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := config.LoadDotEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a tally book (run tally init)", root)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	ledger, err := openLedger(root, cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &book{
		root:   root,
		cfg:    cfg,
		ledger: ledger,
		log:    logger.NewWithWriter(cmd.ErrOrStderr(), logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}),
	}, nil
}

// context returns ctx carrying the book's logger.
func (b *book) context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, b.log)
}

func (b *book) Close() error { return b.ledger.Close() }

// openLedger opens the store selected by sc. Relative paths are resolved
// against the book root.
func openLedger(root string, sc config.StorageConfig) (Ledger, error) {
	path := sc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	switch sc.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
		return sqlstore.Open(path)
	case config.DriverCSV:
		return filestore.New(path), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}
