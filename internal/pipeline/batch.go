// Package pipeline turns parsed statement rows into categorized, ordered
// transactions and commits them with a balance update.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

// ErrAccountNotFound means the target account is not in the catalog.
var ErrAccountNotFound = errors.New("account not found")

// SnapshotProvider hands out the current catalog snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// RowError records why one row was skipped. Index is the row's zero-based
// position in the parsed file.
type RowError struct {
	Index int
	Kind  model.ErrorKind
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Index, e.Kind, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Batch is the normalized result of one statement file. Transactions are in
// file order with skipped rows left out.
type Batch struct {
	ID           string
	AccountID    int
	Rows         int
	Transactions []model.TransactionImport
	RowErrors    []RowError
	Net          decimal.Decimal
}

// Imported returns the number of rows that normalized successfully.
func (b *Batch) Imported() int { return len(b.Transactions) }

// Options tunes one batch.
type Options struct {
	// DefaultCategory applies to rows without a usable category reference.
	DefaultCategory model.CategoryRef
}

// Pipeline normalizes whole batches against one catalog snapshot each.
type Pipeline struct {
	catalog SnapshotProvider
}

// New creates a Pipeline reading catalog snapshots from provider.
func New(provider SnapshotProvider) *Pipeline {
	return &Pipeline{catalog: provider}
}

// ImportBatch normalizes rows for accountID. The catalog snapshot is taken
// once and shared by every row. A bad row is recorded in RowErrors and the
// rest of the batch continues; catalog, account and default-category
// problems abort the batch.
func (p *Pipeline) ImportBatch(ctx context.Context, rows []model.RawRow, accountID int, opts Options) (*Batch, error) {
	snap, err := p.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if _, ok := snap.Account(accountID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, accountID)
	}

	resolver, err := categorize.NewResolver(snap)
	if err != nil {
		return nil, err
	}
	norm := normalize.New(resolver, opts.DefaultCategory)

	log := logger.FromContext(ctx)
	batch := &Batch{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		Rows:         len(rows),
		Transactions: make([]model.TransactionImport, 0, len(rows)),
		Net:          decimal.Zero,
	}

	for i, row := range rows {
		txn, err := norm.Normalize(row, accountID)
		if err != nil {
			kind, ok := normalize.Kind(err)
			if !ok {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			batch.RowErrors = append(batch.RowErrors, RowError{Index: i, Kind: kind, Err: err})
			log.Debug().Str("batch_id", batch.ID).Int("row", i).Str("kind", string(kind)).Err(err).Msg("row skipped")
			continue
		}
		batch.Transactions = append(batch.Transactions, txn)
		batch.Net = batch.Net.Add(txn.Amount)
	}

	log.Info().
		Str("batch_id", batch.ID).
		Int("account_id", accountID).
		Int("rows", batch.Rows).
		Int("imported", batch.Imported()).
		Int("failed", len(batch.RowErrors)).
		Str("net", batch.Net.StringFixed(2)).
		Msg("batch normalized")

	return batch, nil
}
