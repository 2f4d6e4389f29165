package pipeline

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// RowParser turns a statement file into raw rows for a bank.
type RowParser interface {
	ParseFile(path, bank string) ([]model.RawRow, error)
}

// TransactionStore durably stores new transactions and assigns their ids.
// Returned transactions are in input order.
type TransactionStore interface {
	PersistTransactions(ctx context.Context, txns []model.TransactionImport) ([]model.Transaction, error)
}

// BalanceApplier moves an account's stored balance by committed transactions.
type BalanceApplier interface {
	Apply(ctx context.Context, accountID int, applied []model.Transaction) (decimal.Decimal, error)
}

// Service runs a statement file through parse, normalize, persist and
// reconcile.
type Service struct {
	parser     RowParser
	pipeline   *Pipeline
	store      TransactionStore
	reconciler BalanceApplier
}

// NewService wires a Service.
func NewService(parser RowParser, pipeline *Pipeline, store TransactionStore, reconciler BalanceApplier) *Service {
	return &Service{parser: parser, pipeline: pipeline, store: store, reconciler: reconciler}
}

// Request identifies one statement import.
type Request struct {
	FilePath        string
	BankName        string
	AccountID       int
	DefaultCategory model.CategoryRef
	// DryRun normalizes without persisting or touching the balance.
	DryRun bool
}

// Result reports a finished import. Committed is empty for a dry run.
type Result struct {
	*Batch
	File      string
	Bank      string
	Committed []model.Transaction
	Balance   decimal.Decimal
	DryRun    bool
}

// Import parses req.FilePath with the bank's parser, normalizes the rows,
// persists the transactions and then applies them to the account balance.
// If persistence fails the balance is not touched. If reconciliation fails
// after a successful persist, the partial Result is returned with the error.
func (s *Service) Import(ctx context.Context, req Request) (*Result, error) {
	rows, err := s.parser.ParseFile(req.FilePath, req.BankName)
	if err != nil {
		return nil, err
	}

	batch, err := s.pipeline.ImportBatch(ctx, rows, req.AccountID, Options{DefaultCategory: req.DefaultCategory})
	if err != nil {
		return nil, err
	}

	res := &Result{Batch: batch, File: req.FilePath, Bank: req.BankName, DryRun: req.DryRun}
	if req.DryRun {
		return res, nil
	}

	if len(batch.Transactions) > 0 {
		res.Committed, err = s.store.PersistTransactions(ctx, batch.Transactions)
		if err != nil {
			return nil, fmt.Errorf("persisting batch %s: %w", batch.ID, err)
		}
	}

	res.Balance, err = s.reconciler.Apply(ctx, req.AccountID, res.Committed)
	if err != nil {
		return res, fmt.Errorf("reconciling batch %s: %w", batch.ID, err)
	}
	return res, nil
}
