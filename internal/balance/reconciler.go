// Package balance keeps account balances consistent with their transactions.
package balance

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

// Store reads and writes an account's stored current balance.
type Store interface {
	AccountBalance(ctx context.Context, accountID int) (decimal.Decimal, error)
	PersistAccountBalance(ctx context.Context, accountID int, balance decimal.Decimal) error
}

// Reconcile returns the account's current balance moved by the applied
// transactions. It does not deduplicate.
func Reconcile(account model.Account, applied []model.Transaction) decimal.Decimal {
	return account.CurrentBalance.Add(model.SumAmounts(applied))
}

// Recompute derives the current balance from the account's full history.
func Recompute(account model.Account, all []model.Transaction) decimal.Decimal {
	return account.InitialBalance.Add(model.SumAmounts(all))
}

// Drift compares a stored balance with the one derived from history.
type Drift struct {
	AccountID int
	Stored    decimal.Decimal
	Computed  decimal.Decimal
}

// Diff is Computed minus Stored.
func (d Drift) Diff() decimal.Decimal { return d.Computed.Sub(d.Stored) }

// Balanced reports whether the stored balance matches history.
func (d Drift) Balanced() bool { return d.Stored.Equal(d.Computed) }

// Audit checks an account's stored balance against its full history.
func Audit(account model.Account, all []model.Transaction) Drift {
	return Drift{
		AccountID: account.ID,
		Stored:    account.CurrentBalance,
		Computed:  Recompute(account, all),
	}
}

// Reconciler applies committed batches to stored balances. The
// read-modify-write for each account is serialized.
type Reconciler struct {
	store Store
	locks sync.Map // account id -> *sync.Mutex
}

// NewReconciler creates a Reconciler over store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Apply adds the committed transactions to the account's stored balance and
// returns the new balance. Call it once per batch, after the batch's
// transactions are durably persisted. An empty batch leaves the balance
// untouched.
func (r *Reconciler) Apply(ctx context.Context, accountID int, applied []model.Transaction) (decimal.Decimal, error) {
	for _, t := range applied {
		if t.AccountID != accountID {
			return decimal.Decimal{}, fmt.Errorf("transaction %d belongs to account %d, not %d", t.ID, t.AccountID, accountID)
		}
	}

	mu := r.lock(accountID)
	mu.Lock()
	defer mu.Unlock()

	current, err := r.store.AccountBalance(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("reading balance of account %d: %w", accountID, err)
	}
	if len(applied) == 0 {
		return current, nil
	}

	next := Reconcile(model.Account{ID: accountID, CurrentBalance: current}, applied)
	if err := r.store.PersistAccountBalance(ctx, accountID, next); err != nil {
		return decimal.Decimal{}, fmt.Errorf("persisting balance of account %d: %w", accountID, err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int("account_id", accountID).
		Str("previous", current.StringFixed(2)).
		Str("balance", next.StringFixed(2)).
		Int("transactions", len(applied)).
		Msg("balance reconciled")

	return next, nil
}

// Set overwrites the account's stored balance, under the same per-account
// lock as Apply. It is used to repair drift found by Audit.
func (r *Reconciler) Set(ctx context.Context, accountID int, balance decimal.Decimal) error {
	mu := r.lock(accountID)
	mu.Lock()
	defer mu.Unlock()

	if err := r.store.PersistAccountBalance(ctx, accountID, balance); err != nil {
		return fmt.Errorf("persisting balance of account %d: %w", accountID, err)
	}
	return nil
}

func (r *Reconciler) lock(accountID int) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
