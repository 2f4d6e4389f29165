package balance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

type memStore struct {
	mu       sync.Mutex
	balances map[int]decimal.Decimal
	writes   int
	readErr  error
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{balances: map[int]decimal.Decimal{7: dec("100.00")}}
}

func (m *memStore) AccountBalance(_ context.Context, id int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return decimal.Decimal{}, m.readErr
	}
	return m.balances[id], nil
}

func (m *memStore) PersistAccountBalance(_ context.Context, id int, b decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.balances[id] = b
	m.writes++
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(id, account int, amount string) model.Transaction {
	return model.Transaction{ID: id, AccountID: account, Amount: dec(amount)}
}

func TestReconcile(t *testing.T) {
	acct := model.Account{ID: 7, CurrentBalance: dec("100.00")}

	got := Reconcile(acct, []model.Transaction{txn(1, 7, "-20.00")})
	assert.Equal(t, "80.00", got.StringFixed(2))

	got = Reconcile(acct, []model.Transaction{txn(1, 7, "-20.00"), txn(2, 7, "15.00"), txn(3, 7, "0.01")})
	assert.Equal(t, "95.01", got.StringFixed(2))

	assert.True(t, Reconcile(acct, nil).Equal(acct.CurrentBalance))
}

func TestRecomputeAndAudit(t *testing.T) {
	acct := model.Account{ID: 1, InitialBalance: dec("1000.00"), CurrentBalance: dec("1250.50")}
	history := []model.Transaction{txn(1, 1, "300.00"), txn(2, 1, "-49.50")}

	assert.Equal(t, "1250.50", Recompute(acct, history).StringFixed(2))

	d := Audit(acct, history)
	assert.True(t, d.Balanced())
	assert.True(t, d.Diff().IsZero())

	d = Audit(acct, history[:1])
	assert.False(t, d.Balanced())
	assert.Equal(t, "49.50", d.Diff().StringFixed(2))
}

func TestApply(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	got, err := r.Apply(context.Background(), 7, []model.Transaction{txn(1, 7, "-20.00")})
	require.NoError(t, err)
	assert.Equal(t, "80.00", got.StringFixed(2))
	assert.Equal(t, "80.00", store.balances[7].StringFixed(2))
}

func TestApply_EmptyIsNoop(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	got, err := r.Apply(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.StringFixed(2))
	assert.Equal(t, 0, store.writes)
}

func TestApply_WrongAccount(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	_, err := r.Apply(context.Background(), 7, []model.Transaction{txn(1, 8, "5.00")})
	require.Error(t, err)
	assert.Equal(t, 0, store.writes)
	assert.Equal(t, "100.00", store.balances[7].StringFixed(2))
}

func TestApply_StoreErrors(t *testing.T) {
	boom := errors.New("disk full")

	store := newMemStore()
	store.readErr = boom
	_, err := NewReconciler(store).Apply(context.Background(), 7, []model.Transaction{txn(1, 7, "1")})
	assert.ErrorIs(t, err, boom)

	store = newMemStore()
	store.writeErr = boom
	_, err = NewReconciler(store).Apply(context.Background(), 7, []model.Transaction{txn(1, 7, "1")})
	assert.ErrorIs(t, err, boom)
}

func TestApply_ConcurrentBatchesNoLostUpdates(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	const batches = 50
	var wg sync.WaitGroup
	for i := 0; i < batches; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Apply(context.Background(), 7, []model.Transaction{txn(i, 7, "1.00")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "150.00", store.balances[7].StringFixed(2))
	assert.Equal(t, batches, store.writes)
}

func TestSet(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	require.NoError(t, r.Set(context.Background(), 7, dec("42.00")))
	assert.Equal(t, "42.00", store.balances[7].StringFixed(2))
}
