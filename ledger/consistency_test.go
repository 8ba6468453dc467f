package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahtshamyou/jhulelal/ledger"
	"github.com/ahtshamyou/jhulelal/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var errBalanceWrite = errors.New("simulated balance write failure")

// brokenBalanceStore delegates everything to TxMemory but, inside a
// transaction, fails every SetEntryBalance. It drives the recalculation walk
// into a mid-walk write error so the rollback path actually runs.
type brokenBalanceStore struct {
	*store.TxMemory
}

func (b *brokenBalanceStore) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	return b.TxMemory.WithTx(ctx, func(inner ledger.Store) error {
		return fn(&brokenBalanceView{Store: inner})
	})
}

type brokenBalanceView struct {
	ledger.Store
}

func (v *brokenBalanceView) SetEntryBalance(context.Context, string, ledger.EntryID, decimal.Decimal) error {
	return errBalanceWrite
}

var _ ledger.TxStore = (*brokenBalanceStore)(nil)

// =============================================================================
// TRANSACTIONAL ROLLBACK
// =============================================================================

func TestDeleteEntry_MidWalkFailure_RollsBack(t *testing.T) {
	// GIVEN: Entries with balances 100 / 150 / 130 on a store whose balance
	//        rewrites fail inside the transaction
	// WHEN: Deleting the middle entry
	// THEN: The error surfaces and nothing changed: the deleted entry is
	//       still there, downstream balances are untouched, and the owner
	//       cache still reads 130

	mem := store.NewTxMemory()
	l := ledger.New(debitConv{}, &brokenBalanceStore{TxMemory: mem}, nil)
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))
	e1 := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(100),
	})
	e2 := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day.Add(time.Second), Debit: dec(50),
	})
	e3 := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(2 * time.Second), Credit: dec(20),
	})

	_, err := l.DeleteEntry(ctx, e2.ID)
	require.ErrorIs(t, err, errBalanceWrite)

	// The whole walk rolled back.
	for _, want := range []struct {
		id      ledger.EntryID
		balance decimal.Decimal
	}{
		{e1.ID, dec(100)},
		{e2.ID, dec(150)},
		{e3.ID, dec(130)},
	} {
		got, err := l.GetEntry(ctx, want.id)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(want.balance),
			"entry %s: stored %s, want %s", want.id, got.Balance, want.balance)
	}

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(130)), "owner cache must be unchanged")
}

func TestDeleteEntry_AfterFailedAttempt_Succeeds(t *testing.T) {
	// GIVEN: A delete that failed mid-walk and rolled back
	// WHEN: Retrying against a healthy store
	// THEN: The delete goes through and the invariant holds

	mem := store.NewTxMemory()
	broken := ledger.New(debitConv{}, &brokenBalanceStore{TxMemory: mem}, nil)
	healthy := ledger.New(debitConv{}, mem, nil)
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(broken, "cust-1"))
	post(t, broken, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(100),
	})
	e2 := post(t, broken, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day.Add(time.Second), Debit: dec(50),
	})
	post(t, broken, ledger.NewEntry{
		OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(2 * time.Second), Credit: dec(20),
	})

	_, err := broken.DeleteEntry(ctx, e2.ID)
	require.Error(t, err)

	_, err = healthy.DeleteEntry(ctx, e2.ID)
	require.NoError(t, err)

	balance, err := healthy.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(80)))
	assertReplayInvariant(t, healthy, mem, "cust-1", true)
}

// =============================================================================
// CONCURRENT POSTINGS
// =============================================================================

func TestCreateEntry_ConcurrentSameOwner(t *testing.T) {
	// GIVEN: One owner
	// WHEN: Posting 20 entries from concurrent goroutines
	// THEN: The per-owner lock serializes them: no lost balance updates and
	//       the replay invariant holds over the stored chain

	l, mem := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.CreateEntry(ctx, ledger.NewEntry{
				OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(10),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(200)), "got %s", balance)

	assertReplayInvariant(t, l, mem, "cust-1", true)
}

func TestUpdateOwner_ConcurrentWithPostings(t *testing.T) {
	// GIVEN: One owner receiving postings while its contact fields are being
	//        updated from another goroutine
	// WHEN: Both loops finish
	// THEN: No posting's balance write was lost to a stale owner write-back

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := l.CreateEntry(ctx, ledger.NewEntry{
				OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(10),
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			name := "renamed"
			_, err := l.UpdateOwner(ctx, "cust-1", ledger.OwnerUpdate{Name: &name})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(500)), "got %s", balance)

	owner, err := l.GetOwner(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", owner.Name)
}
