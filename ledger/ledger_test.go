package ledger_test

import (
	"context"
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

// debitConv mimics the customer convention: debits increase the balance.
type debitConv struct{}

func (debitConv) Kind() string                    { return "customer" }
func (debitConv) DebitPositive() bool             { return true }
func (debitConv) PrincipalType() ledger.EntryType { return "sale" }
func (debitConv) PaymentType() ledger.EntryType   { return "payment_received" }
func (debitConv) PrincipalDescription(n string) string {
	return "Sale Invoice #" + n
}
func (debitConv) PaymentDescription(n string) string {
	return "Payment for Invoice #" + n
}
func (debitConv) PrincipalNotes(ledger.DocumentSnapshot) string { return "Invoice updated" }
func (debitConv) PaymentNotes(doc ledger.DocumentSnapshot) string {
	return "Amount paid: Rs" + doc.PaidAmount.StringFixed(2)
}

// creditConv mimics the supplier convention: credits increase the balance.
type creditConv struct{}

func (creditConv) Kind() string                    { return "supplier" }
func (creditConv) DebitPositive() bool             { return false }
func (creditConv) PrincipalType() ledger.EntryType { return "purchase" }
func (creditConv) PaymentType() ledger.EntryType   { return "payment_made" }
func (creditConv) PrincipalDescription(n string) string {
	return "Purchase Invoice #" + n
}
func (creditConv) PaymentDescription(n string) string {
	return "Payment for Purchase #" + n
}
func (creditConv) PrincipalNotes(ledger.DocumentSnapshot) string { return "Purchase updated" }
func (creditConv) PaymentNotes(doc ledger.DocumentSnapshot) string {
	return "Amount paid: Rs" + doc.PaidAmount.StringFixed(2)
}

func newTestLedger(t *testing.T, conv ledger.Convention) (*ledger.Ledger, *store.TxMemory) {
	t.Helper()
	mem := store.NewTxMemory()
	return ledger.New(conv, mem, nil), mem
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// post creates an entry and spaces creations so created_at ordering is
// deterministic.
func post(t *testing.T, l *ledger.Ledger, in ledger.NewEntry) *ledger.Entry {
	t.Helper()
	entry, err := l.CreateEntry(context.Background(), in)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	return entry
}

// assertReplayInvariant replays the owner's entries ordered by
// (transactionDate, createdAt) and checks every stored running balance.
func assertReplayInvariant(t *testing.T, l *ledger.Ledger, mem *store.TxMemory, owner ledger.OwnerID, debitPositive bool) {
	t.Helper()
	ctx := context.Background()

	page, err := l.Entries(ctx, ledger.Filter{
		OwnerID: owner,
		SortBy:  "transactionDate:asc",
		Limit:   1000,
	})
	require.NoError(t, err)

	running := decimal.Zero
	for _, e := range page.Results {
		delta := e.Debit.Sub(e.Credit)
		if !debitPositive {
			delta = e.Credit.Sub(e.Debit)
		}
		running = running.Add(delta)
		assert.True(t, running.Equal(e.Balance),
			"entry %s: replayed balance %s, stored %s", e.ID, running, e.Balance)
	}
}

// =============================================================================
// RUNNING BALANCE
// =============================================================================

func TestLedger_RunningBalance_DebitPositive(t *testing.T) {
	// GIVEN: A customer-style ledger (debits increase the balance)
	// WHEN: Posting a sale then a payment
	// THEN: The running balance moves +sale then -payment

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	sale := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(500),
	})
	assert.True(t, sale.Balance.Equal(dec(500)))

	payment := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(time.Second), Credit: dec(200),
	})
	assert.True(t, payment.Balance.Equal(dec(300)))

	summary, err := l.Summary(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(dec(300)))
	assert.Equal(t, 2, summary.TransactionCount)
}

func TestLedger_RunningBalance_CreditPositive(t *testing.T) {
	// GIVEN: A supplier-style ledger (credits increase the balance)
	// WHEN: Posting a purchase then a payment made
	// THEN: The same amounts move the balance the opposite way

	l, _ := newTestLedger(t, creditConv{})
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	purchase := post(t, l, ledger.NewEntry{
		OwnerID: "supp-1", Type: "purchase", TransactionDate: day, Credit: dec(500),
	})
	assert.True(t, purchase.Balance.Equal(dec(500)))

	payment := post(t, l, ledger.NewEntry{
		OwnerID: "supp-1", Type: "payment_made", TransactionDate: day.Add(time.Second), Debit: dec(200),
	})
	assert.True(t, payment.Balance.Equal(dec(300)))
}

func TestLedger_RunningBalance_IndependentOwners(t *testing.T) {
	// GIVEN: Two customers
	// WHEN: Posting to each
	// THEN: Balances do not bleed across owners

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))
	require.NoError(t, seedOwner(l, "cust-2"))

	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(100)})
	e := post(t, l, ledger.NewEntry{OwnerID: "cust-2", Type: "sale", TransactionDate: day, Debit: dec(40)})
	assert.True(t, e.Balance.Equal(dec(40)))

	b1, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, b1.Equal(dec(100)))

	b2, err := l.Balance(ctx, "cust-2")
	require.NoError(t, err)
	assert.True(t, b2.Equal(dec(40)))
}

func seedOwner(l *ledger.Ledger, id ledger.OwnerID) error {
	_, err := l.CreateOwner(context.Background(), ledger.Owner{ID: id, Name: string(id)})
	return err
}

// =============================================================================
// DELETE + RECALCULATE
// =============================================================================

func TestLedger_DeleteEntry_RecalculatesDownstream(t *testing.T) {
	// GIVEN: Three entries with running balances 100, 150, 130
	// WHEN: Deleting the middle entry
	// THEN: The third entry and the owner cache land on 80

	l, mem := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))

	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(100)})
	e2 := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day.Add(time.Hour), Debit: dec(50)})
	e3 := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(2 * time.Hour), Credit: dec(20)})
	assert.True(t, e3.Balance.Equal(dec(130)))

	deleted, err := l.DeleteEntry(ctx, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, e2.ID, deleted.ID)

	got, err := l.GetEntry(ctx, e3.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(80)), "downstream balance should be recomputed")

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(80)), "owner cache should follow")

	assertReplayInvariant(t, l, mem, "cust-1", true)
}

func TestLedger_DeleteEntry_BalanceCanGoNegative(t *testing.T) {
	// GIVEN: A sale of 500 and a payment of 200 (balance 300)
	// WHEN: Deleting the sale
	// THEN: The payment's balance and the owner cache become -200

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))

	sale := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(500)})
	payment := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(time.Second), Credit: dec(200)})
	assert.True(t, payment.Balance.Equal(dec(300)))

	_, err := l.DeleteEntry(ctx, sale.ID)
	require.NoError(t, err)

	got, err := l.GetEntry(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(-200)))

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(-200)))
}

func TestLedger_DeleteEntry_LastEntry(t *testing.T) {
	// GIVEN: A single entry
	// WHEN: Deleting it
	// THEN: The owner cache returns to zero

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()

	require.NoError(t, seedOwner(l, "cust-1"))
	e := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: time.Now().UTC(), Debit: dec(75)})

	_, err := l.DeleteEntry(ctx, e.ID)
	require.NoError(t, err)

	balance, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestLedger_DeleteEntry_NotFound(t *testing.T) {
	l, _ := newTestLedger(t, debitConv{})

	_, err := l.DeleteEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// UPDATE
// =============================================================================

func TestLedger_UpdateEntry_DescriptiveFieldsOnly(t *testing.T) {
	// GIVEN: A posted entry
	// WHEN: Updating descriptive fields
	// THEN: Amounts and balance are untouched

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	e := post(t, l, ledger.NewEntry{
		OwnerID: "cust-1", Type: "sale", TransactionDate: day,
		Debit: dec(100), Description: "Sale Invoice #42",
	})

	ref := "INV-42"
	notes := "corrected reference"
	updated, err := l.UpdateEntry(ctx, e.ID, ledger.EntryUpdate{
		Reference: &ref,
		Notes:     &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-42", updated.Reference)
	assert.Equal(t, "corrected reference", updated.Notes)
	assert.True(t, updated.Debit.Equal(dec(100)))
	assert.True(t, updated.Balance.Equal(dec(100)))
}

func TestLedger_UpdateEntry_DateChangeDoesNotRecalculate(t *testing.T) {
	// GIVEN: Two entries posted in order
	// WHEN: Backdating the second entry's transaction date before the first
	// THEN: Stored balances keep creation order; no recalculation happens

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(100)})
	e2 := post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day.Add(time.Hour), Debit: dec(50)})

	backdated := day.Add(-48 * time.Hour)
	updated, err := l.UpdateEntry(ctx, e2.ID, ledger.EntryUpdate{TransactionDate: &backdated})
	require.NoError(t, err)

	assert.True(t, updated.Balance.Equal(dec(150)), "balance reflects creation order, not the new date")
}

func TestLedger_UpdateEntry_NotFound(t *testing.T) {
	l, _ := newTestLedger(t, debitConv{})

	desc := "x"
	_, err := l.UpdateEntry(context.Background(), "missing", ledger.EntryUpdate{Description: &desc})
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

// =============================================================================
// READS
// =============================================================================

func TestLedger_Balance_OwnerNotFound(t *testing.T) {
	l, _ := newTestLedger(t, debitConv{})

	_, err := l.Balance(context.Background(), "ghost")
	assert.ErrorIs(t, err, ledger.ErrOwnerNotFound)
}

func TestLedger_Summary_MatchesCachedBalance(t *testing.T) {
	// GIVEN: Several postings
	// WHEN: Computing the full-scan summary
	// THEN: Totals are independent sums and CurrentBalance equals the cache

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))

	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(500)})
	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "payment_received", TransactionDate: day.Add(time.Second), Credit: dec(150)})
	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day.Add(time.Hour), Debit: dec(50)})

	summary, err := l.Summary(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, summary.TotalDebit.Equal(dec(550)))
	assert.True(t, summary.TotalCredit.Equal(dec(150)))
	assert.True(t, summary.CurrentBalance.Equal(dec(400)))

	cached, err := l.Balance(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(cached))
}

func TestLedger_Entries_Pagination(t *testing.T) {
	// GIVEN: Three entries
	// WHEN: Querying with limit 2
	// THEN: Two pages, newest transaction first by default

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))
	for i := 0; i < 3; i++ {
		post(t, l, ledger.NewEntry{
			OwnerID: "cust-1", Type: "sale",
			TransactionDate: day.Add(time.Duration(i) * time.Hour),
			Debit:           dec(10),
		})
	}

	page, err := l.Entries(ctx, ledger.Filter{OwnerID: "cust-1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalResults)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, day.Add(2*time.Hour), page.Results[0].TransactionDate, "default sort is newest first")
	require.NotNil(t, page.Results[0].Owner)
	assert.Equal(t, "cust-1", page.Results[0].Owner.Name)

	page2, err := l.Entries(ctx, ledger.Filter{OwnerID: "cust-1", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Results, 1)
}

func TestLedger_Entries_TypeFilter(t *testing.T) {
	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(10)})
	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "payment_received", TransactionDate: day, Credit: dec(5)})

	page, err := l.Entries(ctx, ledger.Filter{OwnerID: "cust-1", Type: "sale"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalResults)
	assert.Equal(t, ledger.EntryType("sale"), page.Results[0].Type)
}

// =============================================================================
// OWNERS
// =============================================================================

func TestLedger_OwnersWithBalances(t *testing.T) {
	// GIVEN: Two owners, one with entries
	// WHEN: Listing with balances
	// THEN: Last transaction date is set only where entries exist

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, seedOwner(l, "cust-1"))
	require.NoError(t, seedOwner(l, "cust-2"))
	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: day, Debit: dec(10)})

	balances, err := l.OwnersWithBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byID := make(map[ledger.OwnerID]ledger.OwnerBalance)
	for _, b := range balances {
		byID[b.ID] = b
	}
	require.NotNil(t, byID["cust-1"].LastTransactionDate)
	assert.Equal(t, day, byID["cust-1"].LastTransactionDate.UTC())
	assert.Nil(t, byID["cust-2"].LastTransactionDate)
}

func TestLedger_UpdateOwner_CannotTouchBalance(t *testing.T) {
	// GIVEN: An owner with a posted balance
	// WHEN: Updating contact fields
	// THEN: The balance survives unchanged

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()

	require.NoError(t, seedOwner(l, "cust-1"))
	post(t, l, ledger.NewEntry{OwnerID: "cust-1", Type: "sale", TransactionDate: time.Now().UTC(), Debit: dec(90)})

	name := "Renamed"
	updated, err := l.UpdateOwner(ctx, "cust-1", ledger.OwnerUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.Balance.Equal(dec(90)))
}
