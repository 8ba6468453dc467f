package suppliers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahtshamyou/jhulelal/ledger"
	"github.com/ahtshamyou/jhulelal/store/sqlite"
	"github.com/ahtshamyou/jhulelal/suppliers"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *suppliers.Service {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return suppliers.NewService(store, nil)
}

func newSupplier(t *testing.T, svc *suppliers.Service, name string) ledger.OwnerID {
	t.Helper()
	o, err := svc.CreateOwner(context.Background(), ledger.Owner{Name: name, Phone: "0321-" + name})
	require.NoError(t, err)
	return o.ID
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func ledgerEntries(t *testing.T, svc *suppliers.Service, owner ledger.OwnerID) []ledger.Entry {
	t.Helper()
	page, err := svc.Entries(context.Background(), ledger.Filter{
		OwnerID: owner, SortBy: "createdAt:asc", Limit: 100,
	})
	require.NoError(t, err)
	return page.Results
}

// =============================================================================
// PURCHASE LIFECYCLE
// =============================================================================

func TestPostPurchase_CreditPositive(t *testing.T) {
	// GIVEN: A supplier
	// WHEN: Posting a purchase of 1000 with 400 paid up front
	// THEN: The purchase lands on the credit side, the payment on the debit
	//       side, and the shop owes 600

	svc := newTestService(t)
	ctx := context.Background()
	id := newSupplier(t, svc, "traders")
	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	err := svc.PostPurchase(ctx, suppliers.Purchase{
		ID: "pur-1", Number: "77", Date: day, SupplierID: id,
		Total: dec(1000), PaidAmount: dec(400), ItemsCount: 12,
	})
	require.NoError(t, err)

	entries := ledgerEntries(t, svc, id)
	require.Len(t, entries, 2)

	purchase := entries[0]
	assert.Equal(t, suppliers.TxPurchase, purchase.Type)
	assert.True(t, purchase.Credit.Equal(dec(1000)))
	assert.True(t, purchase.Debit.IsZero())
	assert.Equal(t, "Purchase Invoice #77", purchase.Description)
	assert.Equal(t, "Purchase of 12 items", purchase.Notes)

	payment := entries[1]
	assert.Equal(t, suppliers.TxPaymentMade, payment.Type)
	assert.True(t, payment.Debit.Equal(dec(400)))
	assert.Equal(t, "Payment for Purchase #77", payment.Description)
	assert.Equal(t, "Cash", payment.PaymentMethod)
	assert.Equal(t, day.Add(time.Second), payment.TransactionDate)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(600)))
}

func TestPostPurchase_Unpaid(t *testing.T) {
	// GIVEN: A supplier
	// WHEN: Posting a purchase with nothing paid
	// THEN: Only the purchase entry is posted and the full amount is owed

	svc := newTestService(t)
	ctx := context.Background()
	id := newSupplier(t, svc, "traders")

	err := svc.PostPurchase(ctx, suppliers.Purchase{
		ID: "pur-1", Number: "77", Date: time.Now().UTC(), SupplierID: id,
		Total: dec(250),
	})
	require.NoError(t, err)

	require.Len(t, ledgerEntries(t, svc, id), 1)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(250)))
}

func TestSyncPurchase_PaidEdited(t *testing.T) {
	// GIVEN: A posted purchase with 400 paid
	// WHEN: The paid amount is edited to 700 and synced
	// THEN: The payment entry is reissued and the balance drops to 300

	svc := newTestService(t)
	ctx := context.Background()
	id := newSupplier(t, svc, "traders")
	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	p := suppliers.Purchase{
		ID: "pur-1", Number: "77", Date: day, SupplierID: id,
		Total: dec(1000), PaidAmount: dec(400),
	}
	require.NoError(t, svc.PostPurchase(ctx, p))

	p.PaidAmount = dec(700)
	require.NoError(t, svc.SyncPurchase(ctx, p))

	entries := ledgerEntries(t, svc, id)
	require.Len(t, entries, 2)

	var payment *ledger.Entry
	for i := range entries {
		if entries[i].Type == suppliers.TxPaymentMade {
			payment = &entries[i]
		}
	}
	require.NotNil(t, payment)
	assert.True(t, payment.Debit.Equal(dec(700)))
	assert.Equal(t, "Payment for Purchase #77 (Updated)", payment.Description)
	assert.Equal(t, "Amount paid: Rs700.00", payment.Notes)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(300)))
}

func TestRemovePurchase_TearsDownGroup(t *testing.T) {
	// GIVEN: A posted purchase with a payment
	// WHEN: The purchase is deleted
	// THEN: Both entries disappear and the balance returns to zero

	svc := newTestService(t)
	ctx := context.Background()
	id := newSupplier(t, svc, "traders")

	require.NoError(t, svc.PostPurchase(ctx, suppliers.Purchase{
		ID: "pur-1", Number: "77", Date: time.Now().UTC(), SupplierID: id,
		Total: dec(1000), PaidAmount: dec(400),
	}))

	require.NoError(t, svc.RemovePurchase(ctx, "pur-1"))

	assert.Empty(t, ledgerEntries(t, svc, id))
	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// =============================================================================
// CONVENTION
// =============================================================================

func TestConvention_CreditPositive(t *testing.T) {
	conv := suppliers.Convention{}
	assert.Equal(t, "supplier", conv.Kind())
	assert.False(t, conv.DebitPositive())
	assert.Equal(t, suppliers.TxPurchase, conv.PrincipalType())
	assert.Equal(t, suppliers.TxPaymentMade, conv.PaymentType())
}
