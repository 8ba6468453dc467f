package customers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahtshamyou/jhulelal/customers"
	"github.com/ahtshamyou/jhulelal/ledger"
	"github.com/ahtshamyou/jhulelal/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *customers.Service {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return customers.NewService(store, nil)
}

func newCustomer(t *testing.T, svc *customers.Service, name string) ledger.OwnerID {
	t.Helper()
	o, err := svc.CreateOwner(context.Background(), ledger.Owner{Name: name, Phone: "0300-" + name})
	require.NoError(t, err)
	return o.ID
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func ledgerEntries(t *testing.T, svc *customers.Service, owner ledger.OwnerID) []ledger.Entry {
	t.Helper()
	page, err := svc.Entries(context.Background(), ledger.Filter{
		OwnerID: owner, SortBy: "createdAt:asc", Limit: 100,
	})
	require.NoError(t, err)
	return page.Results
}

// =============================================================================
// INVOICE LIFECYCLE
// =============================================================================

func TestPostInvoice_SaleAndPayment(t *testing.T) {
	// GIVEN: A customer
	// WHEN: Posting an invoice of 1000 with 400 paid up front
	// THEN: A sale and a payment entry appear and the customer owes 600

	svc := newTestService(t)
	ctx := context.Background()
	id := newCustomer(t, svc, "ali")
	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	err := svc.PostInvoice(ctx, customers.Invoice{
		ID: "inv-1", Number: "101", Date: day, CustomerID: id,
		Total: dec(1000), PaidAmount: dec(400), ItemsCount: 3,
	})
	require.NoError(t, err)

	entries := ledgerEntries(t, svc, id)
	require.Len(t, entries, 2)

	sale := entries[0]
	assert.Equal(t, customers.TxSale, sale.Type)
	assert.True(t, sale.Debit.Equal(dec(1000)))
	assert.Equal(t, "Sale Invoice #101", sale.Description)
	assert.Equal(t, "inv-1", sale.ReferenceID)

	payment := entries[1]
	assert.Equal(t, customers.TxPaymentReceived, payment.Type)
	assert.True(t, payment.Credit.Equal(dec(400)))
	assert.Equal(t, "Payment for Invoice #101", payment.Description)
	assert.Equal(t, "Cash", payment.PaymentMethod)
	assert.Equal(t, day.Add(time.Second), payment.TransactionDate)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(600)))
}

func TestPostInvoice_Unpaid(t *testing.T) {
	// GIVEN: A customer
	// WHEN: Posting an unpaid invoice
	// THEN: Only the sale entry is posted

	svc := newTestService(t)
	ctx := context.Background()
	id := newCustomer(t, svc, "ali")

	err := svc.PostInvoice(ctx, customers.Invoice{
		ID: "inv-1", Number: "101", Date: time.Now().UTC(), CustomerID: id,
		Total: dec(250),
	})
	require.NoError(t, err)

	entries := ledgerEntries(t, svc, id)
	require.Len(t, entries, 1)
	assert.Equal(t, customers.TxSale, entries[0].Type)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(250)))
}

func TestSyncInvoice_TotalEdited(t *testing.T) {
	// GIVEN: A posted invoice of 1000
	// WHEN: The invoice is edited to 1200 and synced
	// THEN: The sale entry is reissued and the balance follows

	svc := newTestService(t)
	ctx := context.Background()
	id := newCustomer(t, svc, "ali")
	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	inv := customers.Invoice{
		ID: "inv-1", Number: "101", Date: day, CustomerID: id,
		Total: dec(1000), PaidAmount: dec(400),
	}
	require.NoError(t, svc.PostInvoice(ctx, inv))

	inv.Total = dec(1200)
	require.NoError(t, svc.SyncInvoice(ctx, inv))

	entries := ledgerEntries(t, svc, id)
	require.Len(t, entries, 2)

	var sale *ledger.Entry
	for i := range entries {
		if entries[i].Type == customers.TxSale {
			sale = &entries[i]
		}
	}
	require.NotNil(t, sale)
	assert.True(t, sale.Debit.Equal(dec(1200)))
	assert.Equal(t, "Sale Invoice #101 (Updated)", sale.Description)
	assert.Equal(t, "Invoice updated", sale.Notes)

	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(800)))
}

func TestRemoveInvoice_TearsDownGroup(t *testing.T) {
	// GIVEN: A posted invoice with a payment
	// WHEN: The invoice is deleted
	// THEN: Both entries disappear and the balance returns to zero

	svc := newTestService(t)
	ctx := context.Background()
	id := newCustomer(t, svc, "ali")

	require.NoError(t, svc.PostInvoice(ctx, customers.Invoice{
		ID: "inv-1", Number: "101", Date: time.Now().UTC(), CustomerID: id,
		Total: dec(1000), PaidAmount: dec(400),
	}))

	require.NoError(t, svc.RemoveInvoice(ctx, "inv-1"))

	assert.Empty(t, ledgerEntries(t, svc, id))
	balance, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// =============================================================================
// CONVENTION
// =============================================================================

func TestConvention_DebitPositive(t *testing.T) {
	conv := customers.Convention{}
	assert.Equal(t, "customer", conv.Kind())
	assert.True(t, conv.DebitPositive())
	assert.Equal(t, customers.TxSale, conv.PrincipalType())
	assert.Equal(t, customers.TxPaymentReceived, conv.PaymentType())
	assert.Equal(t, "Amount paid: Rs400.00",
		conv.PaymentNotes(ledger.DocumentSnapshot{PaidAmount: dec(400)}))
}
