/*
Package customers provides the customer-side ledger.

PURPOSE:
  Tracks what each customer owes the shop. Sales increase the balance
  (debit-positive), payments received decrease it. Wraps the generic
  ledger engine with the customer sign convention and invoice-driven
  posting.

POSTING MODEL:
  Each sale invoice owns a reference group in the ledger:
  - one "sale" entry for the invoice total
  - at most one "payment_received" entry for the paid amount

  When an invoice is edited the group is reconciled against the new
  totals; when it is deleted the group is torn down entry by entry so
  downstream balances are repaired each time.

SEE ALSO:
  - ledger/ledger.go: Balance projection and recalculation
  - ledger/reconcile.go: Reference-group reconciliation
  - suppliers/: The mirror-image subsystem
*/
package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// =============================================================================
// ENTRY TYPES
// =============================================================================

const (
	TxSale            ledger.EntryType = "sale"
	TxPaymentReceived ledger.EntryType = "payment_received"
)

// =============================================================================
// CONVENTION - debit-positive
// =============================================================================

// Convention is the customer sign convention: debits (sales) increase the
// balance, credits (payments received) decrease it. A positive balance is
// money the customer owes.
type Convention struct{}

func (Convention) Kind() string                    { return "customer" }
func (Convention) DebitPositive() bool             { return true }
func (Convention) PrincipalType() ledger.EntryType { return TxSale }
func (Convention) PaymentType() ledger.EntryType   { return TxPaymentReceived }

func (Convention) PrincipalDescription(number string) string {
	return fmt.Sprintf("Sale Invoice #%s", number)
}

func (Convention) PaymentDescription(number string) string {
	return fmt.Sprintf("Payment for Invoice #%s", number)
}

func (Convention) PrincipalNotes(doc ledger.DocumentSnapshot) string {
	return "Invoice updated"
}

func (Convention) PaymentNotes(doc ledger.DocumentSnapshot) string {
	return fmt.Sprintf("Amount paid: Rs%s", doc.PaidAmount.StringFixed(2))
}

// =============================================================================
// SERVICE
// =============================================================================

// Service is the customer ledger. It embeds the generic engine, so all owner
// CRUD, entry queries and balance operations are available directly.
type Service struct {
	*ledger.Ledger
}

// NewService creates the customer ledger over the given store.
func NewService(store ledger.Store, log *zap.Logger) *Service {
	return &Service{Ledger: ledger.New(Convention{}, store, log)}
}

// =============================================================================
// INVOICE POSTING
// =============================================================================

// Invoice is the slice of a sale invoice the ledger cares about.
type Invoice struct {
	ID            string
	Number        string
	Date          time.Time
	CustomerID    ledger.OwnerID
	Total         decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentMethod string
	ItemsCount    int
}

func (inv Invoice) snapshot() ledger.DocumentSnapshot {
	return ledger.DocumentSnapshot{
		Number:        inv.Number,
		Date:          inv.Date,
		Total:         inv.Total,
		PaidAmount:    inv.PaidAmount,
		PaymentMethod: inv.PaymentMethod,
		ItemsCount:    inv.ItemsCount,
	}
}

// PostInvoice posts the reference group for a newly created invoice: a sale
// entry for the total and, when an amount was paid up front, a payment entry
// dated one second after the sale so the pair orders stably.
func (s *Service) PostInvoice(ctx context.Context, inv Invoice) error {
	conv := Convention{}

	if _, err := s.CreateEntry(ctx, ledger.NewEntry{
		OwnerID:         inv.CustomerID,
		Type:            TxSale,
		TransactionDate: inv.Date,
		Debit:           inv.Total,
		Reference:       inv.Number,
		ReferenceID:     inv.ID,
		PaymentMethod:   inv.PaymentMethod,
		Notes:           fmt.Sprintf("%d items", inv.ItemsCount),
		Description:     conv.PrincipalDescription(inv.Number),
	}); err != nil {
		return fmt.Errorf("failed to post sale entry: %w", err)
	}

	if !inv.PaidAmount.IsPositive() {
		return nil
	}

	method := inv.PaymentMethod
	if method == "" {
		method = "Cash"
	}
	if _, err := s.CreateEntry(ctx, ledger.NewEntry{
		OwnerID:         inv.CustomerID,
		Type:            TxPaymentReceived,
		TransactionDate: inv.Date.Add(time.Second),
		Credit:          inv.PaidAmount,
		Reference:       inv.Number,
		ReferenceID:     inv.ID,
		PaymentMethod:   method,
		Notes:           conv.PaymentNotes(inv.snapshot()),
		Description:     conv.PaymentDescription(inv.Number),
	}); err != nil {
		return fmt.Errorf("failed to post payment entry: %w", err)
	}
	return nil
}

// SyncInvoice reconciles the invoice's ledger entries with its current
// totals after an edit.
func (s *Service) SyncInvoice(ctx context.Context, inv Invoice) error {
	return s.SyncReference(ctx, inv.ID, inv.snapshot())
}

// RemoveInvoice deletes every ledger entry posted for the invoice.
func (s *Service) RemoveInvoice(ctx context.Context, invoiceID string) error {
	return s.DeleteReference(ctx, invoiceID)
}
