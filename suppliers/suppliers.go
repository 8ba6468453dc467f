/*
Package suppliers provides the supplier-side ledger.

PURPOSE:
  Tracks what the shop owes each supplier. Purchases increase the balance
  (credit-positive), payments made decrease it. Same engine as the
  customer ledger with the sign convention flipped.

POSTING MODEL:
  Each purchase owns a reference group:
  - one "purchase" entry for the purchase total
  - at most one "payment_made" entry for the paid amount

SEE ALSO:
  - customers/: The mirror-image subsystem; the doc there covers the
    reference-group lifecycle in detail
*/
package suppliers

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
	TxPurchase    ledger.EntryType = "purchase"
	TxPaymentMade ledger.EntryType = "payment_made"
)

// =============================================================================
// CONVENTION - credit-positive
// =============================================================================

// Convention is the supplier sign convention: credits (purchases) increase
// the balance, debits (payments made) decrease it. A positive balance is
// money the shop owes the supplier.
type Convention struct{}

func (Convention) Kind() string                    { return "supplier" }
func (Convention) DebitPositive() bool             { return false }
func (Convention) PrincipalType() ledger.EntryType { return TxPurchase }
func (Convention) PaymentType() ledger.EntryType   { return TxPaymentMade }

func (Convention) PrincipalDescription(number string) string {
	return fmt.Sprintf("Purchase Invoice #%s", number)
}

func (Convention) PaymentDescription(number string) string {
	return fmt.Sprintf("Payment for Purchase #%s", number)
}

func (Convention) PrincipalNotes(doc ledger.DocumentSnapshot) string {
	return fmt.Sprintf("Purchase of %d items (Updated)", doc.ItemsCount)
}

func (Convention) PaymentNotes(doc ledger.DocumentSnapshot) string {
	return fmt.Sprintf("Amount paid: Rs%s", doc.PaidAmount.StringFixed(2))
}

// =============================================================================
// SERVICE
// =============================================================================

// Service is the supplier ledger.
type Service struct {
	*ledger.Ledger
}

// NewService creates the supplier ledger over the given store.
func NewService(store ledger.Store, log *zap.Logger) *Service {
	return &Service{Ledger: ledger.New(Convention{}, store, log)}
}

// =============================================================================
// PURCHASE POSTING
// =============================================================================

// Purchase is the slice of a purchase document the ledger cares about.
type Purchase struct {
	ID            string
	Number        string
	Date          time.Time
	SupplierID    ledger.OwnerID
	Total         decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentMethod string
	ItemsCount    int
}

func (p Purchase) snapshot() ledger.DocumentSnapshot {
	return ledger.DocumentSnapshot{
		Number:        p.Number,
		Date:          p.Date,
		Total:         p.Total,
		PaidAmount:    p.PaidAmount,
		PaymentMethod: p.PaymentMethod,
		ItemsCount:    p.ItemsCount,
	}
}

// PostPurchase posts the reference group for a newly recorded purchase: a
// purchase entry for the total and, when an amount was paid up front, a
// payment entry dated one second after it.
func (s *Service) PostPurchase(ctx context.Context, p Purchase) error {
	conv := Convention{}

	if _, err := s.CreateEntry(ctx, ledger.NewEntry{
		OwnerID:         p.SupplierID,
		Type:            TxPurchase,
		TransactionDate: p.Date,
		Credit:          p.Total,
		Reference:       p.Number,
		ReferenceID:     p.ID,
		PaymentMethod:   p.PaymentMethod,
		Notes:           fmt.Sprintf("Purchase of %d items", p.ItemsCount),
		Description:     conv.PrincipalDescription(p.Number),
	}); err != nil {
		return fmt.Errorf("failed to post purchase entry: %w", err)
	}

	if !p.PaidAmount.IsPositive() {
		return nil
	}

	method := p.PaymentMethod
	if method == "" {
		method = "Cash"
	}
	if _, err := s.CreateEntry(ctx, ledger.NewEntry{
		OwnerID:         p.SupplierID,
		Type:            TxPaymentMade,
		TransactionDate: p.Date.Add(time.Second),
		Debit:           p.PaidAmount,
		Reference:       p.Number,
		ReferenceID:     p.ID,
		PaymentMethod:   method,
		Notes:           conv.PaymentNotes(p.snapshot()),
		Description:     conv.PaymentDescription(p.Number),
	}); err != nil {
		return fmt.Errorf("failed to post payment entry: %w", err)
	}
	return nil
}

// SyncPurchase reconciles the purchase's ledger entries with its current
// totals after an edit.
func (s *Service) SyncPurchase(ctx context.Context, p Purchase) error {
	return s.SyncReference(ctx, p.ID, p.snapshot())
}

// RemovePurchase deletes every ledger entry posted for the purchase.
func (s *Service) RemovePurchase(ctx context.Context, purchaseID string) error {
	return s.DeleteReference(ctx, purchaseID)
}
