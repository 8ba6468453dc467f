/*
reconcile.go - Reference-group reconciler

PURPOSE:
  Maps a single business document (an invoice or purchase) onto its ledger
  entries and reissues them when the document changes. Each document owns a
  reference group: at most one principal entry (sale/purchase) and at most
  one payment entry (payment_received/payment_made), both carrying
  ReferenceID = document id.

RECONCILIATION RULES:
  Principal: if the stored amount differs from the document total, the old
  entry is deleted (full downstream recalculation) and a replacement is
  posted with the new amount and a "(Updated)" description.

  Payment, three-way branch:
    1. paidAmount > 0, payment exists with a different amount -> replace
    2. paidAmount > 0, no payment entry                       -> create
    3. paidAmount <= 0, payment entry exists                  -> delete

  Synthetic payment dates are document date + 1 second so payments order
  stably after the principal when transaction dates collide at day
  granularity.

  A reference with no entries is a no-op: logged, not an error.

SEE ALSO:
  - ledger.go: CreateEntry/DeleteEntry, whose recalculation guarantees every
    reissue inherits
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// DOCUMENT RECONCILIATION
// =============================================================================

// SyncReference reconciles the reference group for a business document with
// the document's current totals. Safe to call repeatedly: an unchanged
// snapshot produces no new entries and no balance drift.
func (l *Ledger) SyncReference(ctx context.Context, referenceID string, doc DocumentSnapshot) error {
	entries, err := l.store.EntriesByReference(ctx, l.conv.Kind(), referenceID)
	if err != nil {
		return fmt.Errorf("failed to load entries for reference: %w", err)
	}
	if len(entries) == 0 {
		l.log.Info("no ledger entries for reference", zap.String("reference_id", referenceID))
		return nil
	}

	ownerID := entries[0].OwnerID
	lock := l.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var principal, payment *Entry
	for i := range entries {
		switch entries[i].Type {
		case l.conv.PrincipalType():
			if principal == nil {
				principal = &entries[i]
			}
		case l.conv.PaymentType():
			if payment == nil {
				payment = &entries[i]
			}
		}
	}

	if principal != nil && !l.storedAmount(*principal, true).Equal(doc.Total) {
		l.log.Info("reissuing principal entry",
			zap.String("reference_id", referenceID),
			zap.String("old", l.storedAmount(*principal, true).String()),
			zap.String("new", doc.Total.String()),
		)

		if err := l.deleteAndRecalculate(ctx, principal); err != nil {
			return err
		}

		date := doc.Date
		if date.IsZero() {
			date = principal.TransactionDate
		}
		debit, credit := l.amounts(doc.Total, true)
		if _, err := l.createEntry(ctx, l.store, NewEntry{
			OwnerID:         ownerID,
			Type:            l.conv.PrincipalType(),
			TransactionDate: date,
			Debit:           debit,
			Credit:          credit,
			Reference:       doc.Number,
			ReferenceID:     referenceID,
			PaymentMethod:   doc.PaymentMethod,
			Notes:           l.conv.PrincipalNotes(doc),
			Description:     l.conv.PrincipalDescription(doc.Number) + " (Updated)",
		}); err != nil {
			return err
		}
	}

	return l.syncPayment(ctx, referenceID, ownerID, payment, doc)
}

// syncPayment applies the three-way payment branch. Caller holds the owner
// lock.
func (l *Ledger) syncPayment(ctx context.Context, referenceID string, ownerID OwnerID, payment *Entry, doc DocumentSnapshot) error {
	if !doc.PaidAmount.IsPositive() {
		if payment == nil {
			return nil
		}
		l.log.Info("removing payment entry, document no longer paid",
			zap.String("reference_id", referenceID))
		return l.deleteAndRecalculate(ctx, payment)
	}

	if payment != nil && l.storedAmount(*payment, false).Equal(doc.PaidAmount) {
		return nil
	}

	if payment != nil {
		l.log.Info("reissuing payment entry",
			zap.String("reference_id", referenceID),
			zap.String("old", l.storedAmount(*payment, false).String()),
			zap.String("new", doc.PaidAmount.String()),
		)
		if err := l.deleteAndRecalculate(ctx, payment); err != nil {
			return err
		}
	}

	_, err := l.createEntry(ctx, l.store, NewEntry{
		OwnerID:         ownerID,
		Type:            l.conv.PaymentType(),
		TransactionDate: l.paymentDate(doc),
		Debit:           l.paymentDebit(doc),
		Credit:          l.paymentCredit(doc),
		Reference:       doc.Number,
		ReferenceID:     referenceID,
		PaymentMethod:   paymentMethodOrCash(doc.PaymentMethod),
		Notes:           l.conv.PaymentNotes(doc),
		Description:     l.conv.PaymentDescription(doc.Number) + " (Updated)",
	})
	return err
}

// DeleteReference deletes every entry posted for a business document, one at
// a time, so each deletion triggers full downstream recalculation before the
// next is processed.
func (l *Ledger) DeleteReference(ctx context.Context, referenceID string) error {
	entries, err := l.store.EntriesByReference(ctx, l.conv.Kind(), referenceID)
	if err != nil {
		return fmt.Errorf("failed to load entries for reference: %w", err)
	}

	l.log.Info("deleting reference group",
		zap.String("reference_id", referenceID),
		zap.Int("entries", len(entries)),
	)

	for i := range entries {
		if _, err := l.DeleteEntry(ctx, entries[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// storedAmount reads the convention-defined amount side of an entry:
// increase=true for the balance-increasing side (principal postings),
// false for the decreasing side (payments).
func (l *Ledger) storedAmount(e Entry, increase bool) decimal.Decimal {
	if l.conv.DebitPositive() == increase {
		return e.Debit
	}
	return e.Credit
}

// paymentDate derives the synthetic payment date: document date plus one
// second, falling back to now when the document carries no date.
func (l *Ledger) paymentDate(doc DocumentSnapshot) time.Time {
	base := doc.Date
	if base.IsZero() {
		base = time.Now().UTC()
	}
	return base.Add(time.Second)
}

func (l *Ledger) paymentDebit(doc DocumentSnapshot) decimal.Decimal {
	debit, _ := l.amounts(doc.PaidAmount, false)
	return debit
}

func (l *Ledger) paymentCredit(doc DocumentSnapshot) decimal.Decimal {
	_, credit := l.amounts(doc.PaidAmount, false)
	return credit
}

func paymentMethodOrCash(method string) string {
	if method == "" {
		return "Cash"
	}
	return method
}
