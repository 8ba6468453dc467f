/*
import.go - Bulk owner import with opening balances

PURPOSE:
  Supports importing customers/suppliers from a spreadsheet: owner records
  are inserted one batch at a time with partial-failure semantics, then one
  opening_balance entry is synthesized for every inserted owner with a
  strictly positive starting balance.

PARTIAL FAILURE:
  A row that fails (typically a uniqueness violation on phone) does not
  abort the batch. Failures are accumulated per row with their original
  index so the caller can report exactly which spreadsheet lines were
  skipped.

OPENING ENTRIES:
  Opening-balance rows are batch-inserted directly rather than going
  through CreateEntry. They skip running-balance projection because, by
  construction, each is its owner's first entry: the recorded balance is
  the stated opening balance verbatim.
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// IMPORT TYPES
// =============================================================================

// OwnerImport is one spreadsheet row.
type OwnerImport struct {
	Name     string
	Email    string
	Phone    string
	Whatsapp string
	Address  string
	Balance  decimal.Decimal
}

// RowError reports one failed row with its index in the input slice.
type RowError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	InsertedCount int
	Owners        []Owner
	Errors        []RowError
}

// =============================================================================
// BULK IMPORT
// =============================================================================

// ImportOwners inserts the given rows, continuing past row-level failures,
// then synthesizes opening-balance entries for inserted owners with a
// positive starting balance. Row errors are accumulated explicitly rather
// than decoded from a driver's bulk-error shape.
func (l *Ledger) ImportOwners(ctx context.Context, rows []OwnerImport) (*ImportResult, error) {
	result := &ImportResult{}
	now := time.Now().UTC()

	for i, row := range rows {
		owner := Owner{
			ID:        OwnerID(uuid.NewString()),
			Kind:      l.conv.Kind(),
			Name:      row.Name,
			Email:     row.Email,
			Phone:     row.Phone,
			Whatsapp:  row.Whatsapp,
			Address:   row.Address,
			Balance:   row.Balance,
			CreatedAt: now,
		}
		if err := l.store.InsertOwner(ctx, owner); err != nil {
			result.Errors = append(result.Errors, RowError{Index: i, Error: err.Error()})
			continue
		}
		result.Owners = append(result.Owners, owner)
	}
	result.InsertedCount = len(result.Owners)

	var opening []Entry
	for _, owner := range result.Owners {
		if !owner.Balance.IsPositive() {
			continue
		}
		debit, credit := l.amounts(owner.Balance, true)
		opening = append(opening, Entry{
			ID:              EntryID(uuid.NewString()),
			OwnerID:         owner.ID,
			Type:            TxOpeningBalance,
			TransactionDate: now,
			Debit:           debit,
			Credit:          credit,
			Balance:         owner.Balance,
			Description:     "Opening Balance",
			CreatedAt:       now,
		})
	}

	if len(opening) > 0 {
		if err := l.store.InsertEntries(ctx, l.conv.Kind(), opening); err != nil {
			return nil, err
		}
	}

	l.log.Info("imported owners",
		zap.Int("inserted", result.InsertedCount),
		zap.Int("failed", len(result.Errors)),
		zap.Int("opening_entries", len(opening)),
	)
	return result, nil
}
