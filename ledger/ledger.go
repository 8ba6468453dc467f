/*
ledger.go - Balance projector: create, update, delete, recalculate

PURPOSE:
  The Ledger maintains the running-balance invariant over each owner's
  entry sequence and keeps the owner's cached balance field in sync.
  It is the ONLY writer of Entry.Balance and Owner.Balance.

CRITICAL INVARIANT:
  Ordering an owner's entries by (transactionDate, createdAt) ascending,
  balance[i] = balance[i-1] + signedDelta(entry[i]), with balance[-1] = 0.
  The owner's cached balance equals the balance after the latest entry.

RECALCULATION:
  Deleting an entry invalidates every balance downstream of it. DeleteEntry
  walks all entries with a strictly greater createdAt in ascending order,
  recomputing and persisting each balance, then overwrites the owner cache.
  The walk runs inside a store transaction when the store supports it, so a
  mid-loop write failure leaves the prior state intact.

ORDERING KEY:
  The recalculation walk is keyed on createdAt while queries default-sort by
  transactionDate. Backdating a transactionDate relative to existing entries
  therefore leaves balances consistent with creation order, not display
  order. This mismatch is long-standing upstream behavior; it is kept as is
  rather than silently corrected. Callers that backdate must follow up with
  a deletion-driven recalculation if they need the cache corrected.

CONCURRENCY:
  Mutations for the same owner are serialized with a per-owner mutex.
  Concurrent postings for different owners proceed independently.

SEE ALSO:
  - reconcile.go: Document-driven entry groups built on these operations
  - store.go: Persistence contract, TxStore for atomic recalculation
*/
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the balance projector for one owner kind. Construct one per
// subsystem (customers.NewLedger / suppliers.NewLedger).
type Ledger struct {
	conv  Convention
	store Store
	log   *zap.Logger

	mu    sync.Mutex
	locks map[OwnerID]*sync.Mutex
}

// New creates a ledger for the given convention backed by the given store.
// A nil logger is replaced with a no-op logger.
func New(conv Convention, store Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		conv:  conv,
		store: store,
		log:   log.With(zap.String("ledger", conv.Kind())),
		locks: make(map[OwnerID]*sync.Mutex),
	}
}

// Kind returns the owner kind this ledger manages.
func (l *Ledger) Kind() string { return l.conv.Kind() }

// Convention returns the sign convention in use.
func (l *Ledger) Convention() Convention { return l.conv }

// ownerLock returns the mutex serializing mutations for one owner.
func (l *Ledger) ownerLock(id OwnerID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locks[id]; !ok {
		l.locks[id] = &sync.Mutex{}
	}
	return l.locks[id]
}

// delta returns the signed balance movement for a debit/credit pair under
// this ledger's convention.
func (l *Ledger) delta(debit, credit decimal.Decimal) decimal.Decimal {
	if l.conv.DebitPositive() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// amounts places a positive amount on the given side of the debit/credit
// pair. increase=true puts it on the balance-increasing side.
func (l *Ledger) amounts(amount decimal.Decimal, increase bool) (debit, credit decimal.Decimal) {
	if l.conv.DebitPositive() == increase {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}

// =============================================================================
// CREATE
// =============================================================================

// CreateEntry posts a new entry. The previous balance is taken from the most
// recently posted entry (transactionDate desc, createdAt desc), or zero if
// the owner has none, and the owner's cached balance is overwritten with the
// new running balance.
//
// The owner id is not validated here; collaborating services own input
// validation. Callers must post in the intended chronological sequence or
// trigger a deletion-driven recalculation afterwards.
func (l *Ledger) CreateEntry(ctx context.Context, in NewEntry) (*Entry, error) {
	lock := l.ownerLock(in.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	return l.createEntry(ctx, l.store, in)
}

// createEntry is CreateEntry without owner locking, for callers already
// holding the owner lock.
func (l *Ledger) createEntry(ctx context.Context, s Store, in NewEntry) (*Entry, error) {
	last, err := s.LastEntry(ctx, l.conv.Kind(), in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last entry: %w", err)
	}

	previous := decimal.Zero
	if last != nil {
		previous = last.Balance
	}
	newBalance := previous.Add(l.delta(in.Debit, in.Credit))

	entry := Entry{
		ID:              EntryID(uuid.NewString()),
		OwnerID:         in.OwnerID,
		Type:            in.Type,
		TransactionDate: in.TransactionDate,
		Debit:           in.Debit,
		Credit:          in.Credit,
		Balance:         newBalance,
		Reference:       in.Reference,
		ReferenceID:     in.ReferenceID,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		Description:     in.Description,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.InsertEntry(ctx, l.conv.Kind(), entry); err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	if err := s.SetOwnerBalance(ctx, l.conv.Kind(), in.OwnerID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update owner balance: %w", err)
	}

	l.log.Debug("posted entry",
		zap.String("owner", string(in.OwnerID)),
		zap.String("type", string(in.Type)),
		zap.String("balance", newBalance.String()),
	)
	return &entry, nil
}

// =============================================================================
// DELETE + RECALCULATE
// =============================================================================

// DeleteEntry removes an entry and repairs every downstream balance.
// Returns the deleted snapshot, or ErrEntryNotFound.
func (l *Ledger) DeleteEntry(ctx context.Context, id EntryID) (*Entry, error) {
	entry, err := l.store.GetEntry(ctx, l.conv.Kind(), id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	lock := l.ownerLock(entry.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.deleteAndRecalculate(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// deleteAndRecalculate removes the entry and walks later entries, inside a
// store transaction when available. Caller must hold the owner lock.
func (l *Ledger) deleteAndRecalculate(ctx context.Context, entry *Entry) error {
	if tx, ok := l.store.(TxStore); ok {
		return tx.WithTx(ctx, func(s Store) error {
			return l.recalculateAfterDelete(ctx, s, entry)
		})
	}
	// Non-transactional store: each write below is persisted separately.
	// A failure partway through leaves the ledger inconsistent; treat any
	// error from this path as alert-worthy.
	return l.recalculateAfterDelete(ctx, l.store, entry)
}

// recalculateAfterDelete is the core correctness-critical walk. It must
// process later entries in strictly increasing createdAt order and must not
// skip or double-apply any entry.
func (l *Ledger) recalculateAfterDelete(ctx context.Context, s Store, entry *Entry) error {
	kind := l.conv.Kind()

	later, err := s.EntriesAfter(ctx, kind, entry.OwnerID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load later entries: %w", err)
	}

	if err := s.RemoveEntry(ctx, kind, entry.ID); err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}

	// Baseline: balance of the nearest earlier entry, or zero.
	prev, err := s.PrevEntry(ctx, kind, entry.OwnerID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load previous entry: %w", err)
	}
	running := decimal.Zero
	if prev != nil {
		running = prev.Balance
	}

	for _, le := range later {
		running = running.Add(l.delta(le.Debit, le.Credit))
		if err := s.SetEntryBalance(ctx, kind, le.ID, running); err != nil {
			return fmt.Errorf("failed to rewrite balance for entry %s: %w", le.ID, err)
		}
	}

	if err := s.SetOwnerBalance(ctx, kind, entry.OwnerID, running); err != nil {
		return fmt.Errorf("failed to update owner balance: %w", err)
	}

	l.log.Debug("deleted entry and recalculated",
		zap.String("entry", string(entry.ID)),
		zap.String("owner", string(entry.OwnerID)),
		zap.Int("recalculated", len(later)),
		zap.String("balance", running.String()),
	)
	return nil
}

// =============================================================================
// UPDATE
// =============================================================================

// UpdateEntry changes descriptive fields only. Owner, debit, credit and
// balance cannot be changed after posting; the audit trail depends on it.
//
// Changing TransactionDate does NOT trigger recalculation even when it
// reorders the display sequence. See the ordering-key note in the header.
func (l *Ledger) UpdateEntry(ctx context.Context, id EntryID, upd EntryUpdate) (*Entry, error) {
	entry, err := l.store.GetEntry(ctx, l.conv.Kind(), id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	if upd.Reference != nil {
		entry.Reference = *upd.Reference
	}
	if upd.Description != nil {
		entry.Description = *upd.Description
	}
	if upd.Notes != nil {
		entry.Notes = *upd.Notes
	}
	if upd.PaymentMethod != nil {
		entry.PaymentMethod = *upd.PaymentMethod
	}
	if upd.TransactionDate != nil {
		entry.TransactionDate = *upd.TransactionDate
	}

	if err := l.store.UpdateEntry(ctx, l.conv.Kind(), *entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// =============================================================================
// READS
// =============================================================================

// GetEntry returns one entry with its owner populated, or ErrEntryNotFound.
func (l *Ledger) GetEntry(ctx context.Context, id EntryID) (*Entry, error) {
	entry, err := l.store.GetEntry(ctx, l.conv.Kind(), id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	owner, err := l.store.GetOwner(ctx, l.conv.Kind(), entry.OwnerID)
	if err != nil {
		return nil, err
	}
	entry.Owner = owner
	return entry, nil
}

// Balance returns the owner's cached balance, or ErrOwnerNotFound.
// O(1): no entry scan.
func (l *Ledger) Balance(ctx context.Context, owner OwnerID) (decimal.Decimal, error) {
	o, err := l.store.GetOwner(ctx, l.conv.Kind(), owner)
	if err != nil {
		return decimal.Zero, err
	}
	if o == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrOwnerNotFound, owner)
	}
	return o.Balance, nil
}

// Summary scans every entry for the owner and sums debits and credits
// independently of the cached balance. If the invariant has ever been
// violated, Summary.CurrentBalance and Balance() will diverge; use this as
// the audit path.
func (l *Ledger) Summary(ctx context.Context, owner OwnerID) (*Summary, error) {
	entries, err := l.store.EntriesByOwner(ctx, l.conv.Kind(), owner)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalDebit:       decimal.Zero,
		TotalCredit:      decimal.Zero,
		TransactionCount: len(entries),
	}
	for _, e := range entries {
		s.TotalDebit = s.TotalDebit.Add(e.Debit)
		s.TotalCredit = s.TotalCredit.Add(e.Credit)
	}
	s.CurrentBalance = l.delta(s.TotalDebit, s.TotalCredit)
	return s, nil
}

// Entries returns a page of entries matching the filter, each with its owner
// populated.
func (l *Ledger) Entries(ctx context.Context, f Filter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	entries, total, err := l.store.QueryEntries(ctx, l.conv.Kind(), f)
	if err != nil {
		return nil, err
	}

	// Populate owners, one lookup per distinct owner.
	owners := make(map[OwnerID]*Owner)
	for i := range entries {
		id := entries[i].OwnerID
		if _, ok := owners[id]; !ok {
			o, err := l.store.GetOwner(ctx, l.conv.Kind(), id)
			if err != nil {
				return nil, err
			}
			owners[id] = o
		}
		entries[i].Owner = owners[id]
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return &Page{
		Results:      entries,
		Page:         f.Page,
		Limit:        f.Limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}

// OwnersWithBalances returns every owner with their cached balance and the
// date of their latest transaction.
func (l *Ledger) OwnersWithBalances(ctx context.Context) ([]OwnerBalance, error) {
	owners, err := l.store.ListOwners(ctx, l.conv.Kind())
	if err != nil {
		return nil, err
	}

	result := make([]OwnerBalance, 0, len(owners))
	for _, o := range owners {
		last, err := l.store.LastTransactionDate(ctx, l.conv.Kind(), o.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, OwnerBalance{
			ID:                  o.ID,
			Name:                o.Name,
			Phone:               o.Phone,
			Email:               o.Email,
			Balance:             o.Balance,
			LastTransactionDate: last,
		})
	}
	return result, nil
}

// =============================================================================
// OWNER CRUD
// =============================================================================

// CreateOwner inserts a new owner. An empty ID is replaced with a UUID.
func (l *Ledger) CreateOwner(ctx context.Context, o Owner) (*Owner, error) {
	if o.ID == "" {
		o.ID = OwnerID(uuid.NewString())
	}
	o.Kind = l.conv.Kind()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := l.store.InsertOwner(ctx, o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOwner returns one owner, or ErrOwnerNotFound.
func (l *Ledger) GetOwner(ctx context.Context, id OwnerID) (*Owner, error) {
	o, err := l.store.GetOwner(ctx, l.conv.Kind(), id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, id)
	}
	return o, nil
}

// UpdateOwner changes contact fields. The balance cannot be set through this
// path; only the projector writes it. Holds the owner lock so the
// read-modify-write below cannot interleave with a posting's balance update.
func (l *Ledger) UpdateOwner(ctx context.Context, id OwnerID, upd OwnerUpdate) (*Owner, error) {
	lock := l.ownerLock(id)
	lock.Lock()
	defer lock.Unlock()

	o, err := l.GetOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		o.Name = *upd.Name
	}
	if upd.Phone != nil {
		o.Phone = *upd.Phone
	}
	if upd.Email != nil {
		o.Email = *upd.Email
	}
	if upd.Whatsapp != nil {
		o.Whatsapp = *upd.Whatsapp
	}
	if upd.Address != nil {
		o.Address = *upd.Address
	}
	if err := l.store.UpdateOwner(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOwner removes an owner record. Entries are not cascaded; callers
// that need a clean ledger should delete entries first.
func (l *Ledger) DeleteOwner(ctx context.Context, id OwnerID) (*Owner, error) {
	o, err := l.GetOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.store.DeleteOwner(ctx, l.conv.Kind(), id); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOwners returns every owner of this kind.
func (l *Ledger) ListOwners(ctx context.Context) ([]Owner, error) {
	return l.store.ListOwners(ctx, l.conv.Kind())
}
