// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	owners  map[ownerKey]ledger.Owner
	phones  map[string]bool            // kind|phone uniqueness
	entries map[string][]ledger.Entry  // keyed by kind, insertion order
}

type ownerKey struct {
	Kind string
	ID   ledger.OwnerID
}

func NewMemory() *Memory {
	return &Memory{
		owners:  make(map[ownerKey]ledger.Owner),
		phones:  make(map[string]bool),
		entries: make(map[string][]ledger.Entry),
	}
}

func phoneKey(kind, phone string) string { return kind + "|" + phone }

// =============================================================================
// OWNERS
// =============================================================================

func (m *Memory) InsertOwner(_ context.Context, o ledger.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertOwnerLocked(o)
}

func (m *Memory) insertOwnerLocked(o ledger.Owner) error {
	k := ownerKey{Kind: o.Kind, ID: o.ID}
	if _, exists := m.owners[k]; exists {
		return fmt.Errorf("%w: id %s", ledger.ErrDuplicateOwner, o.ID)
	}
	if o.Phone != "" && m.phones[phoneKey(o.Kind, o.Phone)] {
		return fmt.Errorf("%w: phone %s", ledger.ErrDuplicateOwner, o.Phone)
	}
	m.owners[k] = o
	if o.Phone != "" {
		m.phones[phoneKey(o.Kind, o.Phone)] = true
	}
	return nil
}

func (m *Memory) GetOwner(_ context.Context, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getOwnerLocked(kind, id)
}

func (m *Memory) getOwnerLocked(kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	o, ok := m.owners[ownerKey{Kind: kind, ID: id}]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (m *Memory) UpdateOwner(_ context.Context, o ledger.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := ownerKey{Kind: o.Kind, ID: o.ID}
	old, ok := m.owners[k]
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrOwnerNotFound, o.ID)
	}
	if old.Phone != o.Phone {
		delete(m.phones, phoneKey(o.Kind, old.Phone))
		if o.Phone != "" {
			m.phones[phoneKey(o.Kind, o.Phone)] = true
		}
	}
	// Contact fields only; Balance and CreatedAt stay as stored, matching the
	// SQL backends where the update statement omits those columns.
	o.Balance = old.Balance
	o.CreatedAt = old.CreatedAt
	m.owners[k] = o
	return nil
}

func (m *Memory) DeleteOwner(_ context.Context, kind string, id ledger.OwnerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := ownerKey{Kind: kind, ID: id}
	if o, ok := m.owners[k]; ok {
		delete(m.phones, phoneKey(kind, o.Phone))
	}
	delete(m.owners, k)
	return nil
}

func (m *Memory) ListOwners(_ context.Context, kind string) ([]ledger.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var owners []ledger.Owner
	for k, o := range m.owners {
		if k.Kind == kind {
			owners = append(owners, o)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Name < owners[j].Name })
	return owners, nil
}

func (m *Memory) SetOwnerBalance(_ context.Context, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setOwnerBalanceLocked(kind, id, balance)
}

func (m *Memory) setOwnerBalanceLocked(kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	k := ownerKey{Kind: kind, ID: id}
	if o, ok := m.owners[k]; ok {
		o.Balance = balance
		m.owners[k] = o
	}
	// Missing owner is not an error here: entry creation does not validate
	// owner existence, matching the engine's documented contract.
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) InsertEntry(_ context.Context, kind string, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertEntryLocked(kind, e)
}

func (m *Memory) insertEntryLocked(kind string, e ledger.Entry) error {
	e.Owner = nil
	m.entries[kind] = append(m.entries[kind], e)
	return nil
}

func (m *Memory) InsertEntries(_ context.Context, kind string, entries []ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if err := m.insertEntryLocked(kind, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) GetEntry(_ context.Context, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEntryLocked(kind, id)
}

func (m *Memory) getEntryLocked(kind string, id ledger.EntryID) (*ledger.Entry, error) {
	for _, e := range m.entries[kind] {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdateEntry(_ context.Context, kind string, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[kind]
	for i := range list {
		if list[i].ID == e.ID {
			// Descriptive fields and transaction date only.
			list[i].Reference = e.Reference
			list[i].Description = e.Description
			list[i].Notes = e.Notes
			list[i].PaymentMethod = e.PaymentMethod
			list[i].TransactionDate = e.TransactionDate
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, e.ID)
}

func (m *Memory) SetEntryBalance(_ context.Context, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setEntryBalanceLocked(kind, id, balance)
}

func (m *Memory) setEntryBalanceLocked(kind string, id ledger.EntryID, balance decimal.Decimal) error {
	list := m.entries[kind]
	for i := range list {
		if list[i].ID == id {
			list[i].Balance = balance
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
}

func (m *Memory) RemoveEntry(_ context.Context, kind string, id ledger.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeEntryLocked(kind, id)
}

func (m *Memory) removeEntryLocked(kind string, id ledger.EntryID) error {
	list := m.entries[kind]
	for i := range list {
		if list[i].ID == id {
			m.entries[kind] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
}

func (m *Memory) LastEntry(_ context.Context, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastEntryLocked(kind, owner)
}

func (m *Memory) lastEntryLocked(kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	var last *ledger.Entry
	for i := range m.entries[kind] {
		e := m.entries[kind][i]
		if e.OwnerID != owner {
			continue
		}
		if last == nil || postedAfter(e, *last) {
			cp := e
			last = &cp
		}
	}
	return last, nil
}

// postedAfter orders by (transactionDate, createdAt).
func postedAfter(a, b ledger.Entry) bool {
	if !a.TransactionDate.Equal(b.TransactionDate) {
		return a.TransactionDate.After(b.TransactionDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (m *Memory) PrevEntry(_ context.Context, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prevEntryLocked(kind, owner, createdBefore)
}

func (m *Memory) prevEntryLocked(kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	var prev *ledger.Entry
	for i := range m.entries[kind] {
		e := m.entries[kind][i]
		if e.OwnerID != owner || !e.CreatedAt.Before(createdBefore) {
			continue
		}
		if prev == nil || e.CreatedAt.After(prev.CreatedAt) {
			cp := e
			prev = &cp
		}
	}
	return prev, nil
}

func (m *Memory) EntriesAfter(_ context.Context, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesAfterLocked(kind, owner, createdAfter)
}

func (m *Memory) entriesAfterLocked(kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	var result []ledger.Entry
	for _, e := range m.entries[kind] {
		if e.OwnerID == owner && e.CreatedAt.After(createdAfter) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) EntriesByOwner(_ context.Context, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Entry
	for _, e := range m.entries[kind] {
		if e.OwnerID == owner {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Memory) EntriesByReference(_ context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesByReferenceLocked(kind, referenceID)
}

func (m *Memory) entriesByReferenceLocked(kind string, referenceID string) ([]ledger.Entry, error) {
	var result []ledger.Entry
	for _, e := range m.entries[kind] {
		if e.ReferenceID == referenceID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TransactionDate.Before(result[j].TransactionDate)
	})
	return result, nil
}

func (m *Memory) QueryEntries(_ context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []ledger.Entry
	search := strings.ToLower(f.Search)
	for _, e := range m.entries[kind] {
		if f.OwnerID != "" && e.OwnerID != f.OwnerID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.From != nil && e.TransactionDate.Before(*f.From) {
			continue
		}
		if f.To != nil && e.TransactionDate.After(*f.To) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Reference), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		matched = append(matched, e)
	}

	field, asc := parseSort(f.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		var before bool
		switch field {
		case "createdAt":
			before = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		default: // transactionDate
			if matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
				before = matched[i].CreatedAt.Before(matched[j].CreatedAt)
			} else {
				before = matched[i].TransactionDate.Before(matched[j].TransactionDate)
			}
		}
		if asc {
			return before
		}
		return !before
	})

	total := len(matched)
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	result := make([]ledger.Entry, end-start)
	copy(result, matched[start:end])
	return result, total, nil
}

func parseSort(sortBy string) (field string, asc bool) {
	field, asc = "transactionDate", false
	if sortBy == "" {
		return
	}
	parts := strings.SplitN(sortBy, ":", 2)
	if parts[0] != "" {
		field = parts[0]
	}
	if len(parts) == 2 && parts[1] == "asc" {
		asc = true
	}
	return
}

func (m *Memory) LastTransactionDate(_ context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *time.Time
	for _, e := range m.entries[kind] {
		if e.OwnerID != owner {
			continue
		}
		if last == nil || e.TransactionDate.After(*last) {
			t := e.TransactionDate
			last = &t
		}
	}
	return last, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	view := &txMemoryView{parent: tm.Memory}

	if err := fn(view); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	owners  map[ownerKey]ledger.Owner
	phones  map[string]bool
	entries map[string][]ledger.Entry
}

func (tm *TxMemory) snapshot() memorySnapshot {
	owners := make(map[ownerKey]ledger.Owner, len(tm.owners))
	for k, v := range tm.owners {
		owners[k] = v
	}
	phones := make(map[string]bool, len(tm.phones))
	for k, v := range tm.phones {
		phones[k] = v
	}
	entries := make(map[string][]ledger.Entry, len(tm.entries))
	for k, v := range tm.entries {
		entries[k] = append([]ledger.Entry{}, v...)
	}
	return memorySnapshot{owners: owners, phones: phones, entries: entries}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.owners = s.owners
	tm.phones = s.phones
	tm.entries = s.entries
}

// txMemoryView routes the operations the recalculation walk needs through
// the parent's unlocked internals (the parent lock is held for the duration
// of WithTx). Operations outside that set delegate to the locked methods and
// must not be used inside WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) InsertOwner(_ context.Context, o ledger.Owner) error {
	return tv.parent.insertOwnerLocked(o)
}

func (tv *txMemoryView) GetOwner(_ context.Context, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	return tv.parent.getOwnerLocked(kind, id)
}

func (tv *txMemoryView) UpdateOwner(ctx context.Context, o ledger.Owner) error {
	return tv.parent.UpdateOwner(ctx, o)
}

func (tv *txMemoryView) DeleteOwner(ctx context.Context, kind string, id ledger.OwnerID) error {
	return tv.parent.DeleteOwner(ctx, kind, id)
}

func (tv *txMemoryView) ListOwners(ctx context.Context, kind string) ([]ledger.Owner, error) {
	return tv.parent.ListOwners(ctx, kind)
}

func (tv *txMemoryView) SetOwnerBalance(_ context.Context, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	return tv.parent.setOwnerBalanceLocked(kind, id, balance)
}

func (tv *txMemoryView) InsertEntry(_ context.Context, kind string, e ledger.Entry) error {
	return tv.parent.insertEntryLocked(kind, e)
}

func (tv *txMemoryView) InsertEntries(_ context.Context, kind string, entries []ledger.Entry) error {
	for _, e := range entries {
		if err := tv.parent.insertEntryLocked(kind, e); err != nil {
			return err
		}
	}
	return nil
}

func (tv *txMemoryView) GetEntry(_ context.Context, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	return tv.parent.getEntryLocked(kind, id)
}

func (tv *txMemoryView) UpdateEntry(ctx context.Context, kind string, e ledger.Entry) error {
	return tv.parent.UpdateEntry(ctx, kind, e)
}

func (tv *txMemoryView) SetEntryBalance(_ context.Context, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	return tv.parent.setEntryBalanceLocked(kind, id, balance)
}

func (tv *txMemoryView) RemoveEntry(_ context.Context, kind string, id ledger.EntryID) error {
	return tv.parent.removeEntryLocked(kind, id)
}

func (tv *txMemoryView) LastEntry(_ context.Context, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	return tv.parent.lastEntryLocked(kind, owner)
}

func (tv *txMemoryView) PrevEntry(_ context.Context, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	return tv.parent.prevEntryLocked(kind, owner, createdBefore)
}

func (tv *txMemoryView) EntriesAfter(_ context.Context, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	return tv.parent.entriesAfterLocked(kind, owner, createdAfter)
}

func (tv *txMemoryView) EntriesByOwner(ctx context.Context, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	return tv.parent.EntriesByOwner(ctx, kind, owner)
}

func (tv *txMemoryView) EntriesByReference(_ context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	return tv.parent.entriesByReferenceLocked(kind, referenceID)
}

func (tv *txMemoryView) QueryEntries(ctx context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	return tv.parent.QueryEntries(ctx, kind, f)
}

func (tv *txMemoryView) LastTransactionDate(ctx context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	return tv.parent.LastTransactionDate(ctx, kind, owner)
}

var _ ledger.TxStore = (*TxMemory)(nil)
var _ ledger.Store = (*txMemoryView)(nil)
