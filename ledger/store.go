/*
store.go - Persistence interface for owners and ledger entries

PURPOSE:
  Defines the interface between the ledger engine and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory storage.

KEY INTERFACES:
  Store:   Owner and entry persistence plus the ordered lookups the
           balance projector depends on
  TxStore: Transactional variant; the recalculation walk after a deletion
           runs inside WithTx so a mid-loop failure leaves prior state intact

ORDERING CONTRACT:
  The projector relies on two orderings and implementations must honor both:
  - LastEntry: (transaction_date DESC, created_at DESC) - posting order
  - EntriesAfter / PrevEntry: strict created_at comparison - recalculation
    order. Recalculation is keyed on created_at, not transaction_date; see
    ledger.go for why that distinction is preserved.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/postgres: PostgreSQL
  - ledger/store: In-memory for testing

SEE ALSO:
  - ledger.go: Balance projector using this interface
  - store/sqlite/sqlite.go: Concrete implementation
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Owner and entry persistence
// =============================================================================

// Store handles persistence for one or more ledger kinds. Every method takes
// the owner kind so a single backing database can hold both subsystems.
//
// Lookup methods return (nil, nil) when the record is missing; the engine
// turns that into ErrOwnerNotFound / ErrEntryNotFound where appropriate.
type Store interface {
	// Owners

	InsertOwner(ctx context.Context, o Owner) error
	GetOwner(ctx context.Context, kind string, id OwnerID) (*Owner, error)
	UpdateOwner(ctx context.Context, o Owner) error
	DeleteOwner(ctx context.Context, kind string, id OwnerID) error
	ListOwners(ctx context.Context, kind string) ([]Owner, error)

	// SetOwnerBalance overwrites the cached balance field. Only the ledger
	// engine calls this.
	SetOwnerBalance(ctx context.Context, kind string, id OwnerID, balance decimal.Decimal) error

	// Entries

	InsertEntry(ctx context.Context, kind string, e Entry) error

	// InsertEntries persists a batch in one statement/transaction. Used by
	// bulk import for opening-balance rows.
	InsertEntries(ctx context.Context, kind string, entries []Entry) error

	GetEntry(ctx context.Context, kind string, id EntryID) (*Entry, error)

	// UpdateEntry persists descriptive fields and the transaction date.
	// Implementations must not touch owner_id, debit, credit or balance.
	UpdateEntry(ctx context.Context, kind string, e Entry) error

	// SetEntryBalance rewrites a single entry's running balance during
	// recalculation.
	SetEntryBalance(ctx context.Context, kind string, id EntryID, balance decimal.Decimal) error

	RemoveEntry(ctx context.Context, kind string, id EntryID) error

	// LastEntry returns the most recently posted entry for an owner,
	// ordered by (transaction_date DESC, created_at DESC), or nil.
	LastEntry(ctx context.Context, kind string, owner OwnerID) (*Entry, error)

	// PrevEntry returns the owner's entry with the greatest created_at
	// strictly less than createdBefore, or nil.
	PrevEntry(ctx context.Context, kind string, owner OwnerID, createdBefore time.Time) (*Entry, error)

	// EntriesAfter returns the owner's entries with created_at strictly
	// greater than createdAfter, ascending by created_at.
	EntriesAfter(ctx context.Context, kind string, owner OwnerID, createdAfter time.Time) ([]Entry, error)

	// EntriesByOwner returns every entry for an owner (summary scan).
	EntriesByOwner(ctx context.Context, kind string, owner OwnerID) ([]Entry, error)

	// EntriesByReference returns every entry posted for a business
	// document, ascending by transaction_date.
	EntriesByReference(ctx context.Context, kind string, referenceID string) ([]Entry, error)

	// QueryEntries returns a page of entries matching the filter plus the
	// total match count.
	QueryEntries(ctx context.Context, kind string, f Filter) ([]Entry, int, error)

	// LastTransactionDate returns the latest transaction_date for an owner,
	// or nil if the owner has no entries.
	LastTransactionDate(ctx context.Context, kind string, owner OwnerID) (*time.Time, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic recalculation
// =============================================================================

// TxStore wraps Store with transaction support. The engine uses it to make
// the delete-target -> recompute-and-write-each -> update-owner-cache walk
// all-or-nothing. If fn returns an error the transaction is rolled back.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
