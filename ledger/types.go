/*
Package ledger provides the running-balance ledger engine.

PURPOSE:
  This package contains owner-kind-agnostic types and algorithms for
  maintaining per-owner transaction ledgers with cumulative balances.
  Whether tracking what a customer owes the shop or what the shop owes a
  supplier, the same engine handles balance projection, downstream
  recalculation, and document reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Owner: A ledger account holder (customer or supplier) with a cached balance
  - Entry: A single ledger record carrying the running balance after itself
  - Convention: The sign convention separating the two subsystems
  - DocumentSnapshot: The totals of an originating invoice or purchase

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Audit trail: Amounts and owner are immutable once an entry is posted
  3. One asymmetry: Customer ledgers are debit-positive, supplier ledgers
     credit-positive. Everything else is shared.

SEE ALSO:
  - ledger.go: Balance projection and recalculation
  - reconcile.go: Document-driven entry groups
  - store.go: Persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type EntryID string

// =============================================================================
// ENTRY TYPES
// =============================================================================

type EntryType string

// Types shared by both subsystems. Sale/purchase and the two payment
// directions are defined by the customers and suppliers packages.
const (
	TxOpeningBalance EntryType = "opening_balance"
	TxAdjustment     EntryType = "adjustment"
)

// =============================================================================
// CONVENTION - The one structural asymmetry between the two subsystems
// =============================================================================

// Convention defines how a ledger kind maps debits and credits onto balance
// movement, and how business documents translate into entries.
//
// For customers, debit increases the balance (what the customer owes).
// For suppliers, credit increases the balance (what is owed to the supplier).
//
// Domain packages implement this:
//
//	// In customers/customers.go
//	type Convention struct{}
//	func (Convention) Kind() string        { return "customer" }
//	func (Convention) DebitPositive() bool { return true }
type Convention interface {
	// Kind returns the owner kind this convention applies to.
	Kind() string

	// DebitPositive reports whether debits increase the running balance.
	DebitPositive() bool

	// PrincipalType is the entry type posted for the document total
	// (sale for customers, purchase for suppliers).
	PrincipalType() EntryType

	// PaymentType is the entry type posted for the paid amount
	// (payment_received for customers, payment_made for suppliers).
	PaymentType() EntryType

	// PrincipalDescription renders the description for a principal entry.
	PrincipalDescription(number string) string

	// PaymentDescription renders the description for a payment entry.
	PaymentDescription(number string) string

	// PrincipalNotes renders the notes attached to a reissued principal entry.
	PrincipalNotes(doc DocumentSnapshot) string

	// PaymentNotes renders the notes attached to a payment entry.
	PaymentNotes(doc DocumentSnapshot) string
}

// =============================================================================
// OWNER - Customer or supplier record with cached balance
// =============================================================================

// Owner is a ledger account holder. Balance is the signed net position after
// the latest posted entry. It is mutated only by the Ledger; nothing else may
// write it.
type Owner struct {
	ID        OwnerID
	Kind      string
	Name      string
	Phone     string
	Email     string
	Whatsapp  string
	Address   string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// OwnerUpdate carries the owner fields callers may change. Balance is absent
// on purpose.
type OwnerUpdate struct {
	Name     *string
	Phone    *string
	Email    *string
	Whatsapp *string
	Address  *string
}

// OwnerBalance is the listing row returned by OwnersWithBalances.
type OwnerBalance struct {
	ID                  OwnerID
	Name                string
	Phone               string
	Email               string
	Balance             decimal.Decimal
	LastTransactionDate *time.Time
}

// =============================================================================
// ENTRY - A posted ledger record with its running balance
// =============================================================================

// Entry is a single ledger record. Ordering entries by
// (TransactionDate, CreatedAt) ascending, each Balance equals the previous
// entry's Balance plus this entry's signed delta, starting from zero.
//
// OwnerID, Debit and Credit are immutable once posted; corrections go through
// delete-and-recreate so every balance downstream is repaired.
type Entry struct {
	ID              EntryID
	OwnerID         OwnerID
	Type            EntryType
	TransactionDate time.Time
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Balance         decimal.Decimal
	Reference       string
	ReferenceID     string
	PaymentMethod   string
	Notes           string
	Description     string
	CreatedAt       time.Time

	// Owner is populated on query paths only; never persisted.
	Owner *Owner
}

// NewEntry is the input to Ledger.CreateEntry.
type NewEntry struct {
	OwnerID         OwnerID
	Type            EntryType
	TransactionDate time.Time
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Reference       string
	ReferenceID     string
	PaymentMethod   string
	Notes           string
	Description     string
}

// EntryUpdate carries the descriptive fields callers may change after
// posting. Amounts, owner and balance are absent on purpose.
type EntryUpdate struct {
	Reference       *string
	Description     *string
	Notes           *string
	PaymentMethod   *string
	TransactionDate *time.Time
}

// =============================================================================
// DOCUMENT SNAPSHOT - Originating invoice/purchase totals
// =============================================================================

// DocumentSnapshot is what the invoice and purchase services hand to the
// reconciler: the current totals of the business document a reference group
// was posted for.
type DocumentSnapshot struct {
	Number        string
	Date          time.Time
	Total         decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentMethod string
	ItemsCount    int
}

// =============================================================================
// SUMMARY - Full-scan aggregate, independent of the cached balance
// =============================================================================

// Summary is computed by scanning every entry for an owner. CurrentBalance is
// derived from the totals, not read from the owner cache, so it doubles as a
// consistency check.
type Summary struct {
	TotalDebit       decimal.Decimal
	TotalCredit      decimal.Decimal
	CurrentBalance   decimal.Decimal
	TransactionCount int
}

// =============================================================================
// QUERY FILTER AND PAGE
// =============================================================================

// Filter selects entries for the query path.
type Filter struct {
	OwnerID OwnerID   // zero value = all owners
	Type    EntryType // zero value = all types
	From    *time.Time
	To      *time.Time
	Search  string // case-insensitive match over reference and description
	SortBy  string // "field:asc|desc"; default "transactionDate:desc"
	Page    int    // 1-based; default 1
	Limit   int    // default 10
}

// Page is a paginated query result.
type Page struct {
	Results      []Entry
	Page         int
	Limit        int
	TotalPages   int
	TotalResults int
}
