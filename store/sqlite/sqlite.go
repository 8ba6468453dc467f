/*
Package sqlite provides a SQLite-backed implementation of the ledger store.

PURPOSE:
  Implements ledger.Store and ledger.TxStore over SQLite. Both subsystems
  (customers and suppliers) share the same two tables, discriminated by the
  kind column.

KEY TABLES:
  owners:  Customer/supplier records with the cached balance
  entries: Ledger entries carrying their running balance

TIMESTAMP FORMAT:
  Timestamps are stored as fixed-width UTC text (nanosecond precision,
  zero-padded). RFC3339Nano drops trailing zeros, which breaks the
  lexicographic ordering the created_at comparisons rely on; the padded
  layout keeps string order equal to time order.

DECIMALS:
  Amounts are stored as TEXT via decimal.String(), never as REAL, so no
  precision is lost round-tripping.

UNIQUENESS:
  A partial unique index on (kind, phone) rejects duplicate phone numbers
  per subsystem while allowing any number of owners without a phone. The
  violation is surfaced as ledger.ErrDuplicateOwner, which bulk import
  accumulates per row.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, plus WAL mode for better crash
  recovery. WithTx holds the write lock for the whole transaction; the
  transaction view routes reads and writes through the *sql.Tx so the
  recalculation walk observes its own uncommitted deletes.

SEE ALSO:
  - ledger/store.go: Interface definitions and ordering contract
  - store/postgres: PostgreSQL implementation
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// timeLayout is fixed-width so lexicographic order on the TEXT column equals
// chronological order for UTC timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Owners (customers and suppliers, discriminated by kind)
	CREATE TABLE IF NOT EXISTS owners (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		whatsapp TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	);

	-- Phone must be unique per subsystem, but only when present.
	-- Bulk import depends on this surfacing as a row-level failure.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_kind_phone
		ON owners(kind, phone) WHERE phone <> '';

	-- Ledger entries (running balance is stored per entry)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		debit TEXT NOT NULL DEFAULT '0',
		credit TEXT NOT NULL DEFAULT '0',
		balance TEXT NOT NULL DEFAULT '0',
		reference TEXT,
		reference_id TEXT,
		payment_method TEXT,
		notes TEXT,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Recalculation walks created_at per owner (hot path)
	CREATE INDEX IF NOT EXISTS idx_entries_owner_created
		ON entries(kind, owner_id, created_at);

	-- Posting order and default query sort
	CREATE INDEX IF NOT EXISTS idx_entries_owner_txdate
		ON entries(kind, owner_id, transaction_date DESC, created_at DESC);

	-- Reference-group lookups (invoice/purchase reconciliation)
	CREATE INDEX IF NOT EXISTS idx_entries_reference
		ON entries(kind, reference_id) WHERE reference_id IS NOT NULL;

	-- Type filtering on the query path
	CREATE INDEX IF NOT EXISTS idx_entries_type
		ON entries(kind, tx_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every operation can run
// either standalone or inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// OWNERS
// =============================================================================

func (s *Store) InsertOwner(ctx context.Context, o ledger.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertOwner(ctx, s.db, o)
}

func (s *Store) insertOwner(ctx context.Context, db dbtx, o ledger.Owner) error {
	query := `
		INSERT INTO owners (kind, id, name, phone, email, whatsapp, address, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		o.Kind, o.ID, o.Name, o.Phone, o.Email, o.Whatsapp, o.Address,
		o.Balance.String(),
		o.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateOwner, o.Phone)
		}
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

func (s *Store) GetOwner(ctx context.Context, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getOwner(ctx, s.db, kind, id)
}

func (s *Store) getOwner(ctx context.Context, db dbtx, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	row := db.QueryRowContext(ctx,
		`SELECT kind, id, name, phone, email, whatsapp, address, balance, created_at
		 FROM owners WHERE kind = ? AND id = ?`,
		kind, id,
	)

	o, err := scanOwner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) UpdateOwner(ctx context.Context, o ledger.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE owners
		SET name = ?, phone = ?, email = ?, whatsapp = ?, address = ?
		WHERE kind = ? AND id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		o.Name, o.Phone, o.Email, o.Whatsapp, o.Address, o.Kind, o.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateOwner, o.Phone)
		}
		return fmt.Errorf("failed to update owner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrOwnerNotFound, o.ID)
	}
	return nil
}

func (s *Store) DeleteOwner(ctx context.Context, kind string, id ledger.OwnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM owners WHERE kind = ? AND id = ?", kind, id)
	return err
}

func (s *Store) ListOwners(ctx context.Context, kind string) ([]ledger.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, id, name, phone, email, whatsapp, address, balance, created_at
		 FROM owners WHERE kind = ? ORDER BY name`,
		kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []ledger.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, *o)
	}
	return owners, rows.Err()
}

func (s *Store) SetOwnerBalance(ctx context.Context, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setOwnerBalance(ctx, s.db, kind, id, balance)
}

func (s *Store) setOwnerBalance(ctx context.Context, db dbtx, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	_, err := db.ExecContext(ctx,
		"UPDATE owners SET balance = ? WHERE kind = ? AND id = ?",
		balance.String(), kind, id,
	)
	return err
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) InsertEntry(ctx context.Context, kind string, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEntry(ctx, s.db, kind, e)
}

func (s *Store) insertEntry(ctx context.Context, db dbtx, kind string, e ledger.Entry) error {
	query := `
		INSERT INTO entries
		(id, kind, owner_id, tx_type, transaction_date, debit, credit, balance,
		 reference, reference_id, payment_method, notes, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		e.ID, kind, e.OwnerID, e.Type,
		e.TransactionDate.UTC().Format(timeLayout),
		e.Debit.String(), e.Credit.String(), e.Balance.String(),
		nullString(e.Reference),
		nullString(e.ReferenceID),
		nullString(e.PaymentMethod),
		nullString(e.Notes),
		nullString(e.Description),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *Store) InsertEntries(ctx context.Context, kind string, entries []ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, e := range entries {
		if err := s.insertEntry(ctx, sqlTx, kind, e); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

func (s *Store) GetEntry(ctx context.Context, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEntry(ctx, s.db, kind, id)
}

func (s *Store) getEntry(ctx context.Context, db dbtx, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+" WHERE kind = ? AND id = ?", kind, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) UpdateEntry(ctx context.Context, kind string, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE entries
		SET reference = ?, description = ?, notes = ?, payment_method = ?, transaction_date = ?
		WHERE kind = ? AND id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		nullString(e.Reference),
		nullString(e.Description),
		nullString(e.Notes),
		nullString(e.PaymentMethod),
		e.TransactionDate.UTC().Format(timeLayout),
		kind, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, e.ID)
	}
	return nil
}

func (s *Store) SetEntryBalance(ctx context.Context, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setEntryBalance(ctx, s.db, kind, id, balance)
}

func (s *Store) setEntryBalance(ctx context.Context, db dbtx, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	res, err := db.ExecContext(ctx,
		"UPDATE entries SET balance = ? WHERE kind = ? AND id = ?",
		balance.String(), kind, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
	}
	return nil
}

func (s *Store) RemoveEntry(ctx context.Context, kind string, id ledger.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeEntry(ctx, s.db, kind, id)
}

func (s *Store) removeEntry(ctx context.Context, db dbtx, kind string, id ledger.EntryID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM entries WHERE kind = ? AND id = ?", kind, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
	}
	return nil
}

// =============================================================================
// ORDERED LOOKUPS (projector hot path)
// =============================================================================

func (s *Store) LastEntry(ctx context.Context, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastEntry(ctx, s.db, kind, owner)
}

func (s *Store) lastEntry(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = ? AND owner_id = ?
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT 1`,
		kind, owner)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) PrevEntry(ctx context.Context, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prevEntry(ctx, s.db, kind, owner, createdBefore)
}

func (s *Store) prevEntry(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = ? AND owner_id = ? AND created_at < ?
		ORDER BY created_at DESC
		LIMIT 1`,
		kind, owner, createdBefore.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) EntriesAfter(ctx context.Context, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesAfter(ctx, s.db, kind, owner, createdAfter)
}

func (s *Store) entriesAfter(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	return s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = ? AND owner_id = ? AND created_at > ?
		ORDER BY created_at ASC`,
		kind, owner, createdAfter.UTC().Format(timeLayout))
}

func (s *Store) EntriesByOwner(ctx context.Context, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, s.db,
		selectEntries+`
		WHERE kind = ? AND owner_id = ?
		ORDER BY transaction_date ASC, created_at ASC`,
		kind, owner)
}

func (s *Store) EntriesByReference(ctx context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesByReference(ctx, s.db, kind, referenceID)
}

func (s *Store) entriesByReference(ctx context.Context, db dbtx, kind string, referenceID string) ([]ledger.Entry, error) {
	return s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = ? AND reference_id = ?
		ORDER BY transaction_date ASC`,
		kind, referenceID)
}

func (s *Store) LastTransactionDate(ctx context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dateStr sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(transaction_date) FROM entries WHERE kind = ? AND owner_id = ?",
		kind, owner,
	).Scan(&dateStr)
	if err != nil {
		return nil, err
	}
	if !dateStr.Valid {
		return nil, nil
	}

	t, err := time.Parse(timeLayout, dateStr.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction date: %w", err)
	}
	return &t, nil
}

// =============================================================================
// FILTERED QUERY (listing path)
// =============================================================================

func (s *Store) QueryEntries(ctx context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"kind = ?"}
	args := []any{kind}

	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Type != "" {
		where = append(where, "tx_type = ?")
		args = append(args, f.Type)
	}
	if f.From != nil {
		where = append(where, "transaction_date >= ?")
		args = append(args, f.From.UTC().Format(timeLayout))
	}
	if f.To != nil {
		where = append(where, "transaction_date <= ?")
		args = append(args, f.To.UTC().Format(timeLayout))
	}
	if f.Search != "" {
		where = append(where, "(reference LIKE ? OR description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE "+whereClause, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		selectEntries, whereClause, orderClause(f.SortBy))
	args = append(args, limit, (page-1)*limit)

	entries, err := s.queryEntries(ctx, s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// orderClause maps a "field:direction" sort parameter onto a SQL ORDER BY.
// Only known fields are accepted; anything else falls back to the default so
// user input never reaches the SQL string.
func orderClause(sortBy string) string {
	field, dir := "transaction_date", "DESC"

	parts := strings.SplitN(sortBy, ":", 2)
	switch parts[0] {
	case "createdAt":
		field = "created_at"
	case "transactionDate", "":
	default:
	}
	if len(parts) == 2 && parts[1] == "asc" {
		dir = "ASC"
	}

	if field == "created_at" {
		return fmt.Sprintf("created_at %s", dir)
	}
	return fmt.Sprintf("transaction_date %s, created_at %s", dir, dir)
}

// =============================================================================
// SCANNING
// =============================================================================

const selectEntries = `
	SELECT id, owner_id, tx_type, transaction_date, debit, credit, balance,
	       reference, reference_id, payment_method, notes, description, created_at
	FROM entries`

func (s *Store) queryEntries(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e               ledger.Entry
		transactionDate string
		debit           string
		credit          string
		balance         string
		reference       sql.NullString
		referenceID     sql.NullString
		paymentMethod   sql.NullString
		notes           sql.NullString
		description     sql.NullString
		createdAt       string
	)

	err := rows.Scan(
		&e.ID, &e.OwnerID, &e.Type, &transactionDate, &debit, &credit, &balance,
		&reference, &referenceID, &paymentMethod, &notes, &description, &createdAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.TransactionDate, _ = time.Parse(timeLayout, transactionDate)
	e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	e.Debit = parseDecimal(debit)
	e.Credit = parseDecimal(credit)
	e.Balance = parseDecimal(balance)
	e.Reference = reference.String
	e.ReferenceID = referenceID.String
	e.PaymentMethod = paymentMethod.String
	e.Notes = notes.String
	e.Description = description.String

	return e, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (*ledger.Owner, error) {
	var (
		o         ledger.Owner
		balance   string
		createdAt string
	)

	err := row.Scan(&o.Kind, &o.ID, &o.Name, &o.Phone, &o.Email, &o.Whatsapp,
		&o.Address, &balance, &createdAt)
	if err != nil {
		return nil, err
	}

	o.Balance = parseDecimal(balance)
	o.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &o, nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The transaction
// view routes both reads and writes through the *sql.Tx so the recalculation
// walk sees its own uncommitted changes.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) InsertOwner(ctx context.Context, o ledger.Owner) error {
	return ts.parent.insertOwner(ctx, ts.tx, o)
}

func (ts *txStore) GetOwner(ctx context.Context, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	return ts.parent.getOwner(ctx, ts.tx, kind, id)
}

func (ts *txStore) UpdateOwner(ctx context.Context, o ledger.Owner) error {
	return fmt.Errorf("owner update not supported inside a store transaction")
}

func (ts *txStore) DeleteOwner(ctx context.Context, kind string, id ledger.OwnerID) error {
	return fmt.Errorf("owner delete not supported inside a store transaction")
}

func (ts *txStore) ListOwners(ctx context.Context, kind string) ([]ledger.Owner, error) {
	return nil, fmt.Errorf("owner listing not supported inside a store transaction")
}

func (ts *txStore) SetOwnerBalance(ctx context.Context, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	return ts.parent.setOwnerBalance(ctx, ts.tx, kind, id, balance)
}

func (ts *txStore) InsertEntry(ctx context.Context, kind string, e ledger.Entry) error {
	return ts.parent.insertEntry(ctx, ts.tx, kind, e)
}

func (ts *txStore) InsertEntries(ctx context.Context, kind string, entries []ledger.Entry) error {
	for _, e := range entries {
		if err := ts.parent.insertEntry(ctx, ts.tx, kind, e); err != nil {
			return err
		}
	}
	return nil
}

func (ts *txStore) GetEntry(ctx context.Context, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	return ts.parent.getEntry(ctx, ts.tx, kind, id)
}

func (ts *txStore) UpdateEntry(ctx context.Context, kind string, e ledger.Entry) error {
	return fmt.Errorf("entry update not supported inside a store transaction")
}

func (ts *txStore) SetEntryBalance(ctx context.Context, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	return ts.parent.setEntryBalance(ctx, ts.tx, kind, id, balance)
}

func (ts *txStore) RemoveEntry(ctx context.Context, kind string, id ledger.EntryID) error {
	return ts.parent.removeEntry(ctx, ts.tx, kind, id)
}

func (ts *txStore) LastEntry(ctx context.Context, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	return ts.parent.lastEntry(ctx, ts.tx, kind, owner)
}

func (ts *txStore) PrevEntry(ctx context.Context, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	return ts.parent.prevEntry(ctx, ts.tx, kind, owner, createdBefore)
}

func (ts *txStore) EntriesAfter(ctx context.Context, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	return ts.parent.entriesAfter(ctx, ts.tx, kind, owner, createdAfter)
}

func (ts *txStore) EntriesByOwner(ctx context.Context, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	return ts.parent.queryEntries(ctx, ts.tx,
		selectEntries+`
		WHERE kind = ? AND owner_id = ?
		ORDER BY transaction_date ASC, created_at ASC`,
		kind, owner)
}

func (ts *txStore) EntriesByReference(ctx context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	return ts.parent.entriesByReference(ctx, ts.tx, kind, referenceID)
}

func (ts *txStore) QueryEntries(ctx context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	return nil, 0, fmt.Errorf("filtered query not supported inside a store transaction")
}

func (ts *txStore) LastTransactionDate(ctx context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	return nil, fmt.Errorf("last transaction date not supported inside a store transaction")
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"entries", "owners"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

var (
	_ ledger.Store   = (*Store)(nil)
	_ ledger.TxStore = (*Store)(nil)
	_ ledger.Store   = (*txStore)(nil)
)
