/*
Package postgres provides a PostgreSQL-backed implementation of the ledger
store.

PURPOSE:
  Same contract as store/sqlite with the dialect differences PostgreSQL
  brings: $n placeholders, native TIMESTAMPTZ and NUMERIC columns, ILIKE
  for case-insensitive search, and unique violations detected by SQLSTATE
  23505 instead of error-string matching.

CONCURRENCY:
  No process-level mutex. PostgreSQL's own concurrency control is
  sufficient; WithTx maps straight onto a database transaction.

SEE ALSO:
  - ledger/store.go: Interface definitions and ordering contract
  - store/sqlite: The development/default backend
*/
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// Store implements ledger.TxStore using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a store over an existing database handle.
func New(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Open connects with the given DSN and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owners (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		whatsapp TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		balance NUMERIC(20, 6) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_kind_phone
		ON owners(kind, phone) WHERE phone <> '';

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		transaction_date TIMESTAMPTZ NOT NULL,
		debit NUMERIC(20, 6) NOT NULL DEFAULT 0,
		credit NUMERIC(20, 6) NOT NULL DEFAULT 0,
		balance NUMERIC(20, 6) NOT NULL DEFAULT 0,
		reference TEXT,
		reference_id TEXT,
		payment_method TEXT,
		notes TEXT,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_owner_created
		ON entries(kind, owner_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_owner_txdate
		ON entries(kind, owner_id, transaction_date DESC, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_reference
		ON entries(kind, reference_id) WHERE reference_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_entries_type
		ON entries(kind, tx_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// OWNERS
// =============================================================================

func (s *Store) InsertOwner(ctx context.Context, o ledger.Owner) error {
	return s.insertOwner(ctx, s.db, o)
}

func (s *Store) insertOwner(ctx context.Context, db dbtx, o ledger.Owner) error {
	query := `
		INSERT INTO owners (kind, id, name, phone, email, whatsapp, address, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := db.ExecContext(ctx, query,
		o.Kind, o.ID, o.Name, o.Phone, o.Email, o.Whatsapp, o.Address,
		o.Balance.String(), o.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateOwner, o.Phone)
		}
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

func (s *Store) GetOwner(ctx context.Context, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	return s.getOwner(ctx, s.db, kind, id)
}

func (s *Store) getOwner(ctx context.Context, db dbtx, kind string, id ledger.OwnerID) (*ledger.Owner, error) {
	row := db.QueryRowContext(ctx,
		`SELECT kind, id, name, phone, email, whatsapp, address, balance, created_at
		 FROM owners WHERE kind = $1 AND id = $2`,
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
	query := `
		UPDATE owners
		SET name = $1, phone = $2, email = $3, whatsapp = $4, address = $5
		WHERE kind = $6 AND id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		o.Name, o.Phone, o.Email, o.Whatsapp, o.Address, o.Kind, o.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
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
	_, err := s.db.ExecContext(ctx, "DELETE FROM owners WHERE kind = $1 AND id = $2", kind, id)
	return err
}

func (s *Store) ListOwners(ctx context.Context, kind string) ([]ledger.Owner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, id, name, phone, email, whatsapp, address, balance, created_at
		 FROM owners WHERE kind = $1 ORDER BY name`,
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
	return s.setOwnerBalance(ctx, s.db, kind, id, balance)
}

func (s *Store) setOwnerBalance(ctx context.Context, db dbtx, kind string, id ledger.OwnerID, balance decimal.Decimal) error {
	_, err := db.ExecContext(ctx,
		"UPDATE owners SET balance = $1 WHERE kind = $2 AND id = $3",
		balance.String(), kind, id,
	)
	return err
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) InsertEntry(ctx context.Context, kind string, e ledger.Entry) error {
	return s.insertEntry(ctx, s.db, kind, e)
}

func (s *Store) insertEntry(ctx context.Context, db dbtx, kind string, e ledger.Entry) error {
	query := `
		INSERT INTO entries
		(id, kind, owner_id, tx_type, transaction_date, debit, credit, balance,
		 reference, reference_id, payment_method, notes, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := db.ExecContext(ctx, query,
		e.ID, kind, e.OwnerID, e.Type, e.TransactionDate.UTC(),
		e.Debit.String(), e.Credit.String(), e.Balance.String(),
		nullString(e.Reference),
		nullString(e.ReferenceID),
		nullString(e.PaymentMethod),
		nullString(e.Notes),
		nullString(e.Description),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *Store) InsertEntries(ctx context.Context, kind string, entries []ledger.Entry) error {
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
	return s.getEntry(ctx, s.db, kind, id)
}

func (s *Store) getEntry(ctx context.Context, db dbtx, kind string, id ledger.EntryID) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+" WHERE kind = $1 AND id = $2", kind, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) UpdateEntry(ctx context.Context, kind string, e ledger.Entry) error {
	query := `
		UPDATE entries
		SET reference = $1, description = $2, notes = $3, payment_method = $4, transaction_date = $5
		WHERE kind = $6 AND id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		nullString(e.Reference),
		nullString(e.Description),
		nullString(e.Notes),
		nullString(e.PaymentMethod),
		e.TransactionDate.UTC(),
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
	return s.setEntryBalance(ctx, s.db, kind, id, balance)
}

func (s *Store) setEntryBalance(ctx context.Context, db dbtx, kind string, id ledger.EntryID, balance decimal.Decimal) error {
	res, err := db.ExecContext(ctx,
		"UPDATE entries SET balance = $1 WHERE kind = $2 AND id = $3",
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
	return s.removeEntry(ctx, s.db, kind, id)
}

func (s *Store) removeEntry(ctx context.Context, db dbtx, kind string, id ledger.EntryID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM entries WHERE kind = $1 AND id = $2", kind, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
	}
	return nil
}

// =============================================================================
// ORDERED LOOKUPS
// =============================================================================

func (s *Store) LastEntry(ctx context.Context, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	return s.lastEntry(ctx, s.db, kind, owner)
}

func (s *Store) lastEntry(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = $1 AND owner_id = $2
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
	return s.prevEntry(ctx, s.db, kind, owner, createdBefore)
}

func (s *Store) prevEntry(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID, createdBefore time.Time) (*ledger.Entry, error) {
	entries, err := s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = $1 AND owner_id = $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT 1`,
		kind, owner, createdBefore.UTC())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) EntriesAfter(ctx context.Context, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	return s.entriesAfter(ctx, s.db, kind, owner, createdAfter)
}

func (s *Store) entriesAfter(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID, createdAfter time.Time) ([]ledger.Entry, error) {
	return s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = $1 AND owner_id = $2 AND created_at > $3
		ORDER BY created_at ASC`,
		kind, owner, createdAfter.UTC())
}

func (s *Store) EntriesByOwner(ctx context.Context, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	return s.entriesByOwner(ctx, s.db, kind, owner)
}

func (s *Store) entriesByOwner(ctx context.Context, db dbtx, kind string, owner ledger.OwnerID) ([]ledger.Entry, error) {
	return s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = $1 AND owner_id = $2
		ORDER BY transaction_date ASC, created_at ASC`,
		kind, owner)
}

func (s *Store) EntriesByReference(ctx context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	return s.entriesByReference(ctx, s.db, kind, referenceID)
}

func (s *Store) entriesByReference(ctx context.Context, db dbtx, kind string, referenceID string) ([]ledger.Entry, error) {
	return s.queryEntries(ctx, db,
		selectEntries+`
		WHERE kind = $1 AND reference_id = $2
		ORDER BY transaction_date ASC`,
		kind, referenceID)
}

func (s *Store) LastTransactionDate(ctx context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	var last pq.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(transaction_date) FROM entries WHERE kind = $1 AND owner_id = $2",
		kind, owner,
	).Scan(&last)
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time
	return &t, nil
}

// =============================================================================
// FILTERED QUERY
// =============================================================================

func (s *Store) QueryEntries(ctx context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	where := []string{"kind = $1"}
	args := []any{kind}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != "" {
		where = append(where, "owner_id = "+arg(f.OwnerID))
	}
	if f.Type != "" {
		where = append(where, "tx_type = "+arg(f.Type))
	}
	if f.From != nil {
		where = append(where, "transaction_date >= "+arg(f.From.UTC()))
	}
	if f.To != nil {
		where = append(where, "transaction_date <= "+arg(f.To.UTC()))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, fmt.Sprintf("(reference ILIKE %s OR description ILIKE %s)",
			arg(pattern), arg(pattern)))
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

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		selectEntries, whereClause, orderClause(f.SortBy),
		arg(limit), arg((page-1)*limit))

	entries, err := s.queryEntries(ctx, s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// orderClause accepts only known sort fields so user input never reaches the
// SQL string.
func orderClause(sortBy string) string {
	field, dir := "transaction_date", "DESC"

	parts := strings.SplitN(sortBy, ":", 2)
	if parts[0] == "createdAt" {
		field = "created_at"
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
		e             ledger.Entry
		debit         string
		credit        string
		balance       string
		reference     sql.NullString
		referenceID   sql.NullString
		paymentMethod sql.NullString
		notes         sql.NullString
		description   sql.NullString
	)

	err := rows.Scan(
		&e.ID, &e.OwnerID, &e.Type, &e.TransactionDate, &debit, &credit, &balance,
		&reference, &referenceID, &paymentMethod, &notes, &description, &e.CreatedAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (*ledger.Owner, error) {
	var (
		o       ledger.Owner
		balance string
	)

	err := row.Scan(&o.Kind, &o.ID, &o.Name, &o.Phone, &o.Email, &o.Whatsapp,
		&o.Address, &balance, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	o.Balance = parseDecimal(balance)
	return &o, nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
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
	return errors.New("owner update not supported inside a store transaction")
}

func (ts *txStore) DeleteOwner(ctx context.Context, kind string, id ledger.OwnerID) error {
	return errors.New("owner delete not supported inside a store transaction")
}

func (ts *txStore) ListOwners(ctx context.Context, kind string) ([]ledger.Owner, error) {
	return nil, errors.New("owner listing not supported inside a store transaction")
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
	return errors.New("entry update not supported inside a store transaction")
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
	return ts.parent.entriesByOwner(ctx, ts.tx, kind, owner)
}

func (ts *txStore) EntriesByReference(ctx context.Context, kind string, referenceID string) ([]ledger.Entry, error) {
	return ts.parent.entriesByReference(ctx, ts.tx, kind, referenceID)
}

func (ts *txStore) QueryEntries(ctx context.Context, kind string, f ledger.Filter) ([]ledger.Entry, int, error) {
	return nil, 0, errors.New("filtered query not supported inside a store transaction")
}

func (ts *txStore) LastTransactionDate(ctx context.Context, kind string, owner ledger.OwnerID) (*time.Time, error) {
	return nil, errors.New("last transaction date not supported inside a store transaction")
}

// =============================================================================
// UTILITIES
// =============================================================================

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

// isUniqueViolation reports SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var (
	_ ledger.Store   = (*Store)(nil)
	_ ledger.TxStore = (*Store)(nil)
	_ ledger.Store   = (*txStore)(nil)
)
