/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and the API layer branch on these with errors.Is().

ERROR CATEGORIES:
  1. Not-found errors - Referenced owner or entry absent
  2. Store errors - Database-level failures (duplicates, write failures)
  3. Import errors - Per-row failures collected during bulk import

USAGE:
  if errors.Is(err, ledger.ErrEntryNotFound) {
      // surface 404 to the caller
  }

SEE ALSO:
  - ledger.go: Uses these errors
  - import.go: RowError accumulation
*/
package ledger

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOwnerNotFound is returned when a referenced customer or supplier
	// does not exist.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrEntryNotFound is returned when a referenced ledger entry does not
	// exist. Surfaced to the caller, never retried.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrDuplicateOwner is returned when an owner insert violates a
	// uniqueness constraint (e.g. same phone number for the same kind).
	ErrDuplicateOwner = errors.New("owner already exists")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing owner or entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOwnerNotFound) || errors.Is(err, ErrEntryNotFound)
}
