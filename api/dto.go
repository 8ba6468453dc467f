/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Amounts cross the wire as JSON numbers (float64). Internally everything
  is decimal.Decimal; conversion happens only at this boundary.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// =============================================================================
// OWNER TYPES
// =============================================================================

// OwnerDTO represents a customer or supplier in API responses.
type OwnerDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone,omitempty"`
	Email     string  `json:"email,omitempty"`
	Whatsapp  string  `json:"whatsapp,omitempty"`
	Address   string  `json:"address,omitempty"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// OwnerBalanceDTO is the balance-listing row.
type OwnerBalanceDTO struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Phone               string  `json:"phone,omitempty"`
	Email               string  `json:"email,omitempty"`
	Balance             float64 `json:"balance"`
	LastTransactionDate *string `json:"last_transaction_date,omitempty"`
}

// OwnerPageDTO is the paginated owner listing envelope, returned when the
// listing is called with page/limit parameters.
type OwnerPageDTO struct {
	Results      []OwnerBalanceDTO `json:"results"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// CreateOwnerRequest is the request to create a customer or supplier.
type CreateOwnerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`
	Address  string `json:"address"`
}

// UpdateOwnerRequest carries the changeable owner fields. Absent fields are
// left untouched. Balance is not accepted here; only the ledger writes it.
type UpdateOwnerRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// =============================================================================
// IMPORT TYPES
// =============================================================================

// ImportRowDTO is one spreadsheet row in a bulk import.
type ImportRowDTO struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Whatsapp string  `json:"whatsapp"`
	Address  string  `json:"address"`
	Balance  float64 `json:"balance"`
}

// ImportRequest is the bulk import request body.
type ImportRequest struct {
	Rows []ImportRowDTO `json:"rows"`
}

// ImportResultDTO reports a bulk import outcome, including per-row failures.
type ImportResultDTO struct {
	InsertedCount int               `json:"inserted_count"`
	Owners        []OwnerDTO        `json:"owners"`
	Errors        []ledger.RowError `json:"errors,omitempty"`
}

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryDTO represents a ledger entry.
type EntryDTO struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Type            string    `json:"type"`
	TransactionDate string    `json:"transaction_date"`
	Debit           float64   `json:"debit"`
	Credit          float64   `json:"credit"`
	Balance         float64   `json:"balance"`
	Reference       string    `json:"reference,omitempty"`
	ReferenceID     string    `json:"reference_id,omitempty"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       string    `json:"created_at,omitempty"`
	Owner           *OwnerDTO `json:"owner,omitempty"`
}

// CreateEntryRequest is the request to post a manual ledger entry.
type CreateEntryRequest struct {
	OwnerID         string  `json:"owner_id"`
	Type            string  `json:"type"`
	TransactionDate string  `json:"transaction_date"`
	Debit           float64 `json:"debit"`
	Credit          float64 `json:"credit"`
	Reference       string  `json:"reference"`
	ReferenceID     string  `json:"reference_id"`
	PaymentMethod   string  `json:"payment_method"`
	Notes           string  `json:"notes"`
	Description     string  `json:"description"`
}

// UpdateEntryRequest carries the descriptive fields changeable after posting.
// Amounts and owner are not accepted; corrections go through delete+recreate.
type UpdateEntryRequest struct {
	Reference       *string `json:"reference,omitempty"`
	Description     *string `json:"description,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
	TransactionDate *string `json:"transaction_date,omitempty"`
}

// PageDTO is the paginated entry listing envelope.
type PageDTO struct {
	Results      []EntryDTO `json:"results"`
	Page         int        `json:"page"`
	Limit        int        `json:"limit"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// SummaryDTO is the full-scan aggregate for one owner.
type SummaryDTO struct {
	TotalDebit       float64 `json:"total_debit"`
	TotalCredit      float64 `json:"total_credit"`
	CurrentBalance   float64 `json:"current_balance"`
	TransactionCount int     `json:"transaction_count"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toOwnerDTO(o ledger.Owner) OwnerDTO {
	balance, _ := o.Balance.Float64()
	dto := OwnerDTO{
		ID:       string(o.ID),
		Name:     o.Name,
		Phone:    o.Phone,
		Email:    o.Email,
		Whatsapp: o.Whatsapp,
		Address:  o.Address,
		Balance:  balance,
	}
	if !o.CreatedAt.IsZero() {
		dto.CreatedAt = o.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toOwnerDTOs(owners []ledger.Owner) []OwnerDTO {
	dtos := make([]OwnerDTO, len(owners))
	for i, o := range owners {
		dtos[i] = toOwnerDTO(o)
	}
	return dtos
}

func toOwnerBalanceDTO(b ledger.OwnerBalance) OwnerBalanceDTO {
	balance, _ := b.Balance.Float64()
	dto := OwnerBalanceDTO{
		ID:      string(b.ID),
		Name:    b.Name,
		Phone:   b.Phone,
		Email:   b.Email,
		Balance: balance,
	}
	if b.LastTransactionDate != nil {
		s := b.LastTransactionDate.Format(time.RFC3339)
		dto.LastTransactionDate = &s
	}
	return dto
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	debit, _ := e.Debit.Float64()
	credit, _ := e.Credit.Float64()
	balance, _ := e.Balance.Float64()

	dto := EntryDTO{
		ID:              string(e.ID),
		OwnerID:         string(e.OwnerID),
		Type:            string(e.Type),
		TransactionDate: e.TransactionDate.Format(time.RFC3339),
		Debit:           debit,
		Credit:          credit,
		Balance:         balance,
		Reference:       e.Reference,
		ReferenceID:     e.ReferenceID,
		PaymentMethod:   e.PaymentMethod,
		Notes:           e.Notes,
		Description:     e.Description,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.Owner != nil {
		owner := toOwnerDTO(*e.Owner)
		dto.Owner = &owner
	}
	return dto
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}
