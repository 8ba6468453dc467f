/*
handlers.go - HTTP API handlers for the ledger system

PURPOSE:
  Exposes the customer and supplier ledgers via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS (customer side; supplier side is the mirror image):
  Customers:
    GET    /api/customers                   List customers with balances
    POST   /api/customers                   Create customer
    POST   /api/customers/import            Bulk import with opening balances
    GET    /api/customers/{id}              Get customer
    PUT    /api/customers/{id}              Update customer contact fields
    DELETE /api/customers/{id}              Delete customer

  Ledger:
    GET    /api/customer-ledger             Paged/filtered entry listing
    POST   /api/customer-ledger             Post a manual entry
    GET    /api/customer-ledger/summary     Debit/credit totals for one customer
    GET    /api/customer-ledger/{id}        Get entry
    PUT    /api/customer-ledger/{id}        Update descriptive fields
    DELETE /api/customer-ledger/{id}        Delete entry (recalculates downstream)
    DELETE /api/customer-ledger/reference/{referenceId}  Delete a document's group

ARCHITECTURE:
  Both subsystems expose identical routes, so the handlers are written once
  against the generic engine (Resource) and instantiated twice. The only
  differences are the URL prefix and the owner query parameter name.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Owner or entry not found
  - 409: Duplicate phone number
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ahtshamyou/jhulelal/customers"
	"github.com/ahtshamyou/jhulelal/ledger"
	"github.com/ahtshamyou/jhulelal/suppliers"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Customers *Resource
	Suppliers *Resource
	Log       *zap.Logger
}

// NewHandler creates a new handler over the two ledger services.
func NewHandler(c *customers.Service, s *suppliers.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Customers: &Resource{ledger: c.Ledger, ownerParam: "customerId", log: log},
		Suppliers: &Resource{ledger: s.Ledger, ownerParam: "supplierId", log: log},
		Log:       log,
	}
}

// Resource is one subsystem's handler set. The same methods serve both
// customers and suppliers; the engine behind them carries the convention.
type Resource struct {
	ledger     *ledger.Ledger
	ownerParam string
	log        *zap.Logger
}

// =============================================================================
// OWNER HANDLERS
// =============================================================================

// ListOwners returns owners with balances and last transaction dates. A
// "search" parameter filters by name or phone substring; when "page" or
// "limit" is present the result is wrapped in the pagination envelope,
// otherwise the full array is returned.
func (rs *Resource) ListOwners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	balances, err := rs.ledger.OwnersWithBalances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	if search := strings.ToLower(q.Get("search")); search != "" {
		filtered := balances[:0]
		for _, b := range balances {
			if strings.Contains(strings.ToLower(b.Name), search) ||
				strings.Contains(b.Phone, search) {
				filtered = append(filtered, b)
			}
		}
		balances = filtered
	}

	if q.Get("page") == "" && q.Get("limit") == "" {
		dtos := make([]OwnerBalanceDTO, len(balances))
		for i, b := range balances {
			dtos[i] = toOwnerBalanceDTO(b)
		}
		writeJSON(w, http.StatusOK, dtos)
		return
	}

	page, limit := 1, 10
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
	}

	total := len(balances)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	dtos := make([]OwnerBalanceDTO, 0, end-start)
	for _, b := range balances[start:end] {
		dtos = append(dtos, toOwnerBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, OwnerPageDTO{
		Results:      dtos,
		Page:         page,
		Limit:        limit,
		TotalPages:   (total + limit - 1) / limit,
		TotalResults: total,
	})
}

// GetOwner returns a single owner.
func (rs *Resource) GetOwner(w http.ResponseWriter, r *http.Request) {
	id := ledger.OwnerID(chi.URLParam(r, "id"))

	o, err := rs.ledger.GetOwner(r.Context(), id)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to get record")
		return
	}
	writeJSON(w, http.StatusOK, toOwnerDTO(*o))
}

// CreateOwner creates a new owner.
func (rs *Resource) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req CreateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	o, err := rs.ledger.CreateOwner(r.Context(), ledger.Owner{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
		Address:  req.Address,
	})
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to create record")
		return
	}
	writeJSON(w, http.StatusCreated, toOwnerDTO(*o))
}

// UpdateOwner updates contact fields.
func (rs *Resource) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	id := ledger.OwnerID(chi.URLParam(r, "id"))

	var req UpdateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	o, err := rs.ledger.UpdateOwner(r.Context(), id, ledger.OwnerUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
		Address:  req.Address,
	})
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to update record")
		return
	}
	writeJSON(w, http.StatusOK, toOwnerDTO(*o))
}

// DeleteOwner removes an owner record.
func (rs *Resource) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	id := ledger.OwnerID(chi.URLParam(r, "id"))

	o, err := rs.ledger.DeleteOwner(r.Context(), id)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to delete record")
		return
	}
	writeJSON(w, http.StatusOK, toOwnerDTO(*o))
}

// ImportOwners bulk-imports owners with opening balances. Row failures do
// not fail the request; they are reported per row in the response.
func (rs *Resource) ImportOwners(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "No rows to import", nil)
		return
	}

	rows := make([]ledger.OwnerImport, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = ledger.OwnerImport{
			Name:     row.Name,
			Email:    row.Email,
			Phone:    row.Phone,
			Whatsapp: row.Whatsapp,
			Address:  row.Address,
			Balance:  decimal.NewFromFloat(row.Balance),
		}
	}

	result, err := rs.ledger.ImportOwners(r.Context(), rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import records", err)
		return
	}

	writeJSON(w, http.StatusCreated, ImportResultDTO{
		InsertedCount: result.InsertedCount,
		Owners:        toOwnerDTOs(result.Owners),
		Errors:        result.Errors,
	})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns a filtered, paginated entry listing.
func (rs *Resource) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := ledger.Filter{
		OwnerID: ledger.OwnerID(q.Get(rs.ownerParam)),
		Type:    ledger.EntryType(q.Get("type")),
		Search:  q.Get("search"),
		SortBy:  q.Get("sortBy"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = limit
	}
	if from := q.Get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		f.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		f.To = &t
	}

	page, err := rs.ledger.Entries(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, PageDTO{
		Results:      toEntryDTOs(page.Results),
		Page:         page.Page,
		Limit:        page.Limit,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	})
}

// CreateEntry posts a manual ledger entry.
func (rs *Resource) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "Owner id is required", nil)
		return
	}
	if req.Debit < 0 || req.Credit < 0 {
		writeError(w, http.StatusBadRequest, "Amounts must not be negative", nil)
		return
	}

	txDate := time.Now().UTC()
	if req.TransactionDate != "" {
		t, err := parseDate(req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction date", err)
			return
		}
		txDate = t
	}

	entryType := ledger.EntryType(req.Type)
	if entryType == "" {
		entryType = ledger.TxAdjustment
	}

	entry, err := rs.ledger.CreateEntry(r.Context(), ledger.NewEntry{
		OwnerID:         ledger.OwnerID(req.OwnerID),
		Type:            entryType,
		TransactionDate: txDate,
		Debit:           decimal.NewFromFloat(req.Debit),
		Credit:          decimal.NewFromFloat(req.Credit),
		Reference:       req.Reference,
		ReferenceID:     req.ReferenceID,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Description:     req.Description,
	})
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to create entry")
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// GetEntry returns a single entry with its owner.
func (rs *Resource) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))

	entry, err := rs.ledger.GetEntry(r.Context(), id)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to get entry")
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// UpdateEntry changes descriptive fields. Amounts are immutable; a request
// carrying debit/credit is rejected by shape (fields are absent from the DTO).
func (rs *Resource) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := ledger.EntryUpdate{
		Reference:     req.Reference,
		Description:   req.Description,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	}
	if req.TransactionDate != nil {
		t, err := parseDate(*req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction date", err)
			return
		}
		upd.TransactionDate = &t
	}

	entry, err := rs.ledger.UpdateEntry(r.Context(), id, upd)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to update entry")
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// DeleteEntry removes an entry and recalculates downstream balances.
func (rs *Resource) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))

	entry, err := rs.ledger.DeleteEntry(r.Context(), id)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to delete entry")
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// DeleteReference tears down every entry posted for a business document.
func (rs *Resource) DeleteReference(w http.ResponseWriter, r *http.Request) {
	referenceID := chi.URLParam(r, "referenceId")

	if err := rs.ledger.DeleteReference(r.Context(), referenceID); err != nil {
		rs.writeLedgerError(w, err, "Failed to delete reference entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetSummary returns the full-scan debit/credit totals for one owner.
func (rs *Resource) GetSummary(w http.ResponseWriter, r *http.Request) {
	ownerID := ledger.OwnerID(r.URL.Query().Get(rs.ownerParam))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "Missing "+rs.ownerParam+" parameter", nil)
		return
	}

	summary, err := rs.ledger.Summary(r.Context(), ownerID)
	if err != nil {
		rs.writeLedgerError(w, err, "Failed to compute summary")
		return
	}

	totalDebit, _ := summary.TotalDebit.Float64()
	totalCredit, _ := summary.TotalCredit.Float64()
	currentBalance, _ := summary.CurrentBalance.Float64()
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalDebit:       totalDebit,
		TotalCredit:      totalCredit,
		CurrentBalance:   currentBalance,
		TransactionCount: summary.TransactionCount,
	})
}

// =============================================================================
// ERROR MAPPING AND JSON HELPERS
// =============================================================================

// writeLedgerError maps domain errors onto HTTP statuses.
func (rs *Resource) writeLedgerError(w http.ResponseWriter, err error, message string) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrDuplicateOwner):
		writeError(w, http.StatusConflict, message, err)
	default:
		rs.log.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
