/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the POS frontend

ROUTE GROUPS:
  /api/customers/*        Customer management and import
  /api/customer-ledger/*  Customer ledger entries
  /api/suppliers/*        Supplier management and import
  /api/supplier-ledger/*  Supplier ledger entries

  Both subsystems mount the same handler set; see handlers.go.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			mountOwnerRoutes(r, h.Customers)
		})
		r.Route("/customer-ledger", func(r chi.Router) {
			mountLedgerRoutes(r, h.Customers)
		})

		r.Route("/suppliers", func(r chi.Router) {
			mountOwnerRoutes(r, h.Suppliers)
		})
		r.Route("/supplier-ledger", func(r chi.Router) {
			mountLedgerRoutes(r, h.Suppliers)
		})
	})

	return r
}

func mountOwnerRoutes(r chi.Router, rs *Resource) {
	r.Get("/", rs.ListOwners)
	r.Post("/", rs.CreateOwner)
	r.Post("/import", rs.ImportOwners)
	r.Get("/{id}", rs.GetOwner)
	r.Put("/{id}", rs.UpdateOwner)
	r.Delete("/{id}", rs.DeleteOwner)
}

func mountLedgerRoutes(r chi.Router, rs *Resource) {
	r.Get("/", rs.ListEntries)
	r.Post("/", rs.CreateEntry)
	r.Get("/summary", rs.GetSummary)
	r.Delete("/reference/{referenceId}", rs.DeleteReference)
	r.Get("/{id}", rs.GetEntry)
	r.Put("/{id}", rs.UpdateEntry)
	r.Delete("/{id}", rs.DeleteEntry)
}
