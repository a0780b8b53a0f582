package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ledgerlite/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the application facade and the chi router.
type Handler struct {
	app       *app.App
	jwtSecret string
	uploadDir string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(a *app.App, allowedOrigins, jwtSecret, uploadDir string) http.Handler {
	h := &Handler{app: a, jwtSecret: jwtSecret, uploadDir: uploadDir}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Post("/api/auth/signup", h.signup)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
	})

	// ── Uploaded receipts served from disk ───────────────────────────────────
	fileServer := http.FileServer(http.Dir(uploadDir))
	r.Get("/uploads/receipts/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/uploads/receipts", fileServer).ServeHTTP(w, req)
	})

	// ── Protected API routes ─────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Receipt upload: multipart, its own 10 MB cap inside the handler.
		r.Post("/api/uploads/receipts", h.uploadReceipt)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			// Customers & vendors
			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/customers/{id}", h.getCustomer)
			r.Put("/api/customers/{id}", h.updateCustomer)
			r.Delete("/api/customers/{id}", h.deleteCustomer)
			r.Get("/api/vendors", h.listVendors)
			r.Post("/api/vendors", h.createVendor)
			r.Get("/api/vendors/{id}", h.getVendor)
			r.Put("/api/vendors/{id}", h.updateVendor)
			r.Delete("/api/vendors/{id}", h.deleteVendor)

			// Products & chart of accounts
			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Get("/api/products/{id}", h.getProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)
			r.Get("/api/accounts", h.listAccounts)
			r.Post("/api/accounts", h.createAccount)
			r.Get("/api/accounts/{id}", h.getAccount)
			r.Put("/api/accounts/{id}", h.updateAccount)
			r.Delete("/api/accounts/{id}", h.deleteAccount)

			// Invoices
			r.Get("/api/invoices", h.listInvoices)
			r.Post("/api/invoices", h.createInvoice)
			r.Get("/api/invoices/{id}", h.getInvoice)
			r.Put("/api/invoices/{id}", h.updateInvoice)
			r.Delete("/api/invoices/{id}", h.deleteInvoice)
			r.Post("/api/invoices/{id}/status", h.setInvoiceStatus)
			r.Post("/api/invoices/{id}/payments", h.recordInvoicePayment)

			// Purchase orders
			r.Get("/api/purchase-orders", h.listPurchaseOrders)
			r.Post("/api/purchase-orders", h.createPurchaseOrder)
			r.Get("/api/purchase-orders/{id}", h.getPurchaseOrder)
			r.Put("/api/purchase-orders/{id}", h.updatePurchaseOrder)
			r.Delete("/api/purchase-orders/{id}", h.deletePurchaseOrder)
			r.Post("/api/purchase-orders/{id}/status", h.setPurchaseOrderStatus)
			r.Post("/api/purchase-orders/{id}/receive", h.receivePurchaseOrder)

			// Expenses
			r.Get("/api/expenses", h.listExpenses)
			r.Post("/api/expenses", h.createExpense)
			r.Get("/api/expenses/{id}", h.getExpense)
			r.Put("/api/expenses/{id}", h.updateExpense)
			r.Delete("/api/expenses/{id}", h.deleteExpense)

			// Reports
			r.Get("/api/reports/receivables", h.reportReceivables)
			r.Get("/api/reports/expenses-by-month", h.reportExpensesByMonth)
			r.Get("/api/reports/commitments", h.reportCommitments)
			r.Get("/api/reports/dashboard", h.reportDashboard)

			// AI invoice drafting
			r.Post("/api/ai/draft-invoice", h.draftInvoice)

			// Admin: user & role management
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Get("/api/users", h.listUsers)
				r.Put("/api/users/{id}/role", h.replaceUserRole)
			})
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// urlID extracts the {id} URL parameter as an int.
func urlID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id in URL")
	}
	return id, nil
}

// decodeJSON decodes the request body into v, writing an error response
// and returning false on failure. Returns HTTP 413 when the body exceeds
// the RequestBodyLimit cap; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
