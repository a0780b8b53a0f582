package web

import (
	"net/http"

	"ledgerlite/internal/core"

	"github.com/shopspring/decimal"
)

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var status *core.InvoiceStatus
	if q := r.URL.Query().Get("status"); q != "" {
		s := core.InvoiceStatus(q)
		if !s.Valid() {
			writeError(w, r, "unknown invoice status "+q, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		status = &s
	}

	invoices, err := h.app.Invoices.ListInvoices(r.Context(), claims.UserID, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"invoices": invoices})
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.InvoiceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	invoice, err := h.app.Invoices.CreateInvoice(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, invoice)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	invoice, err := h.app.Invoices.GetInvoice(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.InvoiceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	invoice, err := h.app.Invoices.UpdateInvoice(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Invoices.DeleteInvoice(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Status core.InvoiceStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	invoice, err := h.app.Invoices.SetStatus(r.Context(), claims.UserID, id, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

func (h *Handler) recordInvoicePayment(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	invoice, err := h.app.Invoices.RecordPayment(r.Context(), claims.UserID, id, req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}
