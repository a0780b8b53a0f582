package web

import (
	"net/http"

	"ledgerlite/internal/core"
)

// maxReceiptSize caps receipt uploads at 10 MB.
const maxReceiptSize = 10 << 20

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	expenses, err := h.app.Expenses.ListExpenses(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"expenses": expenses})
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.ExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	expense, err := h.app.Expenses.CreateExpense(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, expense)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	expense, err := h.app.Expenses.GetExpense(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, expense)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.ExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	expense, err := h.app.Expenses.UpdateExpense(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Expenses.DeleteExpense(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadReceipt accepts a multipart form with one "file" field and
// returns the URL the stored receipt is served under.
func (h *Handler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, r, "invalid multipart form or file too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing file field", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.app.SaveReceipt(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]string{"url": url})
}
