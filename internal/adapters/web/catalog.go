package web

import (
	"net/http"

	"ledgerlite/internal/core"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	products, err := h.app.Products.ListProducts(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"products": products})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.app.Products.CreateProduct(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	product, err := h.app.Products.GetProduct(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.app.Products.UpdateProduct(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Products.DeleteProduct(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	accounts, err := h.app.Accounts.ListAccounts(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"accounts": accounts})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.AccountInput
	if !decodeJSON(w, r, &input) {
		return
	}
	account, err := h.app.Accounts.CreateAccount(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, account)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	account, err := h.app.Accounts.GetAccount(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.AccountInput
	if !decodeJSON(w, r, &input) {
		return
	}
	account, err := h.app.Accounts.UpdateAccount(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Accounts.DeleteAccount(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
