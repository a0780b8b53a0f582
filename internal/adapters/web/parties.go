package web

import (
	"net/http"

	"ledgerlite/internal/core"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	customers, err := h.app.Parties.ListCustomers(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"customers": customers})
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.PartyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	customer, err := h.app.Parties.CreateCustomer(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	customer, err := h.app.Parties.GetCustomer(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.PartyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	customer, err := h.app.Parties.UpdateCustomer(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Parties.DeleteCustomer(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	vendors, err := h.app.Parties.ListVendors(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"vendors": vendors})
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.PartyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	vendor, err := h.app.Parties.CreateVendor(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, vendor)
}

func (h *Handler) getVendor(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	vendor, err := h.app.Parties.GetVendor(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, vendor)
}

func (h *Handler) updateVendor(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.PartyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	vendor, err := h.app.Parties.UpdateVendor(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, vendor)
}

func (h *Handler) deleteVendor(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Parties.DeleteVendor(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
