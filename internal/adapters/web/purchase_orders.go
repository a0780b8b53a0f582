package web

import (
	"net/http"

	"ledgerlite/internal/core"
)

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var status *core.POStatus
	if q := r.URL.Query().Get("status"); q != "" {
		s := core.POStatus(q)
		if !s.Valid() {
			writeError(w, r, "unknown purchase order status "+q, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		status = &s
	}

	orders, err := h.app.PurchaseOrders.ListPurchaseOrders(r.Context(), claims.UserID, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"purchase_orders": orders})
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var input core.PurchaseOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	order, err := h.app.PurchaseOrders.CreatePurchaseOrder(r.Context(), claims.UserID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	order, err := h.app.PurchaseOrders.GetPurchaseOrder(r.Context(), claims.UserID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) updatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var input core.PurchaseOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	order, err := h.app.PurchaseOrders.UpdatePurchaseOrder(r.Context(), claims.UserID, id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) deletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.PurchaseOrders.DeletePurchaseOrder(r.Context(), claims.UserID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Status core.POStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.app.PurchaseOrders.SetStatus(r.Context(), claims.UserID, id, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) receivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Receipts []core.ReceiptLine `json:"receipts"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.app.PurchaseOrders.ReceiveItems(r.Context(), claims.UserID, id, req.Receipts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, order)
}
