package web

import (
	"net/http"
	"strings"
)

// draftInvoice interprets a plain-language billing description into a
// structured invoice draft. The draft is never persisted; the client
// reviews it and submits a normal invoice create.
func (h *Handler) draftInvoice(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	resp, err := h.app.DraftInvoice(r.Context(), claims.UserID, req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, resp)
}
