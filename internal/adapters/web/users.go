package web

import (
	"net/http"

	"ledgerlite/internal/core"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Users.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"users": users})
}

// replaceUserRole swaps the target user's business role for the given one.
// The user keeps exactly one role at a time.
func (h *Handler) replaceUserRole(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Role core.Role `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Role.Valid() {
		writeError(w, r, "unknown role "+string(req.Role), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.app.Roles.ReplaceRole(r.Context(), claims.UserID, id, req.Role); err != nil {
		respondError(w, r, err)
		return
	}
	roles, err := h.app.Roles.GetRoles(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"user_id": id, "roles": roles})
}
