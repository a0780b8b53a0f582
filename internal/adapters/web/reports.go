package web

import (
	"net/http"
	"strconv"
	"time"
)

func (h *Handler) reportReceivables(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	report, err := h.app.Reports.GetReceivables(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) reportExpensesByMonth(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	year := time.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil || y < 1900 || y > 9999 {
			writeError(w, r, "invalid year", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = y
	}

	periods, err := h.app.Reports.GetExpensesByMonth(r.Context(), claims.UserID, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"year": year, "periods": periods})
}

func (h *Handler) reportCommitments(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	report, err := h.app.Reports.GetCommitments(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) reportDashboard(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	now := time.Now()
	summary, err := h.app.Reports.GetDashboard(r.Context(), claims.UserID, now.Year(), int(now.Month()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
