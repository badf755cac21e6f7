// internal/journal/handler.go
package journal

import (
	"net/http"
	"strconv"

	"orderrelay/internal/middleware"
)

type Handler struct {
	journal *Journal
}

func NewHandler(journal *Journal) *Handler {
	return &Handler{journal: journal}
}

// Recent serves GET /api/orders/recent?limit=. Operational surface only;
// relay behavior never depends on the journal contents.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "journal_error")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK     bool    `json:"ok"`
		Orders []Entry `json:"orders"`
	}{true, entries})
}
