// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"orderrelay/internal/middleware"
	"orderrelay/internal/upstream"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type categoriesResponse struct {
	OK    bool   `json:"ok"`
	Items []Item `json:"items"`
}

// Categories serves GET /api/categories. An empty catalog is a valid
// response; the UI renders its own empty state from it.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Fetch(r.Context())
	if err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, categoriesResponse{OK: true, Items: items})
}
