// internal/users/handler.go
package users

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

// Record serves GET /api/recordUser?userId=&displayName=.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.service.Record(r.Context(), userID, r.URL.Query().Get("displayName")); err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{true})
}

// List serves GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK    bool   `json:"ok"`
		Users []User `json:"users"`
	}{true, list})
}
