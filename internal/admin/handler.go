// internal/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"orderrelay/internal/middleware"
	"orderrelay/internal/upstream"
)

type Handler struct {
	coordinator *Coordinator
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

type checkAdminResponse struct {
	OK      bool `json:"ok"`
	IsAdmin bool `json:"isAdmin"`
}

// CheckAdmin serves GET /api/checkAdmin?userId=. It never returns a 5xx:
// on upstream failure the envelope degrades to {ok:false, isAdmin:false}
// so admin-gated UI renders closed instead of crashing.
func (h *Handler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	h.writeAdminStatus(w, r, r.URL.Query().Get("userId"))
}

// IsAdmin serves POST /api/admins/is-admin, the body-carrying spelling some
// clients use for the same check.
func (h *Handler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteJSON(w, http.StatusOK, checkAdminResponse{OK: false, IsAdmin: false})
		return
	}
	h.writeAdminStatus(w, r, req.UserID)
}

func (h *Handler) writeAdminStatus(w http.ResponseWriter, r *http.Request, userID string) {
	isAdmin, err := h.coordinator.CheckAdmin(r.Context(), userID)
	if err != nil {
		middleware.WriteJSON(w, http.StatusOK, checkAdminResponse{OK: false, IsAdmin: false})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, checkAdminResponse{OK: true, IsAdmin: isAdmin})
}

// CheckFirstAdmin serves GET /api/checkFirstAdmin.
func (h *Handler) CheckFirstAdmin(w http.ResponseWriter, r *http.Request) {
	hasAnyAdmin, err := h.coordinator.CheckFirstAdmin(r.Context())
	if err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK          bool `json:"ok"`
		HasAnyAdmin bool `json:"hasAnyAdmin"`
	}{true, hasAnyAdmin})
}

// RegisterFirstAdmin serves POST /api/registerFirstAdmin (and its alias
// POST /api/admins/register).
func (h *Handler) RegisterFirstAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
	}
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	isAdmin, err := h.coordinator.RegisterFirstAdmin(r.Context(), req.UserID, req.DisplayName)
	if err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, checkAdminResponse{OK: true, IsAdmin: isAdmin})
}

// List serves GET /api/admins.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.coordinator.List(r.Context())
	if err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK     bool     `json:"ok"`
		Admins []Record `json:"admins"`
	}{true, admins})
}

// Add serves POST /api/admins/add.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.coordinator.Add)
}

// Remove serves POST /api/admins/remove.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.coordinator.Remove)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, targetUserID string) error) {
	var req struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.TargetUserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := op(r.Context(), req.TargetUserID); err != nil {
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{true})
}
