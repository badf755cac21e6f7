// internal/upstream/handler.go
package upstream

import (
	"net/http"

	"orderrelay/internal/middleware"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Ping serves GET /api/ping-backend: a signed no-op action for deploy-time
// connectivity checks. The backend's body is not forwarded; only whether
// the round trip worked.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if _, err := h.client.Get(r.Context(), "ping", "", nil); err != nil {
		status, code := Classify(err)
		middleware.WriteError(w, status, code)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{true})
}
