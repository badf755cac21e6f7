// internal/order/handler.go
package order

import (
	"errors"
	"net/http"

	"orderrelay/internal/middleware"
	"orderrelay/internal/upstream"
)

type Handler struct {
	guard *Guard
}

func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

type submitResponse struct {
	OK      bool    `json:"ok"`
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
}

// Submit serves POST /api/order.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := middleware.ParseJSONBody(r, &sub); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_order")
		return
	}

	result, err := h.guard.Submit(r.Context(), sub)
	if err != nil {
		var invalid *InvalidOrderError
		if errors.As(err, &invalid) {
			middleware.WriteError(w, http.StatusBadRequest, "invalid_order")
			return
		}
		status, code := upstream.Classify(err)
		middleware.WriteError(w, status, code)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, submitResponse{
		OK:      true,
		OrderID: result.OrderID,
		Total:   result.Total,
	})
}
