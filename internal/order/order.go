// internal/order/order.go
package order

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"orderrelay/internal/journal"
	"orderrelay/internal/logger"
	"orderrelay/internal/upstream"
)

// Line is one cart line as submitted by the client. Carts live entirely in
// the client session; every submission carries the full cart.
type Line struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Submission is the inbound order payload. Any client-declared total is
// deliberately absent here: the decoder drops it, and the guard recomputes
// the total from the lines so there is one source of truth for the amount
// the client displays.
type Submission struct {
	UserID string `json:"liffUserId"`
	Items  []Line `json:"items"`
	Note   string `json:"note"`
}

// Result is the accepted-order acknowledgment: the backend-issued order id
// and the relay's own computed total (not the backend's echo).
type Result struct {
	OrderID string
	Total   float64
}

// InvalidOrderError is a local validation failure. No upstream call was
// made when it is returned.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

// Guard validates and forwards order submissions.
type Guard struct {
	client  *upstream.Client
	journal *journal.Journal
}

func NewGuard(client *upstream.Client, jr *journal.Journal) *Guard {
	return &Guard{client: client, journal: jr}
}

// Total is the server-side amount: Σ price·qty over the submitted lines,
// trusting client-reported price and qty. Validation against authoritative
// catalog prices is out of scope for the relay.
func Total(lines []Line) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.Qty)
	}
	return total
}

// Submit validates the cart, recomputes the total, forwards placeOrder and
// reconciles the backend's acknowledgment.
func (g *Guard) Submit(ctx context.Context, sub Submission) (Result, error) {
	if len(sub.Items) == 0 {
		return Result{}, &InvalidOrderError{Reason: "order has no lines"}
	}

	total := Total(sub.Items)

	raw, err := g.client.Post(ctx, "placeOrder", sub.UserID, map[string]interface{}{
		"lines": sub.Items,
		"note":  sub.Note,
		"total": total,
	})
	if err != nil {
		return Result{}, err
	}

	var ack struct {
		OK      bool   `json:"ok"`
		OrderID string `json:"orderId"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		return Result{}, &upstream.FormatError{Action: "placeOrder"}
	}
	if !ack.OK {
		logger.LogWarn("backend rejected placeOrder for %s: %s", sub.UserID, ack.Error)
		return Result{}, &upstream.RejectedError{Action: "placeOrder", Reason: ack.Error}
	}

	g.journalOrder(ctx, sub, total, ack.OrderID)
	return Result{OrderID: ack.OrderID, Total: total}, nil
}

func (g *Guard) journalOrder(ctx context.Context, sub Submission, total float64, orderID string) {
	linesJSON, err := json.Marshal(sub.Items)
	if err != nil {
		logger.LogError("journal: marshalling lines for order %s failed: %v", orderID, err)
		return
	}
	g.journal.Record(ctx, sub.UserID, string(linesJSON), sub.Note, total, orderID)
}
