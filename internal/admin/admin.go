// internal/admin/admin.go
package admin

import (
	"context"

	json "github.com/goccy/go-json"

	"orderrelay/internal/logger"
	"orderrelay/internal/upstream"
)

// Record is one entry of the backend-owned admin set. The relay never
// caches the set; every read goes upstream.
type Record struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Coordinator mediates admin-set reads and the first-admin bootstrap. The
// backend is the sole authority for "only the first registration succeeds":
// duplicating that check locally would race a stale local read against the
// backend's serialized state.
type Coordinator struct {
	client *upstream.Client
}

func NewCoordinator(client *upstream.Client) *Coordinator {
	return &Coordinator{client: client}
}

// CheckAdmin reports whether userID is an administrator. The error return
// exists so callers can distinguish a degraded answer from a real one, but
// any failure means isAdmin=false: admin-gated UI fails closed.
func (c *Coordinator) CheckAdmin(ctx context.Context, userID string) (bool, error) {
	raw, err := c.client.Get(ctx, "checkAdmin", userID, nil)
	if err != nil {
		logger.LogWarn("checkAdmin for %s degraded to false: %v", userID, err)
		return false, err
	}

	var resp struct {
		OK      bool `json:"ok"`
		IsAdmin bool `json:"isAdmin"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.LogWarn("checkAdmin for %s: undecodable response, degraded to false", userID)
		return false, &upstream.FormatError{Action: "checkAdmin"}
	}
	return resp.OK && resp.IsAdmin, nil
}

// CheckFirstAdmin probes whether any administrator exists yet.
func (c *Coordinator) CheckFirstAdmin(ctx context.Context) (bool, error) {
	raw, err := c.client.Get(ctx, "checkFirstAdmin", "", nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		OK          bool `json:"ok"`
		HasAnyAdmin bool `json:"hasAnyAdmin"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, &upstream.FormatError{Action: "checkFirstAdmin"}
	}
	if !resp.OK {
		return false, &upstream.RejectedError{Action: "checkFirstAdmin"}
	}
	return resp.HasAnyAdmin, nil
}

// RegisterFirstAdmin claims the first-admin slot for userID. Callable by any
// authenticated user; the backend enforces that it only succeeds while the
// admin set is empty. On success the coordinator re-reads CheckAdmin before
// reporting, because the register acknowledgment alone is not proof the
// grant is visible to subsequent reads.
func (c *Coordinator) RegisterFirstAdmin(ctx context.Context, userID, displayName string) (bool, error) {
	raw, err := c.client.Post(ctx, "registerFirstAdmin", userID, map[string]interface{}{
		"displayName": displayName,
	})
	if err != nil {
		return false, err
	}
	if err := upstream.DecodeAck("registerFirstAdmin", raw); err != nil {
		return false, err
	}

	isAdmin, err := c.CheckAdmin(ctx, userID)
	if err != nil {
		// The registration was acknowledged; only the confirmation read
		// failed. Report the degraded answer rather than an error.
		logger.LogWarn("registerFirstAdmin for %s: confirmation read failed: %v", userID, err)
		return false, nil
	}
	return isAdmin, nil
}

// List returns the current admin set.
func (c *Coordinator) List(ctx context.Context) ([]Record, error) {
	raw, err := c.client.Get(ctx, "getAdmins", "", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OK     bool     `json:"ok"`
		Admins []Record `json:"admins"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &upstream.FormatError{Action: "getAdmins"}
	}
	if !resp.OK {
		return nil, &upstream.RejectedError{Action: "getAdmins"}
	}
	if resp.Admins == nil {
		resp.Admins = []Record{}
	}
	return resp.Admins, nil
}

// Add grants admin to targetUserID. Authorization of the caller is the
// backend's job; the relay forwards the signed call and surfaces the
// verdict unchanged.
func (c *Coordinator) Add(ctx context.Context, targetUserID string) error {
	raw, err := c.client.Post(ctx, "addAdmin", "", map[string]interface{}{
		"targetUserId": targetUserID,
	})
	if err != nil {
		return err
	}
	return upstream.DecodeAck("addAdmin", raw)
}

// Remove revokes admin from targetUserID.
func (c *Coordinator) Remove(ctx context.Context, targetUserID string) error {
	raw, err := c.client.Post(ctx, "removeAdmin", "", map[string]interface{}{
		"targetUserId": targetUserID,
	})
	if err != nil {
		return err
	}
	return upstream.DecodeAck("removeAdmin", raw)
}
