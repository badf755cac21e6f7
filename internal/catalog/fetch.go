// internal/catalog/fetch.go
package catalog

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"

	"orderrelay/internal/logger"
	"orderrelay/internal/upstream"
)

// fetchActions is the ordered list of backend actions tried for the catalog
// listing: the current name first, then the legacy one. Attempts are
// sequential so a degraded backend is not hit twice concurrently. Both are
// read-only, which is what makes the retry safe at all.
var fetchActions = []string{"getCategories", "listCategories"}

// Service fetches and normalizes the catalog.
type Service struct {
	client *upstream.Client
}

func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// Fetch returns the normalized catalog. Each action in the fallback list is
// tried in order; the first success short-circuits. Only when every attempt
// fails is the last failure returned.
func (s *Service) Fetch(ctx context.Context) ([]Item, error) {
	var lastErr error
	for _, action := range fetchActions {
		raw, err := s.client.Get(ctx, action, "", nil)
		if err == nil {
			rows, err := extractRows(action, raw)
			if err == nil {
				return Normalize(rows), nil
			}
			lastErr = err
		} else {
			lastErr = err
		}
		logger.LogWarn("catalog action %s failed: %v", action, lastErr)
	}
	return nil, lastErr
}

// extractRows accepts either a bare JSON array or an {ok, items} envelope
// around one.
func extractRows(action string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return raw, nil
	}

	var envelope struct {
		OK    *bool           `json:"ok"`
		Items json.RawMessage `json:"items"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &upstream.FormatError{Action: action}
	}
	if envelope.OK != nil && !*envelope.OK {
		return nil, &upstream.RejectedError{Action: action, Reason: envelope.Error}
	}
	if len(envelope.Items) == 0 {
		return json.RawMessage("[]"), nil
	}
	return envelope.Items, nil
}
