// internal/upstream/upstream.go
package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"orderrelay/internal/logger"
	"orderrelay/internal/signer"
)

const (
	// DefaultTimeout bounds every backend call. A call that exceeds it is
	// aborted and reported as TimeoutError; the caller may not assume the
	// backend did not apply the mutation.
	DefaultTimeout = 15 * time.Second

	// maxResponseBytes caps how much of an upstream body we read. The
	// catalog is the largest payload and stays well under this.
	maxResponseBytes = 2 << 20

	// logBodyLimit truncates upstream bodies in log lines.
	logBodyLimit = 512
)

// Client issues signed calls against the single configured backend endpoint.
// It performs no retries: blind retries against a write action would risk
// duplicate side effects on a backend with no idempotency key. Fallback
// policy, where one exists, belongs to the caller.
type Client struct {
	baseURL string
	signer  signer.Signer
	timeout time.Duration
	httpc   *http.Client

	// now is swapped in tests to pin the signed timestamp.
	now func() time.Time
}

func New(baseURL string, sg signer.Signer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		signer:  sg,
		timeout: timeout,
		httpc: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		now: time.Now,
	}
}

// Get issues a signed GET for action. All parameters, including ts and sig,
// travel as query parameters on the configured URL.
func (c *Client) Get(ctx context.Context, action, userID string, params map[string]string) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, action, userID, params, nil)
}

// Post issues a signed POST for action. The JSON body carries the action,
// userId and payload; ts/sig/userId are repeated as query parameters. The
// signature covers only the action/timestamp/userId triple, never the body.
func (c *Client) Post(ctx context.Context, action, userID string, payload map[string]interface{}) (json.RawMessage, error) {
	body := map[string]interface{}{"action": action}
	if userID != "" {
		body["userId"] = userID
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.call(ctx, http.MethodPost, action, userID, nil, body)
}

func (c *Client) call(ctx context.Context, method, action, userID string, params map[string]string, body map[string]interface{}) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, &ConfigError{Missing: "backend URL"}
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &ConfigError{Missing: "valid backend URL"}
	}

	ts := c.now().Unix()
	sig := c.signer.Sign(action, ts, userID)

	q := u.Query()
	if method == http.MethodGet {
		q.Set("action", action)
		for k, v := range params {
			q.Set(k, v)
		}
	}
	q.Set("ts", strconv.FormatInt(ts, 10))
	q.Set("sig", sig)
	if userID != "" {
		q.Set("userId", userID)
	}
	u.RawQuery = q.Encode()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Action: action, Err: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.LogError("backend %s %s timed out after %v", method, action, c.timeout)
			return nil, &TimeoutError{Action: action}
		}
		logger.LogError("backend %s %s failed: %v", method, action, err)
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.LogError("backend %s %s: reading body failed: %v", method, action, err)
		return nil, &TransportError{Action: action, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.LogError("backend %s %s returned HTTP %d: %s", method, action, resp.StatusCode, truncate(raw, logBodyLimit))
		return nil, &HTTPError{Action: action, Status: resp.StatusCode, Body: truncate(raw, logBodyLimit)}
	}

	if !json.Valid(raw) {
		logger.LogError("backend %s %s returned non-JSON body: %s", method, action, truncate(raw, logBodyLimit))
		return nil, &FormatError{Action: action}
	}
	return json.RawMessage(raw), nil
}

// DecodeAck interprets a mutation acknowledgment. Anything other than an
// explicit ok:true counts as a rejection.
func DecodeAck(action string, raw json.RawMessage) error {
	var ack struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		return &FormatError{Action: action}
	}
	if !ack.OK {
		logger.LogWarn("backend rejected %s: %s", action, ack.Error)
		return &RejectedError{Action: action, Reason: ack.Error}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
