package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/eventlog"
	"github.com/agent-bridge/bridge/internal/presence"
)

const (
	defaultRequestTimeout  = 10 * time.Second
	presenceRequestTimeout = 2 * time.Second
)

// BridgeClient is the coordinator's HTTP client for the bridge server's
// event API. Every method applies its own request timeout; callers
// supply ctx for cancellation only.
type BridgeClient struct {
	baseURL string
	http    *http.Client
}

// NewBridgeClient returns a client pointed at baseURL.
func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{baseURL: baseURL, http: &http.Client{}}
}

func (c *BridgeClient) do(ctx context.Context, timeout time.Duration, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListThreads returns every known thread.
func (c *BridgeClient) ListThreads(ctx context.Context) ([]eventlog.ThreadMeta, error) {
	var out struct {
		Threads []eventlog.ThreadMeta `json:"threads"`
	}
	if err := c.do(ctx, defaultRequestTimeout, http.MethodGet, "/threads", nil, &out); err != nil {
		return nil, err
	}
	return out.Threads, nil
}

// ReadEvents returns every event in thread with ts strictly greater
// than since (empty since means the full log).
func (c *BridgeClient) ReadEvents(ctx context.Context, thread, since string) ([]*event.Event, error) {
	path := "/threads/" + thread + "/events"
	if since != "" {
		path += "?since=" + since
	}
	var out struct {
		Events []*event.Event `json:"events"`
	}
	if err := c.do(ctx, defaultRequestTimeout, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// AppendEvent posts ev to thread and returns the stored, stamped
// event.
func (c *BridgeClient) AppendEvent(ctx context.Context, thread string, ev *event.Event) (*event.Event, error) {
	var out struct {
		Event *event.Event `json:"event"`
	}
	path := "/threads/" + thread + "/events"
	if err := c.do(ctx, defaultRequestTimeout, http.MethodPost, path, ev, &out); err != nil {
		return nil, err
	}
	return out.Event, nil
}

// GetPresence returns the live presence snapshot for thread.
func (c *BridgeClient) GetPresence(ctx context.Context, thread string) ([]presence.Entry, error) {
	var out struct {
		Participants []presence.Entry `json:"participants"`
	}
	path := "/threads/" + thread + "/presence"
	if err := c.do(ctx, defaultRequestTimeout, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Participants, nil
}

type postPresenceBody struct {
	From    string         `json:"from"`
	State   string         `json:"state"`
	Details map[string]any `json:"details,omitempty"`
}

// PostPresence is best-effort: callers swallow its error rather than
// surfacing a presence failure to users.
func (c *BridgeClient) PostPresence(ctx context.Context, thread, from, state string, details map[string]any) error {
	path := "/threads/" + thread + "/presence"
	body := postPresenceBody{From: from, State: state, Details: details}
	return c.do(ctx, presenceRequestTimeout, http.MethodPost, path, body, nil)
}
