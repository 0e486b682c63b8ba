package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/wburn/internal/model"
	"github.com/theirongolddev/wburn/internal/store"
)

const (
	clientTimeout = 5 * time.Second
	maxBodySize   = 1 << 20 // 1 MB
	userAgent     = "wburn-client/1.0"
)

// ErrUnavailable indicates the daemon could not be reached.
var ErrUnavailable = errors.New("daemon: unavailable")

// APIError is a non-2xx answer from the daemon, carrying its error message.
// It unwraps to the matching domain error so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon: HTTP %d", e.Status)
	}
	return fmt.Sprintf("daemon: %s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return store.ErrNotFound
	case strings.HasPrefix(e.Message, model.ErrInvalidAmount.Error()):
		return model.ErrInvalidAmount
	case strings.HasPrefix(e.Message, model.ErrInvalidDate.Error()):
		return model.ErrInvalidDate
	case strings.HasPrefix(e.Message, model.ErrInvalidType.Error()):
		return model.ErrInvalidType
	}
	return nil
}

// Client talks to a running daemon's HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for addr, given as host:port or a full URL.
// Returns nil if addr is empty.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: clientTimeout},
	}
}

// Status returns the daemon's poll state and latest snapshot.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// Balance returns the current cycle's balances.
func (c *Client) Balance(ctx context.Context) (model.Balance, error) {
	var b model.Balance
	err := c.do(ctx, http.MethodGet, "/v1/balance", nil, &b)
	return b, err
}

// Events lists the log newest first, optionally narrowed to one type.
func (c *Client) Events(ctx context.Context, typ model.EventType) ([]model.UsageEvent, error) {
	path := "/v1/events"
	if typ != "" {
		path += "?type=" + url.QueryEscape(string(typ))
	}
	var events []model.UsageEvent
	err := c.do(ctx, http.MethodGet, path, nil, &events)
	return events, err
}

// CreateEvent logs a new entry through the daemon.
func (c *Client) CreateEvent(ctx context.Context, typ model.EventType, amount int, date time.Time) (model.UsageEvent, error) {
	body := map[string]any{
		"type":   string(typ),
		"amount": amount,
		"date":   model.FormatDate(date),
	}
	var e model.UsageEvent
	err := c.do(ctx, http.MethodPost, "/v1/events", body, &e)
	return e, err
}

// DeleteEvent removes the entry with the given id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/events/"+url.PathEscape(id), nil, nil)
}

// do sends a request and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("daemon: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("daemon: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}
