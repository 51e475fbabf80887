// Package client talks to a running daemon over its HTTP API. The streaming
// reader applies its own per-chunk read timeout so a stalled server never
// leaves a consumer hung, and duplicated results are applied idempotently.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spectrum/internal/api"
	"spectrum/internal/convert"
	"spectrum/internal/journal"
	"spectrum/internal/review"
	"spectrum/internal/scanner"
)

const (
	defaultRequestTimeout = 30 * time.Second
	// defaultChunkTimeout bounds the wait for the next stream event, not the
	// batch as a whole. A slow decode is allowed to take minutes as long as
	// the stream stays alive between events.
	defaultChunkTimeout = 5 * time.Minute
)

// Client wraps the daemon's HTTP API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	chunkTimeout time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client for unary requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithChunkTimeout overrides the per-event read timeout for streams.
func WithChunkTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.chunkTimeout = timeout
		}
	}
}

// New constructs a client for the daemon at baseURL (e.g.
// "http://127.0.0.1:8799").
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		streamClient: &http.Client{},
		chunkTimeout: defaultChunkTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Health reports whether the daemon answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	var payload api.HealthResponse
	if err := c.getJSON(ctx, "/health", &payload); err != nil {
		return err
	}
	if payload.Status != "healthy" {
		return fmt.Errorf("daemon unhealthy: %s", payload.Status)
	}
	return nil
}

// Scan requests a source tree walk.
func (c *Client) Scan(ctx context.Context, req api.ScanRequest) (*scanner.Report, error) {
	var report scanner.Report
	if err := c.postJSON(ctx, "/api/scan", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Convert runs a batch to completion and returns the reconciled summary.
func (c *Client) Convert(ctx context.Context, req api.ConvertRequest) (*convert.BatchSummary, error) {
	var summary convert.BatchSummary
	if err := c.postJSON(ctx, "/api/convert", req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Presets lists the daemon's preset registry.
func (c *Client) Presets(ctx context.Context) (*api.PresetsResponse, error) {
	var payload api.PresetsResponse
	if err := c.getJSON(ctx, "/api/presets", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Review fetches the persisted review slot; nil means the slot is empty.
func (c *Client) Review(ctx context.Context) (*review.Record, error) {
	var payload api.ReviewResponse
	if err := c.getJSON(ctx, "/api/review", &payload); err != nil {
		return nil, err
	}
	return payload.Review, nil
}

// ClearReview empties the review slot.
func (c *Client) ClearReview(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/review", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}
	return nil
}

// Restore rebuilds the converted pair list for a past batch.
func (c *Client) Restore(ctx context.Context, req api.RestoreRequest) (*review.Restored, error) {
	var payload review.Restored
	if err := c.postJSON(ctx, "/api/review/restore", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// History lists recently recorded batches, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]journal.Batch, error) {
	path := "/api/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var payload struct {
		Batches []journal.Batch `json:"batches"`
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Batches, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload api.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon returned %d", resp.StatusCode)
}
