package docrag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SessionHeader carries the conversation session identifier.
const SessionHeader = "X-Session-ID"

const defaultTimeout = 60 * time.Second

// Client is the docrag API client. Safe for concurrent use; all calls share
// one conversation session.
type Client struct {
	baseURL string
	http    *http.Client
	obs     *observer

	mu        sync.Mutex
	sessionID string
}

// New creates a client for the docrag API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("docrag: base URL is required")
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   baseURL,
		http:      hc,
		obs:       obs,
		sessionID: cfg.sessionID,
	}, nil
}

// SessionID returns the current conversation session identifier, empty
// before the first Ask.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Ask submits a question and returns the answer with its provenance.
// The session identifier from the response is remembered for followups.
func (c *Client) Ask(ctx context.Context, req AskRequest) (resp AskResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	if strings.TrimSpace(req.Question) == "" {
		return AskResponse{}, fmt.Errorf("docrag: question is required: %w", ErrBadRequest)
	}

	if err = c.do(ctx, http.MethodPost, "/v1/ask", req, &resp); err != nil {
		return AskResponse{}, err
	}

	if resp.SessionID != "" {
		c.mu.Lock()
		c.sessionID = resp.SessionID
		c.mu.Unlock()
	}
	return resp, nil
}

// Books returns the catalog.
func (c *Client) Books(ctx context.Context) (books []Book, err error) {
	start := time.Now()
	defer func() { c.obs.observe("books", start, err) }()

	var out struct {
		Books []Book `json:"books"`
	}
	if err = c.do(ctx, http.MethodGet, "/v1/books", nil, &out); err != nil {
		return nil, err
	}
	return out.Books, nil
}

// Stats returns service-level counters.
func (c *Client) Stats(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	if err = c.do(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Feedback records a thumbs-up (true) or thumbs-down (false) on the most
// recent answer.
func (c *Client) Feedback(ctx context.Context, positive bool) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("feedback", start, err) }()

	body := struct {
		Positive bool `json:"positive"`
	}{Positive: positive}
	return c.do(ctx, http.MethodPost, "/v1/feedback", body, nil)
}

// ResetSession forgets the current conversation but keeps the session alive.
func (c *Client) ResetSession(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset_session", start, err) }()

	if c.SessionID() == "" {
		return fmt.Errorf("docrag: no active session: %w", ErrBadRequest)
	}
	return c.do(ctx, http.MethodPost, "/v1/sessions/reset", nil, nil)
}

// Health returns the service health report. A degraded service is not an
// error; check Health.Status.
func (c *Client) Health(ctx context.Context) (h Health, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	httpReq, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Health{}, fmt.Errorf("docrag: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	// The endpoint reports degraded state via 503 with the same body shape.
	if err := json.NewDecoder(httpResp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("docrag: decode health response: %w", err)
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	httpReq, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("docrag: request failed: %w", err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(SessionHeader); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docrag: decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("docrag: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("docrag: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := c.SessionID(); id != "" {
		req.Header.Set(SessionHeader, id)
	}
	return req, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
