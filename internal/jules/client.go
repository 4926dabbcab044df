// Package jules is the typed gateway to the Jules REST API.
package jules

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/config"
)

const apiKeyHeader = "X-Goog-Api-Key"

// CallOptions customizes a single gateway call.
type CallOptions struct {
	// Method defaults to GET.
	Method string
	// Body is sent as-is when it is []byte or json.RawMessage and JSON
	// encoded otherwise.
	Body any
	// Header values override the defaults.
	Header http.Header
}

// Client calls the Jules API with the credential from its Config.
type Client struct {
	cfg  *config.Config
	http *http.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client bound to cfg.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTP.Timeout},
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call performs one request against endpoint (a path beginning with "/")
// and returns the raw JSON body. An empty 2xx body yields {}.
func (c *Client) Call(ctx context.Context, endpoint string, opts CallOptions) (json.RawMessage, error) {
	apiKey := strings.TrimSpace(c.cfg.APIKey)
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch b := opts.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	case json.RawMessage:
		body = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	baseURL := c.cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	target := strings.TrimRight(baseURL, "/") + endpoint

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range opts.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("endpoint", endpoint).Err(err).
			Dur("duration", time.Since(start)).Msg("jules api call failed")
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("jules api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, data)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decode response from %s: invalid JSON", endpoint)
	}
	return json.RawMessage(data), nil
}

// classifyTransportError wraps connection failures in NetworkError and
// leaves cancellation untouched.
func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &NetworkError{Err: err}
	}
	return err
}

// do is Call followed by decoding into out (when non-nil).
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	raw, err := c.Call(ctx, endpoint, CallOptions{Method: method, Body: in})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}

// ListSources returns one page of connected sources.
func (c *Client) ListSources(ctx context.Context, p ListSourcesParams) (*SourceList, error) {
	q := url.Values{}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.PageToken != "" {
		q.Set("pageToken", p.PageToken)
	}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}
	var out SourceList
	if err := c.do(ctx, http.MethodGet, withQuery("/sources", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSource fetches a source by bare id or by "sources/..." path.
func (c *Client) GetSource(ctx context.Context, id string) (*Source, error) {
	var out Source
	if err := c.do(ctx, http.MethodGet, "/"+SourcePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession starts a new session.
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns one page of sessions.
func (c *Client) ListSessions(ctx context.Context, p PageParams) (*SessionList, error) {
	var out SessionList
	if err := c.do(ctx, http.MethodGet, withQuery("/sessions", pageQuery(p)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches one session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a follow-up prompt to a session.
func (c *Client) SendMessage(ctx context.Context, id, prompt string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+id+":sendMessage", &SendMessageRequest{Prompt: prompt}, nil)
}

// GetActivity fetches one activity of a session.
func (c *Client) GetActivity(ctx context.Context, sessionID, activityID string) (*Activity, error) {
	var out Activity
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/activities/"+activityID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActivities returns one page of a session's activities.
func (c *Client) ListActivities(ctx context.Context, sessionID string, p PageParams) (*ActivityList, error) {
	var out ActivityList
	endpoint := withQuery("/sessions/"+sessionID+"/activities", pageQuery(p))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApprovePlan approves the pending plan of a session.
func (c *Client) ApprovePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+id+":approvePlan", struct{}{}, nil)
}

// DeleteSession permanently deletes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, nil, nil)
}

func pageQuery(p PageParams) url.Values {
	q := url.Values{}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.PageToken != "" {
		q.Set("pageToken", p.PageToken)
	}
	return q
}
