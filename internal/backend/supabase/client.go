// Package supabase talks to a hosted Supabase project over its HTTP APIs:
// GoTrue for authentication, Storage for objects and PostgREST for tables.
package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bilgisen/pressdesk/internal/backend"
)

// Client is a configured handle to one Supabase project
type Client struct {
	client  *resty.Client
	baseURL string
	anonKey string
	now     func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.SetTimeout(d) }
}

// WithHTTPClient replaces the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = resty.NewWithClient(hc).SetBaseURL(c.baseURL) }
}

// New creates a client for the project at baseURL using the public anon key.
// Calls are never retried.
func New(baseURL, anonKey string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		client:  resty.New().SetBaseURL(baseURL),
		baseURL: baseURL,
		anonKey: anonKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client.
		SetTimeout(orDefault(c.client.GetClient().Timeout, 30*time.Second)).
		SetRetryCount(0).
		SetHeader("apikey", anonKey).
		SetHeader("X-Client-Info", "pressdesk-go")
	return c
}

// Backend returns the three capability groups backed by this project
func (c *Client) Backend() *backend.Client {
	return &backend.Client{
		Auth:    &authAPI{c},
		Storage: &storageAPI{c},
		Tables:  &restAPI{c},
	}
}

// request starts a request authorized as the user in ctx, or as the anon role
func (c *Client) request(ctx context.Context) *resty.Request {
	token := backend.AccessToken(ctx)
	if token == "" {
		token = c.anonKey
	}
	return c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetError(&APIError{})
}

// APIError is an error response from any of the Supabase services
type APIError struct {
	Status           int    `json:"-"`
	Code             any    `json:"code,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	Message          string `json:"message,omitempty"`
	Msg              string `json:"msg,omitempty"`
	ErrorName        string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Details          string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if msg := e.text(); msg != "" {
		return msg
	}
	if e.Status != 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return "request failed"
}

func (e *APIError) text() string {
	for _, msg := range []string{e.ErrorDescription, e.Message, e.Msg, e.ErrorName} {
		if msg != "" {
			return msg
		}
	}
	return ""
}

// checkResponse turns transport failures and error statuses into errors
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.text() == "" {
		if body := strings.TrimSpace(resp.String()); body != "" && !strings.HasPrefix(body, "{") {
			apiErr.Message = body
		}
	}
	return apiErr
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
