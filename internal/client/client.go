package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// DefaultInterval matches the server side poll cadence.
const DefaultInterval = time.Second

// Client talks to the CodeGuard HTTP API
type Client struct {
	http *resty.Client
}

// APIError is the JSON error body returned by the API
type APIError struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error %d: %s %v", e.Status, e.Message, e.Errors)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func New(baseURL, apiKey string) *Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(30 * time.Second)
	c.SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetHeader("X-API-Key", apiKey)
	}
	return &Client{http: c}
}

func (c *Client) do(ctx context.Context, method, path string, prepare func(*resty.Request), result any) error {
	var apiErr APIError
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return &apiErr
	}
	return nil
}

// Submit sends code as JSON
func (c *Client) Submit(ctx context.Context, code, language, filename string) (*domain.Analysis, error) {
	var a domain.Analysis
	err := c.do(ctx, http.MethodPost, "/api/analyze", func(r *resty.Request) {
		r.SetBody(map[string]string{"code": code, "language": language, "filename": filename})
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Upload sends a local file through the multipart endpoint
func (c *Client) Upload(ctx context.Context, path string) (*domain.Analysis, error) {
	var a domain.Analysis
	err := c.do(ctx, http.MethodPost, "/api/analyze/upload", func(r *resty.Request) {
		r.SetFile("file", path)
	}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	var a domain.Analysis
	if err := c.do(ctx, http.MethodGet, "/api/analyses/"+string(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Wait polls an analysis every interval until it is completed or failed.
func (c *Client) Wait(ctx context.Context, id domain.AnalysisID, interval time.Duration) (*domain.Analysis, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		a, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.Status.Terminal() {
			return a, nil
		}
		select {
		case <-ctx.Done():
			return a, ctx.Err()
		case <-t.C:
		}
	}
}
