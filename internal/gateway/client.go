// ABOUTME: HTTP client for the posts backend (list, get by id or key, create).
// ABOUTME: Maps API payloads into models.Post and wraps every failure in ErrFetchFailed.
package gateway

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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/2389-research/postadmin/internal/models"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrFetchFailed wraps transport, status and decode failures.
	ErrFetchFailed = errors.New("backend request failed")
	// ErrNotFound is returned when the backend has no post for the requested key.
	ErrNotFound = errors.New("post not found")
)

// Client talks to the posts backend.
type Client struct {
	apiURL  string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics
}

// Option configures optional Client settings.
type Option func(*Client)

// WithAPIKey sends the key in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing and swallowed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRegisterer records request counters on the given registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newMetrics(reg)
	}
}

// NewClient creates a gateway client for the backend at apiURL.
func NewClient(apiURL string, opts ...Option) *Client {
	c := &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: DefaultTimeout},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every post from GET /posts/.
func (c *Client) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, "list", http.MethodGet, "/posts/", nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Get fetches one post by numeric id or key from GET /post/{idOrKey}.
func (c *Client) Get(ctx context.Context, idOrKey string) (*models.Post, error) {
	idOrKey = strings.TrimSpace(idOrKey)
	if idOrKey == "" {
		return nil, fmt.Errorf("%w: empty key", ErrNotFound)
	}

	var post models.Post
	if err := c.do(ctx, "get", http.MethodGet, "/post/"+url.PathEscape(idOrKey), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create sends a draft to POST /posts and returns the backend's copy, which
// carries the server-assigned id.
func (c *Client) Create(ctx context.Context, draft models.Post) (*models.Post, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	var created models.Post
	if err := c.do(ctx, "create", http.MethodPost, "/posts", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListOrEmpty is List with failures swallowed into an empty result.
func (c *Client) ListOrEmpty(ctx context.Context) []models.Post {
	posts, err := c.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("list posts failed, using empty result")
		return []models.Post{}
	}
	return posts
}

// GetOrNil is Get with failures swallowed into a nil result.
func (c *Client) GetOrNil(ctx context.Context, idOrKey string) *models.Post {
	post, err := c.Get(ctx, idOrKey)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", idOrKey).Msg("get post failed, using nil result")
		return nil
	}
	return post
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) (err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		c.metrics.observe(op, err)
		c.logger.Debug().
			Str("op", op).
			Str("request_id", requestID).
			Dur("elapsed", time.Since(start)).
			AnErr("error", err).
			Msg("backend request")
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound && op == "get" {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("%w: backend returned %d: %s", ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrFetchFailed, err)
	}
	return nil
}
