// Package wallapi is the HTTP client for the WhisperWall service.
// It implements posts.Client with one request/response cycle per call:
// no retries, no caching and no client-side timeout.
package wallapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"WhisperWall/internal/core/posts"
)

const (
	userAgent       = "WhisperWall-CLI/1.0"
	requestIDHeader = "X-Request-Id"

	// maxErrorBody bounds how much of an error response is read for its detail
	maxErrorBody = 64 << 10
)

// Client talks to the wall service over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	pageSize   int
}

// Ensure Client implements posts.Client.
var _ posts.Client = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request failures
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPageSize sets the default page size for ListPosts
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid baseURL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		// Zero Timeout: callers wait for the exchange to finish unless their context ends
		httpClient: &http.Client{},
		logger:     slog.Default(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   posts.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListPosts fetches one page of the feed.
func (c *Client) ListPosts(ctx context.Context, page, limit int) (*posts.Page, error) {
	if limit <= 0 {
		limit = c.pageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var result posts.Page
	if err := c.do(ctx, "listPosts", http.MethodGet, "/posts?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}

	if result.Posts == nil {
		result.Posts = []posts.Post{}
	}
	if result.Pages == 0 {
		result.Pages = 1
	}
	return &result, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, content, authorAlias string) (*posts.Post, error) {
	payload := posts.CreatePostRequest{
		Content:     content,
		AuthorAlias: posts.NormalizeAlias(authorAlias),
	}

	var result posts.Post
	if err := c.do(ctx, "createPost", http.MethodPost, "/posts", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LikePost increments a post's like counter.
func (c *Client) LikePost(ctx context.Context, id posts.PostID) (*posts.Post, error) {
	var result posts.Post
	if err := c.do(ctx, "likePost", http.MethodPost, postPath(id, "like"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FlagPost marks a post for moderation.
func (c *Client) FlagPost(ctx context.Context, id posts.PostID) (*posts.Post, error) {
	var result posts.Post
	if err := c.do(ctx, "flagPost", http.MethodPost, postPath(id, "flag"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func postPath(id posts.PostID, action string) string {
	return "/posts/" + url.PathEscape(id.String()) + "/" + action
}

// do performs a single JSON exchange and converts every failure into *posts.APIError.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", operation, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("wall request failed",
			"operation", operation,
			"request_id", requestID,
			"error", err)
		return posts.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorDetail(resp.Body)
		c.logger.Warn("wall request rejected",
			"operation", operation,
			"request_id", requestID,
			"status", resp.StatusCode,
			"detail", detail)
		return posts.NewStatusError(resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("wall response undecodable",
			"operation", operation,
			"request_id", requestID,
			"status", resp.StatusCode,
			"error", err)
		return posts.NewDecodeError(resp.StatusCode, err)
	}

	c.logger.Debug("wall request completed",
		"operation", operation,
		"request_id", requestID,
		"status", resp.StatusCode)
	return nil
}

// errorBody is the error envelope of the service. detail is usually a string,
// but request validation failures carry a list of {loc, msg, type} objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// readErrorDetail extracts a human-readable message from an error response.
// It returns "" when the body carries nothing usable.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}

	var details []validationDetail
	if err := json.Unmarshal(body.Detail, &details); err == nil {
		msgs := make([]string, 0, len(details))
		for _, d := range details {
			if d.Msg != "" {
				msgs = append(msgs, d.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
