// Package googlebooks implements the Google Books volumes API provider.
package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/metadata"
	"github.com/onlibrary/onlibrary-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"

	// Unauthenticated quota is tight; stay well under it.
	defaultRPS   = 2.0
	defaultBurst = 4

	defaultTimeout = 10 * time.Second
	maxResults     = 20
)

// Client is a rate-limited Google Books API client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithRPS overrides the request rate limit.
func WithRPS(rps float64) Option {
	return func(c *Client) {
		c.limiter.Stop()
		c.limiter = ratelimit.New(rps, defaultBurst)
	}
}

// New creates a new Google Books client. The API key is optional; the
// volumes endpoint serves unauthenticated requests at a lower quota.
func New(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Name identifies this provider in results and logs.
func (c *Client) Name() string {
	return "googlebooks"
}

// Search runs a free-text volumes query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.BookMetadata, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(limit))
	q.Set("printType", "books")

	body, err := c.doRequest(ctx, "/volumes", q)
	if err != nil {
		return nil, err
	}

	var result volumesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse volumes response: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, metadata.ErrNotFound
	}

	candidates := make([]domain.BookMetadata, 0, len(result.Items))
	for _, item := range result.Items {
		candidates = append(candidates, item.VolumeInfo.toMetadata())
	}
	return candidates, nil
}

// SearchISBN resolves a single ISBN via the isbn: query qualifier.
func (c *Client) SearchISBN(ctx context.Context, isbn string) (*domain.BookMetadata, error) {
	normalized := strings.ReplaceAll(isbn, "-", "")

	q := url.Values{}
	q.Set("q", "isbn:"+normalized)
	q.Set("maxResults", "1")

	body, err := c.doRequest(ctx, "/volumes", q)
	if err != nil {
		return nil, err
	}

	var result volumesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse volumes response: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, metadata.ErrNotFound
	}

	candidate := result.Items[0].VolumeInfo.toMetadata()
	if candidate.ISBN == "" {
		candidate.ISBN = normalized
	}
	return &candidate, nil
}

// doRequest executes a rate-limited GET against the API.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, "googlebooks"); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug("google books request", "path", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, metadata.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, metadata.ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, metadata.ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// API response types.

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"` // "2006", "2006-01" or "2006-01-02"
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks           `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"` // ISBN_10, ISBN_13, OTHER
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

func (v volumeInfo) toMetadata() domain.BookMetadata {
	m := domain.BookMetadata{
		Title:     v.Title,
		Authors:   v.Authors,
		Publisher: v.Publisher,
		Source:    "googlebooks",
	}

	// Year is the leading component of the published date.
	if len(v.PublishedDate) >= 4 {
		if year, err := strconv.Atoi(v.PublishedDate[:4]); err == nil {
			m.PublicationYear = year
		}
	}

	// Prefer ISBN-13 over ISBN-10.
	for _, ident := range v.IndustryIdentifiers {
		if ident.Type == "ISBN_13" {
			m.ISBN = ident.Identifier
			break
		}
		if ident.Type == "ISBN_10" && m.ISBN == "" {
			m.ISBN = ident.Identifier
		}
	}

	cover := v.ImageLinks.Thumbnail
	if cover == "" {
		cover = v.ImageLinks.SmallThumbnail
	}
	// The API hands out http:// thumbnails; upgrade them.
	m.CoverURL = strings.Replace(cover, "http://", "https://", 1)

	return m
}
