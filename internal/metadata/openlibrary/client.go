// Package openlibrary implements the Open Library search and books API provider.
package openlibrary

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
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"

	defaultRPS   = 2.0
	defaultBurst = 4

	defaultTimeout = 10 * time.Second
	maxResults     = 20
)

// Client is a rate-limited Open Library client.
type Client struct {
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	baseURL   string
	coversURL string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCoversURL overrides the covers host.
func WithCoversURL(coversURL string) Option {
	return func(c *Client) {
		c.coversURL = strings.TrimRight(coversURL, "/")
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// New creates a new Open Library client.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:   ratelimit.New(defaultRPS, defaultBurst),
		baseURL:   defaultBaseURL,
		coversURL: defaultCoversURL,
		logger:    logger,
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
	return "openlibrary"
}

// Search runs a free-text query against search.json.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.BookMetadata, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("fields", "title,author_name,publisher,first_publish_year,isbn,cover_i")

	body, err := c.doRequest(ctx, "/search.json", q)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if len(result.Docs) == 0 {
		return nil, metadata.ErrNotFound
	}

	candidates := make([]domain.BookMetadata, 0, len(result.Docs))
	for _, doc := range result.Docs {
		candidates = append(candidates, c.docToMetadata(doc))
	}
	return candidates, nil
}

// SearchISBN resolves a single ISBN via the books bibkeys API.
func (c *Client) SearchISBN(ctx context.Context, isbn string) (*domain.BookMetadata, error) {
	normalized := strings.ReplaceAll(isbn, "-", "")
	bibkey := "ISBN:" + normalized

	q := url.Values{}
	q.Set("bibkeys", bibkey)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	body, err := c.doRequest(ctx, "/api/books", q)
	if err != nil {
		return nil, err
	}

	var result map[string]bookData
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse books response: %w", err)
	}
	data, ok := result[bibkey]
	if !ok {
		return nil, metadata.ErrNotFound
	}

	m := domain.BookMetadata{
		Title:     data.Title,
		Publisher: firstName(data.Publishers),
		ISBN:      normalized,
		CoverURL:  c.coverForISBN(normalized),
		Source:    "openlibrary",
	}
	for _, a := range data.Authors {
		m.Authors = append(m.Authors, a.Name)
	}
	// publish_date is free-form; the year is the trailing component
	// ("June 2001", "2001").
	if parts := strings.Fields(data.PublishDate); len(parts) > 0 {
		if year, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			m.PublicationYear = year
		}
	}
	return &m, nil
}

// coverForISBN builds a medium-size cover URL on the covers host.
func (c *Client) coverForISBN(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coversURL, isbn)
}

// doRequest executes a rate-limited GET against the API.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, "openlibrary"); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "OnLibrary/1.0")

	if c.logger != nil {
		c.logger.Debug("open library request", "path", path)
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

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	CoverID          int64    `json:"cover_i"`
}

type bookData struct {
	Title       string      `json:"title"`
	Authors     []bookAgent `json:"authors"`
	Publishers  []bookAgent `json:"publishers"`
	PublishDate string      `json:"publish_date"`
}

type bookAgent struct {
	Name string `json:"name"`
}

func (c *Client) docToMetadata(doc searchDoc) domain.BookMetadata {
	m := domain.BookMetadata{
		Title:           doc.Title,
		Authors:         doc.AuthorName,
		Publisher:       first(doc.Publisher),
		PublicationYear: doc.FirstPublishYear,
		ISBN:            first(doc.ISBN),
		Source:          "openlibrary",
	}
	if doc.CoverID != 0 {
		m.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, doc.CoverID)
	} else if m.ISBN != "" {
		m.CoverURL = c.coverForISBN(m.ISBN)
	}
	return m
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func firstName(agents []bookAgent) string {
	if len(agents) == 0 {
		return ""
	}
	return agents[0].Name
}
