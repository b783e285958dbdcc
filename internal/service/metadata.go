package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/metadata"
)

const (
	// metadataSearchLimit caps the candidates requested per provider.
	metadataSearchLimit = 10

	// isbnFallthroughThreshold: when an ISBN lookup yields fewer
	// candidates than this, the general search runs as well.
	isbnFallthroughThreshold = 5
)

// isbnPattern matches raw ISBN-10/13 input, dashes allowed.
var isbnPattern = regexp.MustCompile(`^[\d-]{10,17}$`)

// MetadataService merges candidates from the external catalog
// providers. Provider failures are tolerated individually; the call
// errors only when every provider fails.
type MetadataService struct {
	google      metadata.Provider
	openLibrary metadata.Provider
	logger      *slog.Logger
}

// NewMetadataService creates a new metadata lookup service.
func NewMetadataService(google, openLibrary metadata.Provider, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		google:      google,
		openLibrary: openLibrary,
		logger:      logger,
	}
}

// Search resolves a query against the providers. ISBN-shaped queries
// take the ISBN path (Google first, Open Library fallback) and fall
// through to general search when the ISBN yields few results.
func (s *MetadataService) Search(ctx context.Context, query string) ([]domain.BookMetadata, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("query is required")
	}

	var candidates []domain.BookMetadata

	if isbnPattern.MatchString(query) {
		candidates = s.searchISBN(ctx, query)
		if len(candidates) >= isbnFallthroughThreshold {
			return dedupeCandidates(candidates), nil
		}
	}

	general, failures := s.searchGeneral(ctx, query)
	candidates = append(candidates, general...)

	if len(candidates) == 0 {
		if failures == 2 {
			return nil, domainerrors.Upstream("all metadata providers failed")
		}
		return []domain.BookMetadata{}, nil
	}
	return dedupeCandidates(candidates), nil
}

// searchISBN resolves an ISBN, Google Books first with Open Library as
// the fallback. Errors from either provider are logged and swallowed.
func (s *MetadataService) searchISBN(ctx context.Context, isbn string) []domain.BookMetadata {
	if candidate, err := s.google.SearchISBN(ctx, isbn); err == nil {
		return []domain.BookMetadata{*candidate}
	} else if s.logger != nil {
		s.logger.Debug("google isbn lookup failed", "isbn", isbn, "error", err)
	}

	if candidate, err := s.openLibrary.SearchISBN(ctx, isbn); err == nil {
		return []domain.BookMetadata{*candidate}
	} else if s.logger != nil {
		s.logger.Debug("open library isbn lookup failed", "isbn", isbn, "error", err)
	}

	return nil
}

// searchGeneral queries both providers concurrently and merges whatever
// came back, counting hard failures.
func (s *MetadataService) searchGeneral(ctx context.Context, query string) ([]domain.BookMetadata, int) {
	type providerResult struct {
		candidates []domain.BookMetadata
		err        error
		name       string
	}

	providers := []metadata.Provider{s.google, s.openLibrary}
	results := make([]providerResult, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidates, err := p.Search(ctx, query, metadataSearchLimit)
			results[i] = providerResult{candidates: candidates, err: err, name: p.Name()}
		}()
	}
	wg.Wait()

	var merged []domain.BookMetadata
	failures := 0
	for _, r := range results {
		if r.err != nil {
			// No-results is an empty answer, not a provider failure.
			if !errors.Is(r.err, metadata.ErrNotFound) {
				failures++
			}
			if s.logger != nil {
				s.logger.Debug("metadata provider search failed",
					"provider", r.name,
					"error", r.err,
				)
			}
			continue
		}
		merged = append(merged, r.candidates...)
	}
	return merged, failures
}

// dedupeCandidates drops duplicates by (lowercase title, lowercase
// first author), keeping the first occurrence. Provider order makes
// Google's richer records win over Open Library's.
func dedupeCandidates(candidates []domain.BookMetadata) []domain.BookMetadata {
	seen := make(map[string]bool, len(candidates))
	out := make([]domain.BookMetadata, 0, len(candidates))
	for _, c := range candidates {
		author := ""
		if len(c.Authors) > 0 {
			author = c.Authors[0]
		}
		key := strings.ToLower(c.Title) + "\x00" + strings.ToLower(author)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
