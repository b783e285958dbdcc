// Package metadata defines the external book-catalog provider contract.
// Concrete providers live in subpackages (googlebooks, openlibrary).
package metadata

import (
	"context"
	"errors"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

// Provider errors shared by the concrete clients.
var (
	// ErrNotFound means the provider had no match for the query.
	ErrNotFound = errors.New("no results found")
	// ErrRateLimited means the provider rejected the request for rate.
	ErrRateLimited = errors.New("rate limited by provider")
	// ErrServer means the provider returned a 5xx response.
	ErrServer = errors.New("provider server error")
)

// Provider is a remote book catalog that can be queried for candidates.
type Provider interface {
	// Name identifies the provider in results and logs.
	Name() string

	// Search runs a free-text query and returns up to limit candidates.
	Search(ctx context.Context, query string, limit int) ([]domain.BookMetadata, error)

	// SearchISBN resolves a single ISBN. Returns ErrNotFound when the
	// provider has no record for it.
	SearchISBN(ctx context.Context, isbn string) (*domain.BookMetadata, error)
}
