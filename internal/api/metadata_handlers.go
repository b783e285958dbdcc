package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/metadata/search",
		Summary:     "Search book metadata",
		Description: "Queries external providers (Google Books, Open Library) and returns merged, deduplicated candidates",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchMetadata)
}

// === DTOs ===

// SearchMetadataInput contains the provider search query.
type SearchMetadataInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" doc:"Title, author, or ISBN"`
}

// SearchMetadataResponse contains candidate records from the providers.
type SearchMetadataResponse struct {
	Candidates []domain.BookMetadata `json:"candidates" doc:"Merged candidates, Google Books results first"`
}

// SearchMetadataOutput wraps the metadata search response for Huma.
type SearchMetadataOutput struct {
	Body SearchMetadataResponse
}

// === Handlers ===

func (s *Server) handleSearchMetadata(ctx context.Context, input *SearchMetadataInput) (*SearchMetadataOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	candidates, err := s.services.Metadata.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	return &SearchMetadataOutput{Body: SearchMetadataResponse{Candidates: candidates}}, nil
}
