package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

func (s *Server) registerExploreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exploreBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/explore",
		Summary:     "Discover books from other libraries",
		Description: "Returns books other users shelve, newest first, deduplicated and excluding books already in your library",
		Tags:        []string{"Explore"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExploreBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "exploreSimilarBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/explore/similar",
		Summary:     "Books shelved alongside a book",
		Description: "Returns books from users who also shelve the given book, ranked by shared tags",
		Tags:        []string{"Explore"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExploreSimilarBooks)
}

// === DTOs ===

// ExploreInput narrows and bounds the discovery feed.
type ExploreInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Case-insensitive substring over title, authors, publisher, and tags"`
	Limit         int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum books returned (default 100)"`
}

// ExploreSimilarInput identifies the anchor book for a similarity query.
type ExploreSimilarInput struct {
	Authorization string `header:"Authorization"`
	Title         string `query:"title" required:"true" doc:"Anchor book title"`
	Author        string `query:"author" doc:"Anchor book's first author"`
	Limit         int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum books returned (default 50)"`
}

// ExploreBookResponse is a book surfaced from another user's library.
// Owner identity and notes are never exposed here.
type ExploreBookResponse struct {
	Title           string   `json:"title" doc:"Book title"`
	Authors         []string `json:"authors,omitempty" doc:"Authors in display order"`
	ISBN            string   `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	CoverURL        string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	Publisher       string   `json:"publisher,omitempty" doc:"Publisher"`
	Tags            []string `json:"tags,omitempty" doc:"Tags"`
	PublicationYear int      `json:"publication_year,omitempty" doc:"Year of publication"`
}

// ExploreResponse contains the discovery feed.
type ExploreResponse struct {
	Books []ExploreBookResponse `json:"books" doc:"Books from other libraries"`
}

// ExploreOutput wraps the discovery feed for Huma.
type ExploreOutput struct {
	Body ExploreResponse
}

// === Handlers ===

func (s *Server) handleExploreBooks(ctx context.Context, input *ExploreInput) (*ExploreOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Explore.Discover(ctx, userID, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ExploreOutput{Body: ExploreResponse{Books: mapExploreBooks(books)}}, nil
}

func (s *Server) handleExploreSimilarBooks(ctx context.Context, input *ExploreSimilarInput) (*ExploreOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Explore.Similar(ctx, userID, input.Title, input.Author, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ExploreOutput{Body: ExploreResponse{Books: mapExploreBooks(books)}}, nil
}

// === Helpers ===

func mapExploreBooks(books []*domain.Book) []ExploreBookResponse {
	out := make([]ExploreBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ExploreBookResponse{
			Title:           b.Title,
			Authors:         b.Authors,
			ISBN:            b.ISBN,
			CoverURL:        b.CoverURL,
			Publisher:       b.Publisher,
			Tags:            b.Tags,
			PublicationYear: b.PublicationYear,
		})
	}
	return out
}
