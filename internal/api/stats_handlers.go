package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Library statistics",
		Description: "Returns timeline, decade histogram, tag frequency, and reading pace over an optionally filtered subset",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLibraryStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagCoOccurrence",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/co-occurrence",
		Summary:     "Tag co-occurrence",
		Description: "Returns the tags appearing most often alongside a focus tag (top 10)",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTagCoOccurrence)
}

// === DTOs ===

// StatsInput contains the optional subset filter for statistics.
type StatsInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `query:"year" doc:"Restrict to books finished in this year (YYYY)"`
	Author        string `query:"author" doc:"Restrict to books whose first author matches (case-insensitive)"`
}

// StatsOutput wraps the library statistics for Huma.
type StatsOutput struct {
	Body domain.LibraryStats
}

// CoOccurrenceInput contains the focus tag and subset filter.
type CoOccurrenceInput struct {
	Authorization string `header:"Authorization"`
	Tag           string `query:"tag" required:"true" doc:"Focus tag"`
	Year          int    `query:"year" doc:"Restrict to books finished in this year (YYYY)"`
	Author        string `query:"author" doc:"Restrict to books whose first author matches (case-insensitive)"`
}

// CoOccurrenceResponse contains co-occurring tags for the focus tag.
type CoOccurrenceResponse struct {
	Tag          string            `json:"tag" doc:"Focus tag"`
	CoOccurrence []domain.TagCount `json:"co_occurrence" doc:"Tags most often on the same books, excluding the focus tag"`
}

// CoOccurrenceOutput wraps the co-occurrence response for Huma.
type CoOccurrenceOutput struct {
	Body CoOccurrenceResponse
}

// === Handlers ===

func (s *Server) handleGetLibraryStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetLibraryStats(ctx, userID, service.StatsFilter{
		Year:   input.Year,
		Author: input.Author,
	})
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: *stats}, nil
}

func (s *Server) handleGetTagCoOccurrence(ctx context.Context, input *CoOccurrenceInput) (*CoOccurrenceOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Stats.GetTagCoOccurrence(ctx, userID, input.Tag, service.StatsFilter{
		Year:   input.Year,
		Author: input.Author,
	})
	if err != nil {
		return nil, err
	}

	return &CoOccurrenceOutput{
		Body: CoOccurrenceResponse{
			Tag:          input.Tag,
			CoOccurrence: counts,
		},
	}, nil
}
