package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// coOccurrenceLimit caps the tags returned by a co-occurrence query.
const coOccurrenceLimit = 10

// StatsService computes the derived statistics views. Every result is a
// pure function of the owner's current books and the request filters.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// StatsFilter narrows the book subset statistics are computed over.
// Zero values mean "no filter".
type StatsFilter struct {
	Year   int    // Restrict to books finished in this year
	Author string // Restrict to books whose first author matches (case-insensitive)
}

// GetLibraryStats computes the full statistics view for an owner.
func (s *StatsService) GetLibraryStats(ctx context.Context, ownerID string, filter StatsFilter) (*domain.LibraryStats, error) {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	subset := filterStatsSubset(books, filter)
	finished := finishedBooks(subset)

	stats := &domain.LibraryStats{
		TotalBooks:           len(subset),
		FinishedBooks:        len(finished),
		Timeline:             BuildTimeline(finished),
		Decades:              BuildDecades(subset),
		TagFrequency:         BuildTagFrequency(subset),
		AverageBooksPerMonth: AverageBooksPerMonth(finished),
	}
	return stats, nil
}

// GetTagCoOccurrence returns the tags most often appearing alongside
// focusTag within the filtered subset, excluding the focus tag itself,
// top 10 by count.
func (s *StatsService) GetTagCoOccurrence(ctx context.Context, ownerID, focusTag string, filter StatsFilter) ([]domain.TagCount, error) {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	subset := filterStatsSubset(books, filter)
	counts := make(map[string]int)
	for _, book := range subset {
		if !book.HasTag(focusTag) {
			continue
		}
		for _, tag := range book.Tags {
			if tag == focusTag {
				continue
			}
			counts[tag]++
		}
	}

	result := make([]domain.TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, domain.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	if len(result) > coOccurrenceLimit {
		result = result[:coOccurrenceLimit]
	}
	return result, nil
}

// BuildTimeline buckets finished books by month and fills the gaps
// between the earliest and latest month with zero-count points.
func BuildTimeline(finished []*domain.Book) []domain.TimelinePoint {
	if len(finished) == 0 {
		return []domain.TimelinePoint{}
	}

	counts := make(map[string]int)
	for _, book := range finished {
		counts[book.FinishedMonth]++
	}

	first, last := monthBounds(finished)
	timeline := make([]domain.TimelinePoint, 0, len(counts))
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		timeline = append(timeline, domain.TimelinePoint{
			Month: key,
			Count: counts[key],
		})
	}
	return timeline
}

// BuildDecades histograms books by publication decade. Books without a
// publication year are skipped.
func BuildDecades(books []*domain.Book) []domain.DecadeBucket {
	counts := make(map[int]int)
	for _, book := range books {
		if book.PublicationYear == 0 {
			continue
		}
		decade := book.PublicationYear / 10 * 10
		counts[decade]++
	}

	decades := make([]domain.DecadeBucket, 0, len(counts))
	for decade, count := range counts {
		decades = append(decades, domain.DecadeBucket{Decade: decade, Count: count})
	}
	sort.Slice(decades, func(i, j int) bool {
		return decades[i].Decade < decades[j].Decade
	})
	return decades
}

// BuildTagFrequency counts tag usage across books, most used first.
func BuildTagFrequency(books []*domain.Book) []domain.TagCount {
	counts := make(map[string]int)
	for _, book := range books {
		for _, tag := range book.Tags {
			counts[tag]++
		}
	}

	result := make([]domain.TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, domain.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	return result
}

// AverageBooksPerMonth divides the finished count by the inclusive
// month span from earliest to latest finished month. The span is never
// less than one, so a single busy month yields its own count.
func AverageBooksPerMonth(finished []*domain.Book) float64 {
	if len(finished) == 0 {
		return 0
	}

	first, last := monthBounds(finished)
	span := (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
	if span < 1 {
		span = 1
	}
	return float64(len(finished)) / float64(span)
}

// finishedBooks returns the books with a parseable finished month.
func finishedBooks(books []*domain.Book) []*domain.Book {
	finished := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if book.FinishedMonth == "" {
			continue
		}
		if _, err := time.Parse("2006-01", book.FinishedMonth); err != nil {
			continue
		}
		finished = append(finished, book)
	}
	return finished
}

// monthBounds returns the earliest and latest finished months.
// Callers guarantee at least one book with a valid FinishedMonth.
func monthBounds(finished []*domain.Book) (first, last time.Time) {
	for _, book := range finished {
		m, err := time.Parse("2006-01", book.FinishedMonth)
		if err != nil {
			continue
		}
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	return first, last
}

func filterStatsSubset(books []*domain.Book, filter StatsFilter) []*domain.Book {
	if filter.Year == 0 && filter.Author == "" {
		return books
	}

	subset := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if filter.Year != 0 {
			if book.FinishedMonth == "" || !strings.HasPrefix(book.FinishedMonth, fmt.Sprintf("%04d-", filter.Year)) {
				continue
			}
		}
		if filter.Author != "" && !strings.EqualFold(book.FirstAuthor(), filter.Author) {
			continue
		}
		subset = append(subset, book)
	}
	return subset
}
