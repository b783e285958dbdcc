package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// tagWriteConcurrency bounds the parallel per-book writes in batch operations.
const tagWriteConcurrency = 8

// TagService implements the batch tag operations. Tags have no identity
// of their own; they exist only as strings on books, so every operation
// is a scan-and-rewrite over the owner's library. Matching is exact and
// case-sensitive.
type TagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// ListTags returns the owner's tags with usage counts, most used first,
// ties broken alphabetically.
func (s *TagService) ListTags(ctx context.Context, ownerID string) ([]domain.TagCount, error) {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

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
	return result, nil
}

// RenameTag replaces oldTag with newTag on every book carrying it.
// Renaming to an already-present tag collapses to a removal, so no book
// ends up with a duplicate. Returns the number of books changed.
func (s *TagService) RenameTag(ctx context.Context, ownerID, oldTag, newTag string) (int, error) {
	if oldTag == "" || newTag == "" {
		return 0, domainerrors.Validation("both old and new tag names are required")
	}
	return s.rewriteBooks(ctx, ownerID, func(b *domain.Book) bool {
		return b.RenameTag(oldTag, newTag)
	})
}

// DeleteTag removes tag from every book carrying it. Destructive and
// not undoable; the API surface flags it for client-side confirmation.
func (s *TagService) DeleteTag(ctx context.Context, ownerID, tag string) (int, error) {
	if tag == "" {
		return 0, domainerrors.Validation("tag is required")
	}
	return s.rewriteBooks(ctx, ownerID, func(b *domain.Book) bool {
		return b.RemoveTag(tag)
	})
}

// MergeTags folds all source tags into target on every affected book.
// After the merge no book carries any source tag, every affected book
// carries target exactly once. The target may itself appear in sources.
func (s *TagService) MergeTags(ctx context.Context, ownerID string, sources []string, target string) (int, error) {
	if len(sources) == 0 || target == "" {
		return 0, domainerrors.Validation("source tags and a target tag are required")
	}
	return s.rewriteBooks(ctx, ownerID, func(b *domain.Book) bool {
		return b.MergeTags(sources, target)
	})
}

// ConditionalAddTag adds addTag to every book carrying conditionTag.
// Idempotent: books already carrying addTag are untouched, so running
// it twice changes nothing the second time.
func (s *TagService) ConditionalAddTag(ctx context.Context, ownerID, conditionTag, addTag string) (int, error) {
	if conditionTag == "" || addTag == "" {
		return 0, domainerrors.Validation("condition tag and tag to add are required")
	}
	return s.rewriteBooks(ctx, ownerID, func(b *domain.Book) bool {
		if !b.HasTag(conditionTag) {
			return false
		}
		return b.AddTag(addTag)
	})
}

// rewriteBooks applies mutate to every book in the owner's library and
// writes back the ones that changed, concurrently and fail-fast. There
// is no rollback: books written before the first failure stay written,
// which is safe because every batch operation is idempotent per book.
func (s *TagService) rewriteBooks(ctx context.Context, ownerID string, mutate func(*domain.Book) bool) (int, error) {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	var changed []*domain.Book
	for _, book := range books {
		if mutate(book) {
			book.Touch()
			changed = append(changed, book)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tagWriteConcurrency)
	for _, book := range changed {
		g.Go(func() error {
			if err := s.store.UpdateBook(gctx, book); err != nil {
				return fmt.Errorf("update book %d: %w", book.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info("tag batch operation applied",
			"owner_id", ownerID,
			"books_changed", len(changed),
		)
	}
	return len(changed), nil
}
