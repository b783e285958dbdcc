// Package transfer implements CSV export and import of a user's library.
//
// The native layout round-trips everything the export writes. Import
// additionally recognizes the Goodreads legacy export layout by its
// header columns. encoding/csv handles quoting, so titles and notes may
// freely contain commas and quotes.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// nativeHeader is the exported column set, in order.
var nativeHeader = []string{
	"Title",
	"Author",
	"ISBN",
	"Publisher",
	"Release Year",
	"Tags",
	"Finished Month",
	"Finished Year",
	"Notes",
	"Date Added",
}

// Service moves libraries in and out as CSV.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates a new transfer service.
func NewService(store *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ImportResult summarizes an import run. Malformed rows are counted,
// never fatal.
type ImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// Export writes the owner's full library to w in the native layout,
// oldest book first.
func (s *Service) Export(ctx context.Context, ownerID string, w io.Writer) error {
	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(nativeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, book := range books {
		finishedYear := ""
		if len(book.FinishedMonth) >= 4 {
			finishedYear = book.FinishedMonth[:4]
		}
		releaseYear := ""
		if book.PublicationYear != 0 {
			releaseYear = strconv.Itoa(book.PublicationYear)
		}

		record := []string{
			book.Title,
			strings.Join(book.Authors, "; "),
			book.ISBN,
			book.Publisher,
			releaseYear,
			strings.Join(book.Tags, ", "),
			book.FinishedMonth,
			finishedYear,
			book.Notes,
			book.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Import reads CSV from r and creates a new book per row for the owner.
// The layout is sniffed from the header; every row gets a freshly
// generated ID regardless of any ID column in the source.
func (s *Service) Import(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // Row lengths vary in the wild

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var parse rowParser
	if isGoodreadsHeader(header) {
		parse = makeGoodreadsParser(header)
	} else {
		parse = makeNativeParser(header)
	}

	result := &ImportResult{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			continue
		}

		book, ok := parse(record)
		if !ok {
			result.Failed++
			continue
		}

		book.OwnerID = ownerID
		now := time.Now()
		book.ID = domain.NewBookID(now)
		book.CreatedAt = now
		book.UpdatedAt = now

		if err := s.createWithRetry(ctx, book); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	if s.logger != nil {
		s.logger.Info("library import finished",
			"owner_id", ownerID,
			"imported", result.Imported,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// createWithRetry bumps the millisecond ID on collision, which happens
// constantly during imports since many rows land in the same instant.
func (s *Service) createWithRetry(ctx context.Context, book *domain.Book) error {
	for {
		err := s.store.CreateBook(ctx, book)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrBookExists) {
			book.ID++
			continue
		}
		return err
	}
}

// rowParser turns one CSV record into a book, or reports a bad row.
type rowParser func(record []string) (*domain.Book, bool)

// isGoodreadsHeader detects the Goodreads legacy export layout.
func isGoodreadsHeader(header []string) bool {
	return slices.Contains(header, "Book Id") || slices.Contains(header, "My Rating")
}

// makeNativeParser maps the native layout by column name so column
// order does not matter.
func makeNativeParser(header []string) rowParser {
	idx := headerIndex(header)
	return func(record []string) (*domain.Book, bool) {
		title := field(record, idx, "Title")
		if title == "" {
			return nil, false
		}

		book := &domain.Book{
			Title:         title,
			Authors:       splitList(field(record, idx, "Author"), ";"),
			ISBN:          field(record, idx, "ISBN"),
			Publisher:     field(record, idx, "Publisher"),
			Tags:          domain.NormalizedTags(splitList(field(record, idx, "Tags"), ",")),
			FinishedMonth: field(record, idx, "Finished Month"),
			Notes:         field(record, idx, "Notes"),
		}
		if year := field(record, idx, "Release Year"); year != "" {
			if y, err := strconv.Atoi(year); err == nil {
				book.PublicationYear = y
			}
		}
		return book, true
	}
}

// makeGoodreadsParser maps the Goodreads legacy columns. The rating
// becomes a note; "Last, First" author names are flipped.
func makeGoodreadsParser(header []string) rowParser {
	idx := headerIndex(header)
	return func(record []string) (*domain.Book, bool) {
		title := field(record, idx, "Title")
		if title == "" {
			return nil, false
		}

		book := &domain.Book{
			Title:     title,
			ISBN:      cleanGoodreadsISBN(field(record, idx, "ISBN")),
			Publisher: field(record, idx, "Publisher"),
		}
		if author := normalizeGoodreadsAuthor(field(record, idx, "Author")); author != "" {
			book.Authors = []string{author}
		}
		if year := field(record, idx, "Year Published"); year != "" {
			if y, err := strconv.Atoi(year); err == nil {
				book.PublicationYear = y
			}
		}
		if read := field(record, idx, "Date Read"); len(read) >= 7 {
			// Goodreads uses "YYYY/MM/DD"
			book.FinishedMonth = strings.ReplaceAll(read[:7], "/", "-")
		}
		if rating := field(record, idx, "My Rating"); rating != "" && rating != "0" {
			book.Notes = "Rating: " + rating + "/5"
		}
		return book, true
	}
}

// normalizeGoodreadsAuthor flips "Last, First" to "First Last".
func normalizeGoodreadsAuthor(author string) string {
	last, first, found := strings.Cut(author, ",")
	if !found {
		return strings.TrimSpace(author)
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// cleanGoodreadsISBN strips the ="..." Excel armor Goodreads wraps
// ISBNs in.
func cleanGoodreadsISBN(isbn string) string {
	isbn = strings.TrimPrefix(isbn, "=")
	return strings.Trim(isbn, `"`)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func splitList(value, sep string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
