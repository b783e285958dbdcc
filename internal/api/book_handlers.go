package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "Browse library",
		Description: "Returns the user's books with search, sort, and pagination",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBrowseLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the user's library",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Replaces the editable fields of a book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book. List references to it are left in place and filtered on read.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID              int64     `json:"id" doc:"Book ID (creation-ordered)"`
	Title           string    `json:"title" doc:"Book title"`
	Authors         []string  `json:"authors,omitempty" doc:"Authors in display order"`
	ISBN            string    `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	CoverURL        string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	Publisher       string    `json:"publisher,omitempty" doc:"Publisher"`
	Tags            []string  `json:"tags,omitempty" doc:"Tags (max 7 on single edits)"`
	FinishedMonth   string    `json:"finished_month,omitempty" doc:"Month finished reading (YYYY-MM)"`
	PublicationYear int       `json:"publication_year,omitempty" doc:"Year of publication"`
	Notes           string    `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

// BookOutput wraps one book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title           string   `json:"title" validate:"required,max=500" doc:"Book title"`
	Authors         []string `json:"authors,omitempty" doc:"Authors in display order"`
	ISBN            string   `json:"isbn,omitempty" validate:"omitempty,max=20" doc:"ISBN"`
	CoverURL        string   `json:"cover_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Publisher       string   `json:"publisher,omitempty" validate:"omitempty,max=200" doc:"Publisher"`
	Tags            []string `json:"tags,omitempty" doc:"Tags (max 7)"`
	FinishedMonth   string   `json:"finished_month,omitempty" validate:"omitempty,len=7" doc:"Month finished (YYYY-MM)"`
	PublicationYear int      `json:"publication_year,omitempty" doc:"Year of publication"`
	Notes           string   `json:"notes,omitempty" validate:"omitempty,max=5000" doc:"Notes"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

// GetBookInput contains parameters for fetching one book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
	Body          BookRequest
}

// DeleteBookInput contains parameters for deleting one book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
}

// BrowseLibraryInput contains search, sort, and pagination parameters.
type BrowseLibraryInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Case-insensitive substring search over title, authors, tags, and notes"`
	Sort          string `query:"sort" enum:"title,author,oldest,newest" doc:"Sort order (default newest)"`
	Page          int    `query:"page" minimum:"0" doc:"Page number, 1-based (default 1)"`
	PageSize      int    `query:"page_size" minimum:"0" maximum:"200" doc:"Books per page (default 50)"`
}

// LibraryPageResponse contains one page of the user's library.
type LibraryPageResponse struct {
	Books      []BookResponse `json:"books" doc:"Books on this page"`
	Page       int            `json:"page" doc:"Current page (1-based)"`
	PageSize   int            `json:"page_size" doc:"Books per page"`
	TotalBooks int            `json:"total_books" doc:"Books matching the search"`
	TotalPages int            `json:"total_pages" doc:"Total pages (at least 1)"`
}

// LibraryPageOutput wraps the library page for Huma.
type LibraryPageOutput struct {
	Body LibraryPageResponse
}

// === Handlers ===

func (s *Server) handleBrowseLibrary(ctx context.Context, input *BrowseLibraryInput) (*LibraryPageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Library.Browse(ctx, userID, service.LibraryParams{
		Query:    input.Query,
		Sort:     service.SortOrder(input.Sort),
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(page.Books))
	for i, b := range page.Books {
		books[i] = mapBookResponse(b)
	}

	return &LibraryPageOutput{
		Body: LibraryPageResponse{
			Books:      books,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalBooks: page.TotalBooks,
			TotalPages: page.TotalPages,
		},
	}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, mapBookInput(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, mapBookInput(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookInput(req BookRequest) service.CreateBookInput {
	return service.CreateBookInput{
		Title:           req.Title,
		Authors:         req.Authors,
		ISBN:            req.ISBN,
		CoverURL:        req.CoverURL,
		Publisher:       req.Publisher,
		Tags:            req.Tags,
		FinishedMonth:   req.FinishedMonth,
		PublicationYear: req.PublicationYear,
		Notes:           req.Notes,
	}
}

func mapBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         b.Authors,
		ISBN:            b.ISBN,
		CoverURL:        b.CoverURL,
		Publisher:       b.Publisher,
		Tags:            b.Tags,
		FinishedMonth:   b.FinishedMonth,
		PublicationYear: b.PublicationYear,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
