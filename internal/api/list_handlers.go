package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists",
		Summary:     "List book lists",
		Description: "Returns all of the user's lists with their books resolved in order",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "createList",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists",
		Summary:     "Create list",
		Description: "Creates a new named book list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "getList",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Get list",
		Description: "Returns one list with its books resolved in order",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetList)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateList",
		Method:      http.MethodPatch,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Update list",
		Description: "Renames a list or changes its cover",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Delete list",
		Description: "Removes a list. The books it referenced are untouched.",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "appendListBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists/{id}/books",
		Summary:     "Append book to list",
		Description: "Adds a book to the end of the list. Appending a book already present is a no-op.",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAppendListBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeListBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}/books/{bookID}",
		Summary:     "Remove book from list",
		Description: "Removes the book from the list's sequence",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveListBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderListBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists/{id}/reorder",
		Summary:     "Reorder list",
		Description: "Moves the entry at one position to another (remove then insert)",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderListBooks)
}

// === DTOs ===

// ListSummaryResponse contains list metadata and its raw book ID sequence.
type ListSummaryResponse struct {
	ID        int64     `json:"id" doc:"List ID"`
	Name      string    `json:"name" doc:"List name"`
	CoverURL  string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	BookIDs   []int64   `json:"book_ids" doc:"Ordered book IDs (may reference deleted books)"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListViewResponse contains a list with its books resolved for display.
type ListViewResponse struct {
	List  ListSummaryResponse `json:"list" doc:"List metadata"`
	Books []BookResponse      `json:"books" doc:"Resolved books in list order, dangling references filtered"`
}

// ListViewOutput wraps one resolved list for Huma.
type ListViewOutput struct {
	Body ListViewResponse
}

// ListListsResponse contains all of the user's lists.
type ListListsResponse struct {
	Lists []ListViewResponse `json:"lists" doc:"Lists, oldest first"`
}

// ListListsOutput wraps the list collection for Huma.
type ListListsOutput struct {
	Body ListListsResponse
}

// ListSummaryOutput wraps list metadata for Huma.
type ListSummaryOutput struct {
	Body ListSummaryResponse
}

// ListRequest is the request body for creating or updating a list.
type ListRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=50" doc:"List name"`
	CoverURL string `json:"cover_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
}

// ListsInput contains parameters for listing all lists.
type ListsInput struct {
	Authorization string `header:"Authorization"`
}

// CreateListInput wraps the create list request for Huma.
type CreateListInput struct {
	Authorization string `header:"Authorization"`
	Body          ListRequest
}

// GetListInput contains parameters for fetching one list.
type GetListInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
}

// UpdateListInput wraps the update list request for Huma.
type UpdateListInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
	Body          ListRequest
}

// DeleteListInput contains parameters for deleting one list.
type DeleteListInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
}

// AppendListBookRequest is the request body for appending a book.
type AppendListBookRequest struct {
	BookID int64 `json:"book_id" validate:"required" doc:"Book to append"`
}

// AppendListBookInput wraps the append request for Huma.
type AppendListBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
	Body          AppendListBookRequest
}

// RemoveListBookInput contains parameters for removing a book from a list.
type RemoveListBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
	BookID        int64  `path:"bookID" doc:"Book to remove"`
}

// ReorderListBooksRequest is the request body for a reorder.
type ReorderListBooksRequest struct {
	FromIndex int `json:"from_index" minimum:"0" doc:"Current position of the entry"`
	ToIndex   int `json:"to_index" minimum:"0" doc:"Position to move it to"`
}

// ReorderListBooksInput wraps the reorder request for Huma.
type ReorderListBooksInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"List ID"`
	Body          ReorderListBooksRequest
}

// === Handlers ===

func (s *Server) handleListLists(ctx context.Context, input *ListsInput) (*ListListsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	views, err := s.services.List.ListLists(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ListViewResponse, len(views))
	for i, v := range views {
		resp[i] = mapListView(v)
	}

	return &ListListsOutput{Body: ListListsResponse{Lists: resp}}, nil
}

func (s *Server) handleCreateList(ctx context.Context, input *CreateListInput) (*ListSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.CreateList(ctx, userID, input.Body.Name, input.Body.CoverURL)
	if err != nil {
		return nil, err
	}

	return &ListSummaryOutput{Body: mapListSummary(list)}, nil
}

func (s *Server) handleGetList(ctx context.Context, input *GetListInput) (*ListViewOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.List.GetList(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListViewOutput{Body: mapListView(view)}, nil
}

func (s *Server) handleUpdateList(ctx context.Context, input *UpdateListInput) (*ListSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.RenameList(ctx, userID, input.ID, input.Body.Name, input.Body.CoverURL)
	if err != nil {
		return nil, err
	}

	return &ListSummaryOutput{Body: mapListSummary(list)}, nil
}

func (s *Server) handleDeleteList(ctx context.Context, input *DeleteListInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.List.DeleteList(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "List deleted"}}, nil
}

func (s *Server) handleAppendListBook(ctx context.Context, input *AppendListBookInput) (*ListSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.AppendBook(ctx, userID, input.ID, input.Body.BookID)
	if err != nil {
		return nil, err
	}

	return &ListSummaryOutput{Body: mapListSummary(list)}, nil
}

func (s *Server) handleRemoveListBook(ctx context.Context, input *RemoveListBookInput) (*ListSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.RemoveBook(ctx, userID, input.ID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &ListSummaryOutput{Body: mapListSummary(list)}, nil
}

func (s *Server) handleReorderListBooks(ctx context.Context, input *ReorderListBooksInput) (*ListSummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.ReorderBooks(ctx, userID, input.ID, input.Body.FromIndex, input.Body.ToIndex)
	if err != nil {
		return nil, err
	}

	return &ListSummaryOutput{Body: mapListSummary(list)}, nil
}

// === Helpers ===

func mapListSummary(list *domain.BookList) ListSummaryResponse {
	return ListSummaryResponse{
		ID:        list.ID,
		Name:      list.Name,
		CoverURL:  list.CoverURL,
		BookIDs:   list.BookIDs,
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
}

func mapListView(view *service.ListView) ListViewResponse {
	books := make([]BookResponse, len(view.Books))
	for i, b := range view.Books {
		books[i] = mapBookResponse(b)
	}
	return ListViewResponse{
		List:  mapListSummary(view.List),
		Books: books,
	}
}
