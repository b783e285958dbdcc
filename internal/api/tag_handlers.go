package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags in the user's library with usage counts",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/rename",
		Summary:     "Rename tag",
		Description: "Renames a tag across the whole library. Renaming onto an existing tag collapses the two.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/delete",
		Summary:     "Delete tag",
		Description: "Removes a tag from every book carrying it. Destructive and not undoable.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/merge",
		Summary:     "Merge tags",
		Description: "Replaces all source tags with the target tag across the library",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMergeTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "conditionalAddTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/conditional-add",
		Summary:     "Conditionally add tag",
		Description: "Adds a tag to every book that carries the condition tag. Idempotent.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleConditionalAddTag)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Authorization string `header:"Authorization"`
}

// TagCountResponse is one tag with its usage count.
type TagCountResponse struct {
	Tag   string `json:"tag" doc:"Tag name"`
	Count int    `json:"count" doc:"Number of books carrying the tag"`
}

// ListTagsResponse contains the user's tags ordered by count descending.
type ListTagsResponse struct {
	Tags []TagCountResponse `json:"tags" doc:"Tags with counts, most used first"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// RenameTagRequest is the request body for a tag rename.
type RenameTagRequest struct {
	From string `json:"from" validate:"required,max=100" doc:"Existing tag name (exact match)"`
	To   string `json:"to" validate:"required,max=100" doc:"New tag name"`
}

// RenameTagInput wraps the rename request for Huma.
type RenameTagInput struct {
	Authorization string `header:"Authorization"`
	Body          RenameTagRequest
}

// DeleteTagRequest is the request body for a tag delete.
type DeleteTagRequest struct {
	Tag string `json:"tag" validate:"required,max=100" doc:"Tag to remove everywhere"`
}

// DeleteTagInput wraps the delete request for Huma.
type DeleteTagInput struct {
	Authorization string `header:"Authorization"`
	Body          DeleteTagRequest
}

// MergeTagsRequest is the request body for a tag merge.
type MergeTagsRequest struct {
	Sources []string `json:"sources" validate:"required,min=1,dive,required,max=100" doc:"Tags to merge away"`
	Target  string   `json:"target" validate:"required,max=100" doc:"Tag that replaces the sources"`
}

// MergeTagsInput wraps the merge request for Huma.
type MergeTagsInput struct {
	Authorization string `header:"Authorization"`
	Body          MergeTagsRequest
}

// ConditionalAddTagRequest is the request body for a conditional add.
type ConditionalAddTagRequest struct {
	If  string `json:"if" validate:"required,max=100" doc:"Condition tag"`
	Add string `json:"add" validate:"required,max=100" doc:"Tag to add where the condition tag is present"`
}

// ConditionalAddTagInput wraps the conditional add request for Huma.
type ConditionalAddTagInput struct {
	Authorization string `header:"Authorization"`
	Body          ConditionalAddTagRequest
}

// BatchResultResponse reports how many books a batch operation touched.
type BatchResultResponse struct {
	AffectedBooks int `json:"affected_books" doc:"Number of books written"`
}

// BatchResultOutput wraps the batch result for Huma.
type BatchResultOutput struct {
	Body BatchResultResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Tag.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagCountResponse, len(counts))
	for i, c := range counts {
		resp[i] = TagCountResponse{Tag: c.Tag, Count: c.Count}
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleRenameTag(ctx context.Context, input *RenameTagInput) (*BatchResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	affected, err := s.services.Tag.RenameTag(ctx, userID, input.Body.From, input.Body.To)
	if err != nil {
		return nil, err
	}

	return &BatchResultOutput{Body: BatchResultResponse{AffectedBooks: affected}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*BatchResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	affected, err := s.services.Tag.DeleteTag(ctx, userID, input.Body.Tag)
	if err != nil {
		return nil, err
	}

	return &BatchResultOutput{Body: BatchResultResponse{AffectedBooks: affected}}, nil
}

func (s *Server) handleMergeTags(ctx context.Context, input *MergeTagsInput) (*BatchResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	affected, err := s.services.Tag.MergeTags(ctx, userID, input.Body.Sources, input.Body.Target)
	if err != nil {
		return nil, err
	}

	return &BatchResultOutput{Body: BatchResultResponse{AffectedBooks: affected}}, nil
}

func (s *Server) handleConditionalAddTag(ctx context.Context, input *ConditionalAddTagInput) (*BatchResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	affected, err := s.services.Tag.ConditionalAddTag(ctx, userID, input.Body.If, input.Body.Add)
	if err != nil {
		return nil, err
	}

	return &BatchResultOutput{Body: BatchResultResponse{AffectedBooks: affected}}, nil
}
