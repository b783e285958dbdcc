package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/transfer"
)

func (s *Server) registerTransferRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export library as CSV",
		Description: "Streams the full library in the native CSV layout, oldest book first",
		Tags:        []string{"Transfer"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/import",
		Summary:     "Import library from CSV",
		Description: "Accepts a native or Goodreads CSV export and creates the rows as new books. Malformed rows are skipped and counted.",
		Tags:        []string{"Transfer"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleImportLibrary)
}

// === DTOs ===

// ExportLibraryInput contains parameters for a CSV export.
type ExportLibraryInput struct {
	Authorization string `header:"Authorization"`
}

// ExportLibraryOutput carries the raw CSV. A []byte body is written
// as-is, so the export bypasses the JSON envelope.
type ExportLibraryOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ImportLibraryInput carries the uploaded CSV verbatim.
type ImportLibraryInput struct {
	Authorization string `header:"Authorization"`
	RawBody       []byte `contentType:"text/csv"`
}

// ImportResultResponse reports the outcome of an import.
type ImportResultResponse struct {
	Imported int `json:"imported" doc:"Rows created as books"`
	Failed   int `json:"failed" doc:"Rows skipped as malformed"`
}

// ImportResultOutput wraps the import result for Huma.
type ImportResultOutput struct {
	Body ImportResultResponse
}

// === Handlers ===

func (s *Server) handleExportLibrary(ctx context.Context, input *ExportLibraryInput) (*ExportLibraryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.services.Transfer.Export(ctx, userID, &buf); err != nil {
		return nil, err
	}

	filename := "onlibrary-export-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	return &ExportLibraryOutput{
		ContentType:        "text/csv; charset=utf-8",
		ContentDisposition: `attachment; filename="` + filename + `"`,
		Body:               buf.Bytes(),
	}, nil
}

func (s *Server) handleImportLibrary(ctx context.Context, input *ImportLibraryInput) (*ImportResultOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("Empty upload")
	}

	result, err := s.services.Transfer.Import(ctx, userID, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}

	return &ImportResultOutput{Body: mapImportResult(result)}, nil
}

// === Helpers ===

func mapImportResult(r *transfer.ImportResult) ImportResultResponse {
	return ImportResultResponse{Imported: r.Imported, Failed: r.Failed}
}
