package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/askpdf/askpdf/internal/core"
	"github.com/askpdf/askpdf/internal/store"
	"github.com/askpdf/askpdf/pkg/log"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Ingestor runs the ingestion pipeline for one uploaded PDF.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte) (*core.IngestResult, error)
}

// Answerer runs the query pipeline for one question.
type Answerer interface {
	Answer(ctx context.Context, question string, k int) (string, error)
}

// DocumentLister lists ingested documents.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]store.Document, error)
}

type APIHandler struct {
	ingestor       Ingestor
	answerer       Answerer
	documents      DocumentLister
	maxUploadBytes int64
}

func NewAPIHandler(ingestor Ingestor, answerer Answerer, documents DocumentLister, maxUploadMB int64) *APIHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &APIHandler{
		ingestor:       ingestor,
		answerer:       answerer,
		documents:      documents,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// HomeHandler serves the upload and question forms.
func (h *APIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		log.Error("failed to render home page", err)
	}
}

// UploadPDFHandler accepts a multipart PDF upload and runs the ingestion
// pipeline. Validation failures get specific 400 details; collaborator
// failures get generic 500 details so no internals leak.
func (h *APIHandler) UploadPDFHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "A PDF file is required in the 'file' form field.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			writeDetail(w, http.StatusBadRequest, clientDetail(err))
		case errors.Is(err, core.ErrExtractionFailed):
			writeDetail(w, http.StatusInternalServerError, "Server error processing PDF.")
		case errors.Is(err, core.ErrStorageFailed):
			writeDetail(w, http.StatusInternalServerError, "Database error during PDF processing.")
		default:
			log.Errorf("unexpected error during upload of %s: %v", header.Filename, err)
			writeDetail(w, http.StatusInternalServerError, "An unexpected error occurred during file upload.")
		}
		return
	}

	if result.NoContent {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("No text content found in %s. The file might be image-based, empty, or password-protected.", result.Filename),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("Successfully uploaded and processed %s. %d text chunks stored.", result.Filename, result.ChunkCount),
		"document_id": result.DocumentID,
		"chunk_count": result.ChunkCount,
	})
}

// AskHandler answers a form-posted question from the ingested documents.
func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	// PostFormValue parses both urlencoded and multipart form bodies.
	question := r.PostFormValue("question")
	kResults := 3
	if raw := r.PostFormValue("k_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "k_results must be an integer.")
			return
		}
		kResults = parsed
	}

	answer, err := h.answerer.Answer(r.Context(), question, kResults)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			writeDetail(w, http.StatusBadRequest, clientDetail(err))
		case errors.Is(err, core.ErrStorageFailed):
			writeDetail(w, http.StatusInternalServerError, "Database error while searching for context.")
		default:
			log.Errorf("unexpected error answering question: %v", err)
			writeDetail(w, http.StatusInternalServerError, "Error generating answer.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// ListDocumentsHandler reports the ingested documents and their chunk counts.
func (h *APIHandler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListDocuments(r.Context())
	if err != nil {
		log.Error("failed to list documents", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list documents.")
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// PingHandler is the liveness probe of the QA routes.
func (h *APIHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "QA router is working!"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response body", err)
	}
}

// writeDetail emits the {"detail": ...} error shape used by every endpoint.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// clientDetail strips the internal error-kind prefix from a validation error,
// leaving the caller-facing message.
func clientDetail(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
