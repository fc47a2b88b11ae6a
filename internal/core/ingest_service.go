package core

import (
	"context"
	"crypto/md5"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/askpdf/askpdf/internal/chunker"
	"github.com/askpdf/askpdf/internal/store"
	"github.com/askpdf/askpdf/pkg/log"
)

// Extractor produces the plain text content of a PDF.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// VectorStore is the slice of the store the pipelines need.
type VectorStore interface {
	Add(ctx context.Context, doc *store.Document, texts, ids []string, metadatas []store.Metadata) error
	Query(ctx context.Context, question string, k int) ([]string, error)
}

// IngestService orchestrates extractor, chunker and vector store for one
// uploaded document. Stateless between calls.
type IngestService struct {
	extractor Extractor
	store     VectorStore
	chunkSize int
}

func NewIngestService(extractor Extractor, vectorStore VectorStore, chunkSize int) *IngestService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &IngestService{
		extractor: extractor,
		store:     vectorStore,
		chunkSize: chunkSize,
	}
}

// IngestResult reports one completed ingestion. NoContent marks the normal
// outcome for PDFs with no extractable text (scanned or image-only files);
// nothing is stored in that case.
type IngestResult struct {
	DocumentID string
	Filename   string
	ChunkCount int
	NoContent  bool
}

// Ingest validates the upload, extracts and chunks its text, and stores all
// chunks in one bulk call. Input errors are rejected before any collaborator
// runs; extraction and storage failures abort with no partial write.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: no file name provided", ErrInvalidInput)
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, fmt.Errorf("%w: invalid file type, only PDF files are allowed", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded PDF file is empty", ErrInvalidInput)
	}

	text, err := s.extractor.ExtractText(ctx, data)
	if err != nil {
		log.Errorf("pdf extraction failed for %s: %v", filename, err)
		return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, filename)
	}

	if strings.TrimSpace(text) == "" {
		log.Warnf("no text content found in %s", filename)
		return &IngestResult{Filename: filename, NoContent: true}, nil
	}

	chunks, err := chunker.Chunk(text, s.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(chunks) == 0 {
		log.Warnf("text content of %s produced zero chunks", filename)
		return &IngestResult{Filename: filename, NoContent: true}, nil
	}

	documentID := uuid.NewString()
	ids := make([]string, len(chunks))
	metadatas := make([]store.Metadata, len(chunks))
	for i := range chunks {
		ids[i] = fmt.Sprintf("%s_%d", documentID, i)
		metadatas[i] = store.Metadata{SourceDocument: filename}
	}

	doc := &store.Document{
		ID:         documentID,
		Filename:   filename,
		ByteSize:   int64(len(data)),
		ContentMD5: fmt.Sprintf("%x", md5.Sum(data)),
	}
	if err := s.store.Add(ctx, doc, chunks, ids, metadatas); err != nil {
		log.Errorf("bulk add failed for %s (document %s): %v", filename, documentID, err)
		return nil, fmt.Errorf("%w: could not store document chunks", ErrStorageFailed)
	}

	log.Infow("document ingested",
		"filename", filename,
		"document_id", documentID,
		"chunks", len(chunks),
	)
	return &IngestResult{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: len(chunks),
	}, nil
}
