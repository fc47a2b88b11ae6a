package store

import "time"

// Document is one uploaded PDF. Created on upload, never mutated; this service
// exposes no delete endpoint.
type Document struct {
	ID         string    `json:"id"` // UUID
	Filename   string    `json:"filename"`
	ByteSize   int64     `json:"byte_size"`
	ContentMD5 string    `json:"-"` // Bookkeeping only, no dedup is performed
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a contiguous slice of a document's extracted text, the unit of
// storage and retrieval. IDs follow the "{documentID}_{index}" convention.
type Chunk struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	Index          int       `json:"index"`
	Content        string    `json:"content"`
	SourceDocument string    `json:"source_document"`
	Embedding      []float32 `json:"-"` // Stored as a JSON string in sqlite
}

// Metadata accompanies one chunk into the store.
type Metadata struct {
	SourceDocument string
}
