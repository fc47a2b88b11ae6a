// Package store persists document chunks and their embeddings in sqlite and
// answers nearest-neighbour queries over them. Embedding computation is
// delegated to the EmbedderFunc bound to the collection at construction time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/askpdf/askpdf/pkg/log"
)

// EmbedderFunc turns text into a vector. A nil embedder is allowed: chunks are
// then stored without embeddings (degraded, ingestion-only mode).
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// SQLiteStore is the vector store. It exclusively owns chunk persistence and
// the embedding index; similarity metric and ranking live here.
type SQLiteStore struct {
	db            *sql.DB
	collection    string
	embedder      EmbedderFunc
	minSimilarity float64
}

// NewSQLiteStore opens (or creates) the database at dataSourceName and binds
// the store to one named collection. minSimilarity below or equal to zero
// disables the relevance cutoff.
func NewSQLiteStore(dataSourceName, collection string, embedder EmbedderFunc, minSimilarity float64) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{
		db:            db,
		collection:    collection,
		embedder:      embedder,
		minSimilarity: minSimilarity,
	}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS documents (
        id TEXT PRIMARY KEY, -- UUID
        collection TEXT NOT NULL,
        filename TEXT NOT NULL,
        byte_size INTEGER NOT NULL,
        content_md5 TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY, -- "{documentID}_{index}"
        collection TEXT NOT NULL,
        document_id TEXT NOT NULL,
        idx INTEGER NOT NULL,
        content TEXT NOT NULL,
        source_document TEXT NOT NULL,
        embedding_json TEXT, -- JSON-encoded []float32, may be NULL
        FOREIGN KEY (document_id) REFERENCES documents (id)
    );

    CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks (collection);
    CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Add persists one document and all of its chunks in a single transaction, so
// the bulk write is all-or-nothing. texts, ids and metadatas must be parallel
// slices in chunk order. Embeddings are computed here through the bound
// embedder before the transaction opens, so a failed embedding leaves the
// store untouched.
func (s *SQLiteStore) Add(ctx context.Context, doc *Document, texts, ids []string, metadatas []Metadata) error {
	if len(texts) != len(ids) || len(texts) != len(metadatas) {
		return fmt.Errorf("mismatched bulk add: %d texts, %d ids, %d metadatas", len(texts), len(ids), len(metadatas))
	}

	embeddings := make([]string, len(texts))
	for i, text := range texts {
		if s.embedder == nil {
			continue // Stored without a vector; never retrievable until re-embedded
		}
		vec, err := s.embedder(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %s: %w", ids[i], err)
		}
		encoded, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for chunk %s: %w", ids[i], err)
		}
		embeddings[i] = string(encoded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc.CreatedAt = time.Now()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (id, collection, filename, byte_size, content_md5, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, s.collection, doc.Filename, doc.ByteSize, doc.ContentMD5, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, collection, document_id, idx, content, source_document, embedding_json) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range texts {
		var embeddingJSON interface{}
		if embeddings[i] != "" {
			embeddingJSON = embeddings[i]
		}
		if _, err := stmt.ExecContext(ctx, ids[i], s.collection, doc.ID, i, texts[i], metadatas[i].SourceDocument, embeddingJSON); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", ids[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk add: %w", err)
	}
	doc.ChunkCount = len(texts)
	return nil
}

type scoredChunk struct {
	content    string
	similarity float64
}

// Query embeds the question and returns the texts of the k most similar
// chunks in the collection, best first. Chunks below the configured minimum
// similarity, or stored without an embedding, are excluded.
func (s *SQLiteStore) Query(ctx context.Context, question string, k int) ([]string, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder bound to collection %q", s.collection)
	}

	queryEmbedding, err := s.embedder(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, embedding_json FROM chunks WHERE collection = ?", s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var scored []scoredChunk
	for rows.Next() {
		var id, content string
		var embeddingJSON sql.NullString
		if err := rows.Scan(&id, &content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if !embeddingJSON.Valid || embeddingJSON.String == "" {
			log.Warnf("skipping chunk %s: no stored embedding", id)
			continue
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingJSON.String), &embedding); err != nil {
			log.Warnf("skipping chunk %s: bad embedding json: %v", id, err)
			continue
		}
		similarity, err := cosineSimilarity(queryEmbedding, embedding)
		if err != nil {
			log.Warnf("skipping chunk %s: %v", id, err)
			continue
		}
		if s.minSimilarity > 0 && similarity < s.minSimilarity {
			continue
		}
		scored = append(scored, scoredChunk{content: content, similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if k < len(scored) {
		scored = scored[:k]
	}

	results := make([]string, len(scored))
	for i, sc := range scored {
		results[i] = sc.content
	}
	return results, nil
}

// CountChunks reports the number of stored chunks in the collection.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// ListDocuments returns the documents of the collection, newest first, with
// their stored chunk counts.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT d.id, d.filename, d.byte_size, d.content_md5, d.created_at, COUNT(c.id)
        FROM documents d
        LEFT JOIN chunks c ON c.document_id = d.id
        WHERE d.collection = ?
        GROUP BY d.id
        ORDER BY d.created_at DESC`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.ByteSize, &doc.ContentMD5, &doc.CreatedAt, &doc.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return docs, nil
}
