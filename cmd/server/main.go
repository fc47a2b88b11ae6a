package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/askpdf/askpdf/internal/api"
	"github.com/askpdf/askpdf/internal/config"
	"github.com/askpdf/askpdf/internal/core"
	"github.com/askpdf/askpdf/internal/extract"
	"github.com/askpdf/askpdf/internal/store"
	"github.com/askpdf/askpdf/pkg/log"
)

func main() {
	cfg := config.Load()

	log.Init(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	ingestFlag := flag.String("ingest", "", "Ingest one local PDF file and exit")
	flag.Parse()

	// The Gemini client is optional: without an API key the service runs in
	// ingestion-only mode and /ask returns a disabled-feature message.
	var llmService *core.LLMService
	var embedder store.EmbedderFunc
	var generator core.Generator
	if cfg.GeminiAPIKey != "" {
		var err error
		llmService, err = core.NewLLMService(
			context.Background(),
			cfg.GeminiAPIKey,
			cfg.EmbeddingModel,
			cfg.GeminiModel,
			time.Duration(cfg.GenerationTimeoutSeconds)*time.Second,
		)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer llmService.Close()
		embedder = llmService.GetEmbedding
		generator = llmService
	} else {
		log.Warnf("GEMINI_API_KEY not set. Question answering is disabled; chunks are stored without embeddings.")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL, cfg.CollectionName, embedder, cfg.MinSimilarity)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer dbStore.Close()

	ingestService := core.NewIngestService(extract.NewPDFExtractor(), dbStore, cfg.ChunkSize)
	queryService := core.NewQueryService(dbStore, generator, cfg.MaxKResults)

	if *ingestFlag != "" {
		runLocalIngest(ingestService, *ingestFlag)
		return
	}

	apiHandler := api.NewAPIHandler(ingestService, queryService, dbStore, cfg.MaxUploadMB)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s. Press Ctrl+C to quit.", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", srv.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited gracefully")
}

// runLocalIngest pushes one file from disk through the same pipeline the
// upload endpoint uses.
func runLocalIngest(ingestService *core.IngestService, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	result, err := ingestService.Ingest(context.Background(), filepath.Base(path), data)
	if err != nil {
		log.Fatalf("Ingestion of %s failed: %v", path, err)
	}
	if result.NoContent {
		log.Warnf("No text content found in %s; nothing stored.", path)
		return
	}
	log.Infof("Ingested %s: document %s, %d chunks stored.", path, result.DocumentID, result.ChunkCount)
}
