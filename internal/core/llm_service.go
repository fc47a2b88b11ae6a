package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/askpdf/askpdf/pkg/log"
)

// LLMService wraps the Gemini client. It serves two roles: the embedding
// function bound to the vector store collection, and the answer generator of
// the query pipeline. Constructed once at startup and shared by all requests.
type LLMService struct {
	client          *genai.Client
	embeddingModel  string
	generativeModel string
	timeout         time.Duration
}

// NewLLMService creates the Gemini client. timeout bounds every generation
// call; embeddings use the caller's context as-is.
func NewLLMService(ctx context.Context, apiKey, embeddingModel, generativeModel string, timeout time.Duration) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{
		client:          client,
		embeddingModel:  embeddingModel,
		generativeModel: generativeModel,
		timeout:         timeout,
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Error("error closing GenAI client", err)
		}
	}
}

// GetEmbedding returns the embedding vector for text. Passed into the vector
// store as its bound embedder.
func (s *LLMService) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s == nil || s.client == nil {
		return nil, ErrNotInitialized
	}
	em := s.client.EmbeddingModel(s.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

// GenerateAnswer sends one prompt to the generative model and returns its
// text. A deadline overrun is reported as ErrGenerationTimeout, any other
// failure as ErrGenerationFailed.
func (s *LLMService) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrNotInitialized
	}
	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	model := s.client.GenerativeModel(s.generativeModel)
	resp, err := model.GenerateContent(genCtx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || genCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %s: %v", ErrGenerationTimeout, s.timeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from gemini", ErrGenerationFailed)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Warnf("gemini response part was not text: %T", part)
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text parts", ErrGenerationFailed)
	}
	return responseText.String(), nil
}
