package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/askpdf/askpdf/pkg/log"
)

// Generator produces a natural-language answer from a prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// Canned user-facing answers. Generation problems are recovered into these
// rather than propagated: an answer-shaped response is always preferred.
const (
	NoRelevantInfoAnswer  = "Sorry, I couldn't find any relevant information in the uploaded documents to answer your question."
	GenerationErrorAnswer = "An error occurred while trying to generate an answer."
	QADisabledAnswer      = "Question answering is disabled: no generative model API key is configured."
)

// chunkSeparator joins retrieved chunks so the model can see their boundaries.
const chunkSeparator = "\n\n---\n\n"

// QueryService orchestrates retrieval and answer generation. generator may be
// nil when no API key is configured; questions then get QADisabledAnswer.
type QueryService struct {
	store     VectorStore
	generator Generator
	maxK      int
}

func NewQueryService(vectorStore VectorStore, generator Generator, maxK int) *QueryService {
	if maxK <= 0 {
		maxK = 10
	}
	return &QueryService{
		store:     vectorStore,
		generator: generator,
		maxK:      maxK,
	}
}

// Answer retrieves the k most relevant chunks for question and asks the
// generative model to answer from them. The returned string is always
// answer-shaped on success paths, including the no-match and
// generation-failure fallbacks.
func (s *QueryService) Answer(ctx context.Context, question string, k int) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}
	if k < 1 || k > s.maxK {
		return "", fmt.Errorf("%w: k_results must be between 1 and %d", ErrInvalidInput, s.maxK)
	}

	if s.generator == nil {
		log.Warnf("question received but answer generation is disabled")
		return QADisabledAnswer, nil
	}

	contexts, err := s.store.Query(ctx, question, k)
	if err != nil {
		log.Errorf("context retrieval failed for question %q: %v", question, err)
		return "", fmt.Errorf("%w: could not search for context", ErrStorageFailed)
	}
	if len(contexts) == 0 {
		log.Infof("no relevant chunks found for question %q", question)
		return NoRelevantInfoAnswer, nil
	}

	prompt := buildPrompt(question, strings.Join(contexts, chunkSeparator))
	answer, err := s.generator.GenerateAnswer(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrGenerationTimeout) {
			log.Errorf("answer generation timed out for question %q: %v", question, err)
		} else {
			log.Errorf("answer generation failed for question %q: %v", question, err)
		}
		return GenerationErrorAnswer, nil
	}

	log.Infof("answer generated for question %q using %d context chunks", question, len(contexts))
	return answer, nil
}

// buildPrompt embeds the retrieved context and the question verbatim. The
// wording is tunable; the constraints (answer only from context, fixed
// not-found sentence) are not.
func buildPrompt(question, context string) string {
	return fmt.Sprintf(
		"Using ONLY the information provided in the following context (from uploaded PDF documents), "+
			"answer the user's question accurately, clearly, and respectfully. "+
			"If the answer is not present in the context, respond with: "+
			"'Sorry, I could not find relevant information in the provided documents.'\n\n"+
			"Context (from PDF documents):\n%s\n\n"+
			"User's Question:\n%s\n\n"+
			"Your Answer (cite the context if possible):",
		context, question)
}
