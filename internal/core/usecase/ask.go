package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

type AskUseCase struct {
	retriever   ports.ContextRetriever
	chunks      ports.ChunkStore
	generator   ports.AnswerGenerator
	defaultTopK int
}

func NewAskUseCase(
	retriever ports.ContextRetriever,
	chunks ports.ChunkStore,
	generator ports.AnswerGenerator,
	defaultTopK int,
) *AskUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 4
	}
	return &AskUseCase{
		retriever:   retriever,
		chunks:      chunks,
		generator:   generator,
		defaultTopK: defaultTopK,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question string, topK int, model string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("empty question"))
	}
	if topK < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", fmt.Errorf("negative top_k %d", topK))
	}
	if topK == 0 {
		topK = uc.defaultTopK
	}

	sources, err := uc.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(sources) == 0 {
		sources, err = uc.fallbackContext(ctx, topK)
		if err != nil {
			return nil, err
		}
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, sources, model)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: sources,
	}, nil
}

// fallbackContext hands the generator the first stored chunks when
// retrieval produced nothing, so the model can at least say what the
// knowledge base looks like.
func (uc *AskUseCase) fallbackContext(ctx context.Context, limit int) ([]domain.ScoredChunk, error) {
	chunks, err := uc.chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fallback chunks: %w", err)
	}
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	out := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, domain.ScoredChunk{Source: c.Source, Page: c.Page, Text: c.Text, Score: 0.0})
	}
	return out, nil
}
