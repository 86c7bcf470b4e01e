package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

const defaultPreviewLimit = 200

// KnowledgeAdminUseCase exposes KB inspection and maintenance.
type KnowledgeAdminUseCase struct {
	chunks ports.ChunkStore
}

func NewKnowledgeAdminUseCase(chunks ports.ChunkStore) *KnowledgeAdminUseCase {
	return &KnowledgeAdminUseCase{chunks: chunks}
}

func (uc *KnowledgeAdminUseCase) Preview(ctx context.Context, limit int) ([]domain.ChunkPreview, error) {
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	rows, err := uc.chunks.ListPreview(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list chunk preview: %w", err)
	}
	return rows, nil
}

func (uc *KnowledgeAdminUseCase) Clear(ctx context.Context) error {
	if err := uc.chunks.Clear(ctx); err != nil {
		return fmt.Errorf("clear knowledge base: %w", err)
	}
	return nil
}
