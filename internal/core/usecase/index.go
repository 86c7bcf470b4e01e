package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

type IndexOptions struct {
	PageLimit int
	BatchSize int
}

// IndexDocumentUseCase turns an uploaded PDF into indexed chunk rows:
// extract per-page text, split each page, insert in small batches so a
// huge document never accumulates in memory.
type IndexDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.PageExtractor
	chunker   ports.Chunker
	chunks    ports.ChunkStore
	opts      IndexOptions
}

func NewIndexDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.PageExtractor,
	chunker ports.Chunker,
	chunks ports.ChunkStore,
	opts IndexOptions,
) *IndexDocumentUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &IndexDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		chunks:    chunks,
		opts:      opts,
	}
}

func (uc *IndexDocumentUseCase) IndexByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusIndexing, ""); err != nil {
		return fmt.Errorf("set status=indexing: %w", err)
	}

	stats, err := uc.indexPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveIndexStats(ctx, documentID, stats); err != nil {
		return fmt.Errorf("save index stats: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *IndexDocumentUseCase) indexPipeline(ctx context.Context, documentID string) (domain.IndexStats, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("fetch document by id: %w", err)
	}

	pages, err := uc.extractor.ExtractPages(ctx, doc, uc.opts.PageLimit)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("extract pages: %w", err)
	}

	total := 0
	batch := make([]domain.Chunk, 0, uc.opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := uc.chunks.InsertChunks(ctx, batch); err != nil {
			return fmt.Errorf("insert chunk batch: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for pageIndex, pageText := range pages {
		for _, piece := range uc.chunker.Split(pageText) {
			batch = append(batch, domain.Chunk{
				Source: doc.Filename,
				Page:   pageIndex + 1,
				Text:   piece,
			})
			if len(batch) >= uc.opts.BatchSize {
				if err := flush(); err != nil {
					return domain.IndexStats{}, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return domain.IndexStats{}, err
	}

	return domain.IndexStats{Pages: len(pages), Chunks: total}, nil
}
