package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkravets/studyassist/internal/core/domain"
)

type indexRepoFake struct {
	doc      *domain.Document
	statuses []domain.DocumentStatus
	lastErr  string
	stats    domain.IndexStats
	getErr   error
}

func (f *indexRepoFake) Create(context.Context, *domain.Document) error {
	return errors.New("not implemented")
}

func (f *indexRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *indexRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statuses = append(f.statuses, status)
	f.lastErr = errMessage
	return nil
}

func (f *indexRepoFake) SaveIndexStats(_ context.Context, _ string, stats domain.IndexStats) error {
	f.stats = stats
	return nil
}

type pageExtractorFake struct {
	pages     []string
	pageLimit int
	err       error
}

func (f *pageExtractorFake) ExtractPages(_ context.Context, _ *domain.Document, pageLimit int) ([]string, error) {
	f.pageLimit = pageLimit
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(text)
}

type indexChunkStoreFake struct {
	batches  [][]domain.Chunk
	inserted []domain.Chunk
	err      error
}

func (f *indexChunkStoreFake) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	if f.err != nil {
		return f.err
	}
	batch := make([]domain.Chunk, len(chunks))
	copy(batch, chunks)
	f.batches = append(f.batches, batch)
	f.inserted = append(f.inserted, batch...)
	return nil
}

func (f *indexChunkStoreFake) ListChunks(context.Context) ([]domain.Chunk, error) {
	return nil, errors.New("not implemented")
}

func (f *indexChunkStoreFake) ListPreview(context.Context, int) ([]domain.ChunkPreview, error) {
	return nil, errors.New("not implemented")
}

func (f *indexChunkStoreFake) Clear(context.Context) error {
	return errors.New("not implemented")
}

func TestIndexByIDInsertsChunksPerPage(t *testing.T) {
	repo := &indexRepoFake{doc: &domain.Document{ID: "d-1", Filename: "notes.pdf"}}
	extractor := &pageExtractorFake{pages: []string{"alpha beta", "", "gamma"}}
	store := &indexChunkStoreFake{}
	uc := NewIndexDocumentUseCase(repo, extractor, chunkerFake{}, store, IndexOptions{PageLimit: 5, BatchSize: 2})

	if err := uc.IndexByID(context.Background(), "d-1"); err != nil {
		t.Fatalf("IndexByID() error = %v", err)
	}
	if extractor.pageLimit != 5 {
		t.Fatalf("expected page limit 5 passed through, got %d", extractor.pageLimit)
	}
	if len(store.inserted) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(store.inserted))
	}
	if store.inserted[0].Source != "notes.pdf" || store.inserted[0].Page != 1 {
		t.Fatalf("unexpected first chunk %+v", store.inserted[0])
	}
	if store.inserted[2].Page != 3 {
		t.Fatalf("expected page 3 for last chunk, got %d", store.inserted[2].Page)
	}
	if repo.stats.Pages != 3 || repo.stats.Chunks != 3 {
		t.Fatalf("unexpected stats %+v", repo.stats)
	}
	want := []domain.DocumentStatus{domain.StatusIndexing, domain.StatusReady}
	if len(repo.statuses) != 2 || repo.statuses[0] != want[0] || repo.statuses[1] != want[1] {
		t.Fatalf("unexpected status transitions %v", repo.statuses)
	}
}

func TestIndexByIDBatchesInserts(t *testing.T) {
	repo := &indexRepoFake{doc: &domain.Document{ID: "d-1", Filename: "big.pdf"}}
	extractor := &pageExtractorFake{pages: []string{"a b c d e"}}
	store := &indexChunkStoreFake{}
	uc := NewIndexDocumentUseCase(repo, extractor, chunkerFake{}, store, IndexOptions{BatchSize: 2})

	if err := uc.IndexByID(context.Background(), "d-1"); err != nil {
		t.Fatalf("IndexByID() error = %v", err)
	}
	if len(store.batches) != 3 {
		t.Fatalf("expected 3 batches (2+2+1), got %d", len(store.batches))
	}
	if len(store.batches[2]) != 1 {
		t.Fatalf("expected trailing batch of 1, got %d", len(store.batches[2]))
	}
}

func TestIndexByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &indexRepoFake{doc: &domain.Document{ID: "d-1", Filename: "bad.pdf"}}
	extractor := &pageExtractorFake{err: errors.New("broken xref table")}
	uc := NewIndexDocumentUseCase(repo, extractor, chunkerFake{}, &indexChunkStoreFake{}, IndexOptions{})

	err := uc.IndexByID(context.Background(), "d-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statuses) != 2 || repo.statuses[1] != domain.StatusFailed {
		t.Fatalf("expected failed status recorded, got %v", repo.statuses)
	}
	if !strings.Contains(repo.lastErr, "broken xref table") {
		t.Fatalf("expected failure message persisted, got %q", repo.lastErr)
	}
}
