package ports

import (
	"context"
	"io"

	"github.com/mkravets/studyassist/internal/core/domain"
)

// DocumentRepository persists and reads document upload state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIndexStats(ctx context.Context, id string, stats domain.IndexStats) error
}

// ChunkStore persists indexed chunks and serves full corpus snapshots
// to the retriever.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	ListChunks(ctx context.Context) ([]domain.Chunk, error)
	ListPreview(ctx context.Context, limit int) ([]domain.ChunkPreview, error)
	Clear(ctx context.Context) error
}

// TaskStore persists and retrieves user tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	ListTasks(ctx context.Context) ([]domain.Task, error)
	MarkTaskDone(ctx context.Context, taskID string) error
	DeleteTask(ctx context.Context, taskID string) error
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor extracts per-page plain text from a stored document.
type PageExtractor interface {
	ExtractPages(ctx context.Context, doc *domain.Document, pageLimit int) ([]string, error)
}

// Chunker splits one page of text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// ContextRetriever ranks indexed chunks against a free-text query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredChunk, model string) (string, error)
}
