package ports

import (
	"context"
	"io"
	"time"

	"github.com/mkravets/studyassist/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentIndexer is the inbound contract for asynchronous PDF indexing.
type DocumentIndexer interface {
	IndexByID(ctx context.Context, documentID string) error
}

// KnowledgeQueryService is the inbound contract for question answering.
type KnowledgeQueryService interface {
	Ask(ctx context.Context, question string, topK int, model string) (*domain.Answer, error)
}

// KnowledgeAdminService exposes KB inspection and maintenance.
type KnowledgeAdminService interface {
	Preview(ctx context.Context, limit int) ([]domain.ChunkPreview, error)
	Clear(ctx context.Context) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// TaskService is the inbound contract for the study task planner.
type TaskService interface {
	AddTask(ctx context.Context, title, notes string, dueAt *time.Time, priority domain.TaskPriority) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CompleteTask(ctx context.Context, taskID string) error
	DeleteTask(ctx context.Context, taskID string) error
}
