package bootstrap

import (
	"context"
	"fmt"

	"github.com/mkravets/studyassist/internal/config"
	"github.com/mkravets/studyassist/internal/core/ports"
	"github.com/mkravets/studyassist/internal/core/retrieval"
	"github.com/mkravets/studyassist/internal/core/usecase"
	"github.com/mkravets/studyassist/internal/infrastructure/chunking"
	"github.com/mkravets/studyassist/internal/infrastructure/export/excel"
	pdfextractor "github.com/mkravets/studyassist/internal/infrastructure/extractor/pdf"
	"github.com/mkravets/studyassist/internal/infrastructure/llm/groq"
	"github.com/mkravets/studyassist/internal/infrastructure/queue/nats"
	"github.com/mkravets/studyassist/internal/infrastructure/repository/postgres"
	"github.com/mkravets/studyassist/internal/infrastructure/resilience"
	"github.com/mkravets/studyassist/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.DocumentRepository
	IngestUC ports.DocumentIngestor
	IndexUC  ports.DocumentIndexer
	AskUC    ports.KnowledgeQueryService
	KBUC     ports.KnowledgeAdminService
	TaskUC   ports.TaskService
	Exporter *excel.Exporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunks := postgres.NewChunkRepository(db)
	tasks := postgres.NewTaskRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator := groq.New(cfg.GroqURL, cfg.GroqAPIKey, cfg.GroqModel, groq.WithExecutor(executor))

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkChars, cfg.MaxPageChars)
	extractor := pdfextractor.NewExtractor(storage)
	retriever := retrieval.NewRetriever(chunks, retrieval.Params{K1: cfg.BM25K1, B: cfg.BM25B})

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	indexUC := usecase.NewIndexDocumentUseCase(repo, extractor, chunker, chunks, usecase.IndexOptions{
		PageLimit: cfg.PageLimit,
		BatchSize: cfg.InsertBatchSize,
	})
	askUC := usecase.NewAskUseCase(retriever, chunks, generator, cfg.RAGTopK)
	kbUC := usecase.NewKnowledgeAdminUseCase(chunks)
	taskUC := usecase.NewTaskUseCase(tasks)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC: ingestUC,
		IndexUC:  indexUC,
		AskUC:    askUC,
		KBUC:     kbUC,
		TaskUC:   taskUC,
		Exporter: excel.NewExporter(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
