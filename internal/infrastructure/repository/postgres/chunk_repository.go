package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mkravets/studyassist/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO chunks (source, page, content) VALUES ")
	args := make([]interface{}, 0, len(chunks)*3)
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "($%d,$%d,$%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, c.Source, c.Page, c.Text)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source, page, content
FROM chunks
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Chunk, 0)
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.Source, &c.Page, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) ListPreview(ctx context.Context, limit int) ([]domain.ChunkPreview, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source, page, LENGTH(content), SUBSTR(content, 1, 160)
FROM chunks
ORDER BY id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list chunk preview: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChunkPreview, 0)
	for rows.Next() {
		var p domain.ChunkPreview
		if err := rows.Scan(&p.Source, &p.Page, &p.Length, &p.Preview); err != nil {
			return nil, fmt.Errorf("scan chunk preview: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk previews: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	return nil
}
