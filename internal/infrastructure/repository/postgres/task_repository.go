package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkravets/studyassist/internal/core/domain"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, title, notes, priority, status, due_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, task.ID, task.Title, task.Notes, string(task.Priority), string(task.Status), task.DueAt, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, notes, priority, status, due_at, created_at, updated_at
FROM tasks
ORDER BY status DESC, due_at ASC NULLS LAST, created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) MarkTaskDone(ctx context.Context, taskID string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET status = $2, updated_at = $3
WHERE id = $1
`, taskID, string(domain.TaskStatusDone), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark task done: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark task done rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrTaskNotFound, "mark task done", fmt.Errorf("id=%s", taskID))
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, taskID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrTaskNotFound, "delete task", fmt.Errorf("id=%s", taskID))
	}
	return nil
}

type taskScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row taskScanner) (domain.Task, error) {
	var task domain.Task
	var priority, status string
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Notes,
		&priority,
		&status,
		&task.DueAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	return task, nil
}
