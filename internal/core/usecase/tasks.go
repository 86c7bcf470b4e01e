package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

type TaskUseCase struct {
	store ports.TaskStore
}

func NewTaskUseCase(store ports.TaskStore) *TaskUseCase {
	return &TaskUseCase{store: store}
}

func (uc *TaskUseCase) AddTask(
	ctx context.Context,
	title, notes string,
	dueAt *time.Time,
	priority domain.TaskPriority,
) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add task", errors.New("empty title"))
	}
	switch priority {
	case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
	case "":
		priority = domain.TaskPriorityMedium
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "add task", fmt.Errorf("unknown priority %q", priority))
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Notes:     notes,
		Priority:  priority,
		Status:    domain.TaskStatusTodo,
		DueAt:     dueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (uc *TaskUseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (uc *TaskUseCase) CompleteTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "complete task", errors.New("empty task id"))
	}
	if err := uc.store.MarkTaskDone(ctx, taskID); err != nil {
		return fmt.Errorf("mark task done: %w", err)
	}
	return nil
}

func (uc *TaskUseCase) DeleteTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete task", errors.New("empty task id"))
	}
	if err := uc.store.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
