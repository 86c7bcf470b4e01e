package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkravets/studyassist/internal/core/domain"
)

type taskStoreFake struct {
	created   *domain.Task
	tasks     []domain.Task
	doneID    string
	deletedID string
	err       error
}

func (f *taskStoreFake) CreateTask(_ context.Context, task *domain.Task) error {
	if f.err != nil {
		return f.err
	}
	copyTask := *task
	f.created = &copyTask
	return nil
}

func (f *taskStoreFake) ListTasks(context.Context) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *taskStoreFake) MarkTaskDone(_ context.Context, taskID string) error {
	if f.err != nil {
		return f.err
	}
	f.doneID = taskID
	return nil
}

func (f *taskStoreFake) DeleteTask(_ context.Context, taskID string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedID = taskID
	return nil
}

func TestAddTaskDefaultsPriorityAndStatus(t *testing.T) {
	store := &taskStoreFake{}
	uc := NewTaskUseCase(store)

	task, err := uc.AddTask(context.Background(), "  read chapter 4 ", "before friday", nil, "")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.ID == "" {
		t.Fatalf("expected task id")
	}
	if task.Title != "read chapter 4" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Priority != domain.TaskPriorityMedium {
		t.Fatalf("expected default priority medium, got %s", task.Priority)
	}
	if task.Status != domain.TaskStatusTodo {
		t.Fatalf("expected status todo, got %s", task.Status)
	}
	if store.created == nil {
		t.Fatalf("expected task persisted")
	}
}

func TestAddTaskRejectsEmptyTitle(t *testing.T) {
	uc := NewTaskUseCase(&taskStoreFake{})
	_, err := uc.AddTask(context.Background(), "   ", "", nil, "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddTaskRejectsUnknownPriority(t *testing.T) {
	uc := NewTaskUseCase(&taskStoreFake{})
	_, err := uc.AddTask(context.Background(), "t", "", nil, "urgent!!!")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompleteTaskRequiresID(t *testing.T) {
	uc := NewTaskUseCase(&taskStoreFake{})
	if err := uc.CompleteTask(context.Background(), ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompleteAndDeletePassThrough(t *testing.T) {
	store := &taskStoreFake{}
	uc := NewTaskUseCase(store)

	if err := uc.CompleteTask(context.Background(), "t-1"); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if store.doneID != "t-1" {
		t.Fatalf("expected t-1 marked done, got %q", store.doneID)
	}
	if err := uc.DeleteTask(context.Background(), "t-2"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if store.deletedID != "t-2" {
		t.Fatalf("expected t-2 deleted, got %q", store.deletedID)
	}
}

func TestListTasksPropagatesStoreError(t *testing.T) {
	uc := NewTaskUseCase(&taskStoreFake{err: errors.New("db down")})
	if _, err := uc.ListTasks(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
