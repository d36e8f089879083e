package service

import (
	"context"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
	"github.com/and161185/task-keeper/internal/repository"
)

// Title and description limits, enforced on create and update alike.
const (
	titleMinLen = 3
	titleMaxLen = 100
	descMaxLen  = 500
)

// TaskService defines owner-scoped task operations. The acting identity is
// passed explicitly as ownerID; it is never read from ambient state.
type TaskService interface {
	// Create stores a new task owned by ownerID. Any caller-supplied status is
	// discarded: new tasks always start as PENDING.
	Create(ctx context.Context, ownerID uuid.UUID, in model.TaskInput) (*model.Task, error)
	// List returns all of the owner's tasks.
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	// ListByStatus returns the owner's tasks with the given status.
	ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus) ([]model.Task, error)
	// SearchByTitle returns the owner's tasks whose title contains the
	// substring, case-insensitively.
	SearchByTitle(ctx context.Context, ownerID uuid.UUID, title string) ([]model.Task, error)
	// Get returns a single task by id within the owner's scope.
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*model.Task, error)
	// Update overwrites title and description, and status only when supplied.
	Update(ctx context.Context, ownerID uuid.UUID, id int64, in model.TaskInput) (*model.Task, error)
	// Delete removes the task from the owner's scope.
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error
}

type TaskServiceImpl struct {
	tasks repository.TaskRepository
}

// NewTaskService constructs TaskService over the given repository.
func NewTaskService(tasks repository.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks}
}

// Create validates input and stores a new PENDING task for ownerID.
func (s *TaskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in model.TaskInput) (*model.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	t := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusPending,
		OwnerID:     ownerID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all tasks owned by ownerID.
func (s *TaskServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	return s.tasks.List(ctx, ownerID)
}

// ListByStatus returns the owner's tasks with the given status.
func (s *TaskServiceImpl) ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus) ([]model.Task, error) {
	if !status.Valid() {
		return nil, errs.Validation("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	return s.tasks.ListByStatus(ctx, ownerID, status)
}

// SearchByTitle returns the owner's tasks matching the title substring.
func (s *TaskServiceImpl) SearchByTitle(ctx context.Context, ownerID uuid.UUID, title string) ([]model.Task, error) {
	return s.tasks.SearchByTitle(ctx, ownerID, title)
}

// Get returns a single task. A missing id and another user's task are the same
// ErrNotFound.
func (s *TaskServiceImpl) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*model.Task, error) {
	return s.tasks.Get(ctx, ownerID, id)
}

// Update overwrites title and description wholesale; status is overwritten only
// when the input supplies one, otherwise the stored status is kept. UpdatedAt
// is refreshed by the storage layer on every successful update.
func (s *TaskServiceImpl) Update(ctx context.Context, ownerID uuid.UUID, id int64, in model.TaskInput) (*model.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	status := model.TaskStatus("")
	if in.Status != nil {
		status = *in.Status
	} else {
		// Status omitted: read the current one. Conflicting concurrent edits
		// by the same owner are last-writer-wins.
		cur, err := s.tasks.Get(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		status = cur.Status
	}

	return s.tasks.Update(ctx, ownerID, id, in.Title, in.Description, status)
}

// Delete removes the task identified by id within the owner's scope.
func (s *TaskServiceImpl) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return s.tasks.Delete(ctx, ownerID, id)
}

func validateTaskInput(in model.TaskInput) error {
	fields := map[string]string{}
	if n := utf8.RuneCountInString(in.Title); n < titleMinLen || n > titleMaxLen {
		fields["title"] = "must be between 3 and 100 characters"
	}
	if utf8.RuneCountInString(in.Description) > descMaxLen {
		fields["description"] = "must be at most 500 characters"
	}
	if in.Status != nil && !in.Status.Valid() {
		fields["status"] = "must be one of PENDING, IN_PROGRESS, COMPLETED"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}
