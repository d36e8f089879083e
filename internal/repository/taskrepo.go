package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/task-keeper/internal/model"
)

// TaskRepository provides owner-scoped access to tasks. Every method filters by
// ownerID; a task belonging to a different user is indistinguishable from a
// missing one (errs.ErrNotFound).
type TaskRepository interface {
	// Create inserts a new task and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, t *model.Task) error

	// List returns all tasks owned by ownerID.
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)

	// ListByStatus returns the owner's tasks with the given status.
	ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus) ([]model.Task, error)

	// SearchByTitle returns the owner's tasks whose title contains the
	// substring, case-insensitively.
	SearchByTitle(ctx context.Context, ownerID uuid.UUID, title string) ([]model.Task, error)

	// Get returns a single task by (id, ownerID).
	Get(ctx context.Context, ownerID uuid.UUID, id int64) (*model.Task, error)

	// Update overwrites title, description and status of (id, ownerID) and
	// refreshes UpdatedAt, returning the stored row.
	Update(ctx context.Context, ownerID uuid.UUID, id int64, title, description string, status model.TaskStatus) (*model.Task, error)

	// Delete removes the task identified by (id, ownerID).
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error
}
