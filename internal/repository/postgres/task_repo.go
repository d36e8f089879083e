package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
)

// TaskRepo implements TaskRepository using PostgreSQL. Every query carries an
// owner_id predicate; rows belonging to other users are invisible here.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, title, description, status, owner_id, created_at, updated_at`

func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
}

// Create inserts a new task and fills the storage-assigned fields.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `
INSERT INTO tasks (title, description, status, owner_id)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`
	row := r.db.Pool.QueryRow(ctx, q, t.Title, t.Description, t.Status, t.OwnerID)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// List returns all tasks owned by ownerID, newest first.
func (r *TaskRepo) List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	const q = `
SELECT ` + taskColumns + `
FROM tasks WHERE owner_id=$1
ORDER BY id DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ListByStatus returns the owner's tasks with the given status, newest first.
func (r *TaskRepo) ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus) ([]model.Task, error) {
	const q = `
SELECT ` + taskColumns + `
FROM tasks WHERE owner_id=$1 AND status=$2
ORDER BY id DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, status)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// SearchByTitle returns the owner's tasks whose title contains the substring,
// case-insensitively (ILIKE).
func (r *TaskRepo) SearchByTitle(ctx context.Context, ownerID uuid.UUID, title string) ([]model.Task, error) {
	const q = `
SELECT ` + taskColumns + `
FROM tasks WHERE owner_id=$1 AND title ILIKE '%' || $2 || '%'
ORDER BY id DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, title)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Get returns a single task by (id, owner_id). A missing id and a foreign
// owner both come back as ErrNotFound.
func (r *TaskRepo) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*model.Task, error) {
	const q = `
SELECT ` + taskColumns + `
FROM tasks WHERE id=$1 AND owner_id=$2`
	var t model.Task
	if err := scanTask(r.db.Pool.QueryRow(ctx, q, id, ownerID), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Update overwrites the mutable fields of (id, owner_id) in a single statement
// and refreshes updated_at.
func (r *TaskRepo) Update(ctx context.Context, ownerID uuid.UUID, id int64, title, description string, status model.TaskStatus) (*model.Task, error) {
	const q = `
UPDATE tasks
SET title=$3, description=$4, status=$5, updated_at=now()
WHERE id=$1 AND owner_id=$2
RETURNING ` + taskColumns
	var t model.Task
	if err := scanTask(r.db.Pool.QueryRow(ctx, q, id, ownerID, title, description, status), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes the task identified by (id, owner_id).
func (r *TaskRepo) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	const q = `DELETE FROM tasks WHERE id=$1 AND owner_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func collectTasks(rows pgx.Rows) ([]model.Task, error) {
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
