// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Task statuses. New tasks always start as PENDING.
const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// AuthToken is a signed bearer credential. It is never persisted; validity is
// determined purely by its signature and embedded expiry.
type AuthToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// User represents an account. The password is only ever stored as a bcrypt hash.
type User struct {
	ID           uuid.UUID // PK
	Username     string    // unique
	Email        string    // unique
	PasswordHash string
	CreatedAt    time.Time
}

// Task is a single to-do item owned by exactly one user. OwnerID is set at
// creation and never reassigned.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	OwnerID     uuid.UUID // FK -> users.id
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskInput is the caller-supplied portion of a task.
//
// On create any supplied status is ignored and the task starts as PENDING.
// On update title and description overwrite the stored values wholesale, while
// a nil Status leaves the stored status unchanged.
type TaskInput struct {
	Title       string
	Description string
	Status      *TaskStatus
}
