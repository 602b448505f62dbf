package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwhitney/taskloop-api/internal/domain"
)

// TaskListFilter carries the optional filters and ordering for ListForUser.
// Zero values mean "no filter". Soft-deleted tasks are always excluded.
type TaskListFilter struct {
	Priority  domain.Priority
	DueBefore *time.Time

	// Recurring filters by presence (true) or absence (false) of a
	// recurrence rule when non-nil.
	Recurring *bool

	// Search matches title or description, case-insensitive substring.
	Search string

	// SortField is one of "priority", "due_date", "title", "created_at".
	// Unknown fields fall back to created_at.
	SortField string

	// Descending orders results newest/highest first when true.
	Descending bool

	Offset int
	Limit  int
}

// TaskStore defines the interface for task data persistence.
//
// All single-task operations are scoped by owning user: a task belonging to
// a different user is reported as ErrTaskNotFound, never as a permission
// error, so handlers cannot leak the existence of other users' tasks.
type TaskStore interface {
	// Create saves a new task and assigns its numeric ID.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID for the given user.
	// Returns ErrTaskNotFound if the task does not exist, is soft-deleted,
	// or belongs to another user.
	GetByID(ctx context.Context, id int64, userID uuid.UUID) (*domain.Task, error)

	// ListForUser retrieves the user's active tasks with the given filter.
	ListForUser(ctx context.Context, userID uuid.UUID, filter TaskListFilter) ([]*domain.Task, error)

	// Update persists all mutable fields of the task. The task must belong
	// to the given user. Returns ErrTaskNotFound if no matching row exists.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks the task deleted by setting its deleted_at timestamp.
	// Returns ErrTaskNotFound if the task does not exist or is already
	// deleted.
	SoftDelete(ctx context.Context, id int64, userID uuid.UUID) error

	// FindDueRecurring returns all active recurring task templates:
	// recurrence rule present, not soft-deleted, not completed.
	//
	// Note: the due-date comparison is intentionally NOT part of this
	// query; the recurrence engine re-derives "due before now" per task at
	// decision time. The reminder scan below does filter in-query. The
	// asymmetry mirrors the behavior this system replaces and is kept so
	// batch sizes and retry behavior stay comparable.
	FindDueRecurring(ctx context.Context) ([]*domain.Task, error)

	// FindDueReminders returns reminder-enabled tasks whose due date has
	// passed: reminder flag set, not soft-deleted, not completed, due date
	// present and <= now.
	FindDueReminders(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// ExistsSimilar reports whether the user already has an active task
	// with the same title whose due date falls within due ± tolerance.
	// This is the duplicate-suppression check used before creating a
	// recurring instance; see the recurrence engine for the race-window
	// caveats.
	ExistsSimilar(ctx context.Context, userID uuid.UUID, title string, due time.Time, tolerance time.Duration) (bool, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
