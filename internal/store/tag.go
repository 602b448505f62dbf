package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mwhitney/taskloop-api/internal/domain"
)

// TagStore defines the interface for tag data persistence.
// Tags are user-scoped; all operations are filtered by owning user.
type TagStore interface {
	// Create saves a new tag and assigns its numeric ID.
	// Returns ErrTagExists if the user already has a tag with that name.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByName retrieves a tag by name for the given user.
	// Returns ErrTagNotFound if no such tag exists.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)

	// ListForUser retrieves all tags belonging to the user.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)

	// Delete removes the tag and its task associations.
	// Returns ErrTagNotFound if the tag does not exist or belongs to
	// another user.
	Delete(ctx context.Context, id int64, userID uuid.UUID) error

	// TagsForTask returns the names of the tags attached to a task.
	TagsForTask(ctx context.Context, taskID int64) ([]string, error)

	// AttachToTask associates the named tags with the task, creating
	// missing tags for the user on the fly. Existing associations are kept.
	AttachToTask(ctx context.Context, taskID int64, userID uuid.UUID, names []string) error

	// DetachAllFromTask removes every tag association from the task.
	DetachAllFromTask(ctx context.Context, taskID int64) error

	// WithTx returns a new TagStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TagStore
}
