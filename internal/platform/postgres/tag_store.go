package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the
// TagStore interface.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// Create implements store.TagStore.Create.
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tags (user_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, tag.UserID, tag.Name, tag.CreatedAt).Scan(&tag.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTagExists
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("user_id", tag.UserID.String()))
		return err
	}

	return nil
}

// GetByName implements store.TagStore.GetByName.
func (s *PostgresTagStore) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM tags
		WHERE user_id = $1 AND name = $2
	`

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, query, userID, name).Scan(
		&tag.ID,
		&tag.UserID,
		&tag.Name,
		&tag.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, err
	}

	return &tag, nil
}

// ListForUser implements store.TagStore.ListForUser.
func (s *PostgresTagStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, created_at
		FROM tags
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list tags",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// Delete implements store.TagStore.Delete.
// Task associations are removed by the ON DELETE CASCADE constraint on
// task_tags.
func (s *PostgresTagStore) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tags WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTagNotFound
	}

	return nil
}

// TagsForTask implements store.TagStore.TagsForTask.
func (s *PostgresTagStore) TagsForTask(ctx context.Context, taskID int64) ([]string, error) {
	query := `
		SELECT t.name
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag names: %w", err)
	}

	return names, nil
}

// AttachToTask implements store.TagStore.AttachToTask.
// Missing tags are created for the user on the fly; existing associations
// are kept via ON CONFLICT DO NOTHING.
func (s *PostgresTagStore) AttachToTask(ctx context.Context, taskID int64, userID uuid.UUID, names []string) error {
	for _, name := range names {
		tag, err := s.GetByName(ctx, userID, name)
		if errors.Is(err, store.ErrTagNotFound) {
			tag, err = domain.NewTag(userID, name)
			if err != nil {
				return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
			}
			if createErr := s.Create(ctx, tag); createErr != nil {
				// A concurrent attach may have created it; re-read.
				if !errors.Is(createErr, store.ErrTagExists) {
					return createErr
				}
				tag, err = s.GetByName(ctx, userID, name)
			}
		}
		if err != nil {
			return err
		}

		_, err = s.db.ExecContext(
			ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			taskID,
			tag.ID,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// DetachAllFromTask implements store.TagStore.DetachAllFromTask.
func (s *PostgresTagStore) DetachAllFromTask(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID)
	return err
}

// WithTx implements store.TagStore.WithTx.
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{
		db:     tx,
		logger: s.logger,
	}
}
