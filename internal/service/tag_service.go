package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// TagService provides tag management operations scoped to the owning user.
type TagService interface {
	// CreateTag creates a new tag for the user.
	// Returns store.ErrTagExists if the user already has a tag by that name.
	CreateTag(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)

	// ListTags retrieves all of the user's tags.
	ListTags(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)

	// DeleteTag removes the tag and all its task associations.
	DeleteTag(ctx context.Context, userID uuid.UUID, tagID int64) error
}

// TagServiceImpl implements the TagService interface
type TagServiceImpl struct {
	tagStore store.TagStore
	db       *sql.DB
	logger   *slog.Logger
	runInTx  func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTagService creates a new TagService.
func NewTagService(tagStore store.TagStore, db *sql.DB, logger *slog.Logger) TagService {
	return &TagServiceImpl{
		tagStore: tagStore,
		db:       db,
		logger:   logger.With("component", "tag_service"),
		runInTx:  store.RunInTransaction,
	}
}

// CreateTag creates a new tag for the user.
func (s *TagServiceImpl) CreateTag(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	tag, err := domain.NewTag(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tagStore.WithTx(tx).Create(ctx, tag)
	})
	if err != nil {
		if errors.Is(err, store.ErrTagExists) {
			s.logger.Debug("attempted to create duplicate tag",
				"user_id", userID,
				"name", name)
		} else {
			s.logger.Error("failed to create tag",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.logger.Info("tag created",
		"tag_id", tag.ID,
		"user_id", userID)

	return tag, nil
}

// ListTags retrieves all of the user's tags.
func (s *TagServiceImpl) ListTags(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	tags, err := s.tagStore.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tags",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes the tag and all its task associations.
func (s *TagServiceImpl) DeleteTag(ctx context.Context, userID uuid.UUID, tagID int64) error {
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tagStore.WithTx(tx).Delete(ctx, tagID, userID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrTagNotFound) {
			s.logger.Error("failed to delete tag",
				"error", err,
				"tag_id", tagID,
				"user_id", userID)
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	s.logger.Info("tag deleted",
		"tag_id", tagID,
		"user_id", userID)

	return nil
}
