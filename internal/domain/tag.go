package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tag validation errors
var (
	ErrTagNameEmpty   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = errors.New("tag name cannot exceed 50 characters")
	ErrTagUserIDEmpty = errors.New("tag user ID cannot be empty")
)

// Tag is a user-scoped label that can be attached to tasks.
// Tag names are unique per user; the store enforces the constraint.
type Tag struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag owned by the given user.
// The ID is zero until the tag is persisted; the store assigns it.
func NewTag(userID uuid.UUID, name string) (*Tag, error) {
	tag := &Tag{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrTagUserIDEmpty
	}

	if t.Name == "" {
		return ErrTagNameEmpty
	}

	if len(t.Name) > 50 {
		return ErrTagNameTooLong
	}

	return nil
}
