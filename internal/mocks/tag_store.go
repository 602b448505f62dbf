package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// TagStore is an in-memory implementation of store.TagStore.
type TagStore struct {
	mu          sync.Mutex
	tags        map[int64]*domain.Tag
	attachments map[int64][]int64 // task ID -> tag IDs
	nextID      int64

	CreateErr error
	AttachErr error
}

// NewTagStore creates an empty in-memory tag store.
func NewTagStore() *TagStore {
	return &TagStore{
		tags:        make(map[int64]*domain.Tag),
		attachments: make(map[int64][]int64),
		nextID:      1,
	}
}

var _ store.TagStore = (*TagStore)(nil)

// Create implements store.TagStore.Create.
func (s *TagStore) Create(_ context.Context, tag *domain.Tag) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := tag.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if existing.UserID == tag.UserID && existing.Name == tag.Name {
			return store.ErrTagExists
		}
	}

	tag.ID = s.nextID
	s.nextID++
	copied := *tag
	s.tags[tag.ID] = &copied
	return nil
}

// GetByName implements store.TagStore.GetByName.
func (s *TagStore) GetByName(_ context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range s.tags {
		if tag.UserID == userID && tag.Name == name {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, store.ErrTagNotFound
}

// ListForUser implements store.TagStore.ListForUser.
func (s *TagStore) ListForUser(_ context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Tag
	for _, tag := range s.tags {
		if tag.UserID == userID {
			copied := *tag
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete implements store.TagStore.Delete.
func (s *TagStore) Delete(_ context.Context, id int64, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok || tag.UserID != userID {
		return store.ErrTagNotFound
	}
	delete(s.tags, id)
	for taskID, tagIDs := range s.attachments {
		s.attachments[taskID] = removeID(tagIDs, id)
	}
	return nil
}

// TagsForTask implements store.TagStore.TagsForTask.
func (s *TagStore) TagsForTask(_ context.Context, taskID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for _, tagID := range s.attachments[taskID] {
		if tag, ok := s.tags[tagID]; ok {
			names = append(names, tag.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// AttachToTask implements store.TagStore.AttachToTask.
func (s *TagStore) AttachToTask(ctx context.Context, taskID int64, userID uuid.UUID, names []string) error {
	if s.AttachErr != nil {
		return s.AttachErr
	}

	for _, name := range names {
		tag, err := s.GetByName(ctx, userID, name)
		if err != nil {
			tag = &domain.Tag{UserID: userID, Name: name, CreatedAt: time.Now().UTC()}
			if err := s.Create(ctx, tag); err != nil {
				return err
			}
		}

		s.mu.Lock()
		if !containsID(s.attachments[taskID], tag.ID) {
			s.attachments[taskID] = append(s.attachments[taskID], tag.ID)
		}
		s.mu.Unlock()
	}
	return nil
}

// DetachAllFromTask implements store.TagStore.DetachAllFromTask.
func (s *TagStore) DetachAllFromTask(_ context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attachments, taskID)
	return nil
}

// WithTx implements store.TagStore.WithTx.
func (s *TagStore) WithTx(*sql.Tx) store.TagStore {
	return s
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
