package mocks

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// TaskStore is an in-memory implementation of store.TaskStore.
//
// Error fields inject failures per method; when nil the operation succeeds
// against the in-memory map. WithTx returns the store itself, so
// transactional and plain paths share state.
type TaskStore struct {
	mu     sync.Mutex
	tasks  map[int64]*domain.Task
	nextID int64

	CreateErr        error
	GetErr           error
	ListErr          error
	UpdateErr        error
	SoftDeleteErr    error
	FindRecurringErr error
	FindRemindersErr error
	ExistsSimilarErr error
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Seed inserts a task directly, assigning an ID if it has none.
// Returns the stored task for convenience.
func (s *TaskStore) Seed(task *domain.Task) *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == 0 {
		task.ID = s.nextID
		s.nextID++
	} else if task.ID >= s.nextID {
		s.nextID = task.ID + 1
	}

	copied := *task
	s.tasks[task.ID] = &copied
	return task
}

// Get returns the stored task by ID, ignoring ownership and soft delete.
// Test helper for asserting persisted state.
func (s *TaskStore) Get(id int64) *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil
	}
	copied := *task
	return &copied
}

// All returns every stored task, soft-deleted included.
func (s *TaskStore) All() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		copied := *task
		out = append(out, &copied)
	}
	return out
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(_ context.Context, id int64, userID uuid.UUID) (*domain.Task, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.UserID != userID || task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// ListForUser implements store.TaskStore.ListForUser. Only the user and
// soft-delete filters are applied; tests needing richer filtering should
// exercise the real store.
func (s *TaskStore) ListForUser(_ context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID != userID || task.IsDeleted() {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Search)) {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID || existing.IsDeleted() {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// SoftDelete implements store.TaskStore.SoftDelete.
func (s *TaskStore) SoftDelete(_ context.Context, id int64, userID uuid.UUID) error {
	if s.SoftDeleteErr != nil {
		return s.SoftDeleteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.UserID != userID || task.IsDeleted() {
		return store.ErrTaskNotFound
	}
	now := time.Now().UTC()
	task.DeletedAt = &now
	return nil
}

// FindDueRecurring implements store.TaskStore.FindDueRecurring.
func (s *TaskStore) FindDueRecurring(_ context.Context) ([]*domain.Task, error) {
	if s.FindRecurringErr != nil {
		return nil, s.FindRecurringErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if task.IsRecurring() && !task.IsDeleted() && !task.Completed {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

// FindDueReminders implements store.TaskStore.FindDueReminders.
func (s *TaskStore) FindDueReminders(_ context.Context, now time.Time) ([]*domain.Task, error) {
	if s.FindRemindersErr != nil {
		return nil, s.FindRemindersErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if !task.ReminderEnabled || task.IsDeleted() || task.Completed {
			continue
		}
		if task.DueDate == nil || task.DueDate.After(now) {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

// ExistsSimilar implements store.TaskStore.ExistsSimilar.
func (s *TaskStore) ExistsSimilar(_ context.Context, userID uuid.UUID, title string, due time.Time, tolerance time.Duration) (bool, error) {
	if s.ExistsSimilarErr != nil {
		return false, s.ExistsSimilarErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if task.UserID != userID || task.Title != title || task.IsDeleted() {
			continue
		}
		if task.DueDate == nil {
			continue
		}
		diff := task.DueDate.Sub(due)
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			return true, nil
		}
	}
	return false, nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *TaskStore) WithTx(*sql.Tx) store.TaskStore {
	return s
}
