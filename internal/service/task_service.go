package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title           string
	Description     string
	Priority        domain.Priority
	DueDate         *time.Time
	RecurrenceRule  string
	ReminderEnabled bool
	Tags            []string
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
// A non-nil Tags slice replaces the task's tag set, empty slice included.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	Priority        *domain.Priority
	DueDate         *time.Time
	ClearDueDate    bool
	RecurrenceRule  *string
	ReminderEnabled *bool
	Tags            []string
}

// TaskService provides task CRUD operations scoped to the owning user.
//
// Every successful mutation publishes its event after the database commit.
// Publishing is fire-and-forget; a broker outage never fails the mutation.
type TaskService interface {
	// CreateTask creates a task for the user and publishes task-created.
	// If the task carries a recurrence rule, recurring-task-created is
	// published as well so the worker can schedule the first instance.
	CreateTask(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves one of the user's tasks.
	GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)

	// ListTasks retrieves the user's active tasks with the given filter.
	ListTasks(ctx context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error)

	// UpdateTask applies a partial update and publishes task-updated with
	// the changed fields.
	UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, input UpdateTaskInput) (*domain.Task, error)

	// ToggleCompletion flips the task's completed flag. Completing a task
	// publishes task-completed; un-completing publishes task-updated.
	ToggleCompletion(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)

	// DeleteTask soft-deletes the task and publishes task-deleted.
	DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error

	// TaskTags returns the tag names attached to one of the user's tasks.
	TaskTags(ctx context.Context, userID uuid.UUID, taskID int64) ([]string, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	tagStore  store.TagStore
	db        *sql.DB
	publisher events.Publisher
	logger    *slog.Logger
	runInTx   func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	tagStore store.TagStore,
	db *sql.DB,
	publisher events.Publisher,
	logger *slog.Logger,
) TaskService {
	return &TaskServiceImpl{
		taskStore: taskStore,
		tagStore:  tagStore,
		db:        db,
		publisher: publisher,
		logger:    logger.With("component", "task_service"),
		runInTx:   store.RunInTransaction,
	}
}

// CreateTask creates a task for the user.
// Task row and tag attachments commit in one transaction.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.Description = input.Description
	task.Priority = input.Priority
	task.DueDate = input.DueDate
	task.RecurrenceRule = input.RecurrenceRule
	task.ReminderEnabled = input.ReminderEnabled
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		if len(input.Tags) > 0 {
			return s.tagStore.WithTx(tx).AttachToTask(ctx, task.ID, userID, input.Tags)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publisher.Publish(ctx, events.EventTaskCreated, userID.String(), events.TaskCreatedPayload{
		TaskID:   task.ID,
		Title:    task.Title,
		Priority: string(task.Priority),
		Tags:     input.Tags,
		DueDate:  task.DueDate,
	})

	if task.IsRecurring() {
		s.publisher.Publish(ctx, events.EventRecurringTaskCreated, userID.String(), events.RecurringTaskCreatedPayload{
			TaskID:         task.ID,
			Title:          task.Title,
			RecurrenceRule: task.RecurrenceRule,
		})
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"user_id", userID,
		"recurring", task.IsRecurring())

	return task, nil
}

// GetTask retrieves one of the user's tasks.
func (s *TaskServiceImpl) GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to retrieve task",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// ListTasks retrieves the user's active tasks with the given filter.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListForUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update to one of the user's tasks.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, input UpdateTaskInput) (*domain.Task, error) {
	var task *domain.Task
	changes := make(map[string]any)

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if input.Title != nil && *input.Title != task.Title {
			task.Title = *input.Title
			changes["title"] = task.Title
		}
		if input.Description != nil && *input.Description != task.Description {
			task.Description = *input.Description
			changes["description"] = task.Description
		}
		if input.Priority != nil && *input.Priority != task.Priority {
			task.Priority = *input.Priority
			changes["priority"] = string(task.Priority)
		}
		if input.ClearDueDate {
			task.DueDate = nil
			changes["due_date"] = nil
		} else if input.DueDate != nil {
			task.DueDate = input.DueDate
			changes["due_date"] = task.DueDate
		}
		if input.RecurrenceRule != nil && *input.RecurrenceRule != task.RecurrenceRule {
			task.RecurrenceRule = *input.RecurrenceRule
			changes["recurrence_rule"] = task.RecurrenceRule
		}
		if input.ReminderEnabled != nil && *input.ReminderEnabled != task.ReminderEnabled {
			task.ReminderEnabled = *input.ReminderEnabled
			changes["reminder_enabled"] = task.ReminderEnabled
		}

		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		if input.Tags != nil {
			txTags := s.tagStore.WithTx(tx)
			if err := txTags.DetachAllFromTask(ctx, task.ID); err != nil {
				return err
			}
			if len(input.Tags) > 0 {
				if err := txTags.AttachToTask(ctx, task.ID, userID, input.Tags); err != nil {
					return err
				}
			}
			changes["tags"] = input.Tags
		}

		if len(changes) == 0 {
			return nil
		}

		task.Touch()
		return txTasks.Update(ctx, task)
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to update task",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if len(changes) > 0 {
		s.publisher.Publish(ctx, events.EventTaskUpdated, userID.String(), events.TaskUpdatedPayload{
			TaskID:  task.ID,
			Changes: changes,
		})
	}

	return task, nil
}

// ToggleCompletion flips the task's completed flag.
func (s *TaskServiceImpl) ToggleCompletion(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	var task *domain.Task

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID, userID)
		if err != nil {
			return err
		}

		task.Completed = !task.Completed
		task.Touch()
		return txTasks.Update(ctx, task)
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to toggle task completion",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to toggle task completion: %w", err)
	}

	if task.Completed {
		s.publisher.Publish(ctx, events.EventTaskCompleted, userID.String(), events.TaskCompletedPayload{
			TaskID: task.ID,
			Title:  task.Title,
		})
	} else {
		s.publisher.Publish(ctx, events.EventTaskUpdated, userID.String(), events.TaskUpdatedPayload{
			TaskID:  task.ID,
			Changes: map[string]any{"completed": false},
		})
	}

	s.logger.Info("task completion toggled",
		"task_id", task.ID,
		"user_id", userID,
		"completed", task.Completed)

	return task, nil
}

// DeleteTask soft-deletes one of the user's tasks.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error {
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).SoftDelete(ctx, taskID, userID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to delete task",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publisher.Publish(ctx, events.EventTaskDeleted, userID.String(), events.TaskDeletedPayload{
		TaskID: taskID,
	})

	s.logger.Info("task deleted",
		"task_id", taskID,
		"user_id", userID)

	return nil
}

// TaskTags returns the tag names attached to one of the user's tasks.
// The ownership check runs first so tag names cannot leak across users.
func (s *TaskServiceImpl) TaskTags(ctx context.Context, userID uuid.UUID, taskID int64) ([]string, error) {
	if _, err := s.taskStore.GetByID(ctx, taskID, userID); err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	names, err := s.tagStore.TagsForTask(ctx, taskID)
	if err != nil {
		s.logger.Error("failed to list task tags",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to list task tags: %w", err)
	}
	return names, nil
}
