package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrTaskTitleEmpty    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title cannot exceed 200 characters")
	ErrTaskUserIDEmpty   = errors.New("task user ID cannot be empty")
	ErrRecurrenceTooLong = errors.New("recurrence rule cannot exceed 200 characters")
)

// Priority represents the urgency of a task. An empty Priority means the
// task has no priority assigned.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether the priority is one of the known values or empty.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a todo item owned by a single user.
//
// A task with a non-empty RecurrenceRule is a recurring template: when its
// due date passes, the recurrence engine creates a successor task with the
// next occurrence date and marks this one completed. The template is never
// rescheduled in place.
//
// DeletedAt implements soft delete; stores exclude soft-deleted rows from
// all scans and listings.
type Task struct {
	ID              int64      `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Completed       bool       `json:"completed"`
	Priority        Priority   `json:"priority,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	RecurrenceRule  string     `json:"recurrence_rule,omitempty"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// The ID is zero until the task is persisted; the store assigns it.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if len(t.RecurrenceRule) > 200 {
		return ErrRecurrenceTooLong
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	return nil
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t *Task) IsRecurring() bool {
	return t.RecurrenceRule != ""
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// DueBefore reports whether the task has a due date strictly before the
// given instant. Tasks without a due date are never due.
func (t *Task) DueBefore(instant time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(instant)
}

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
