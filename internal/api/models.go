package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse defines the representation of the authenticated user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title           string     `json:"title"            validate:"required,min=1,max=200"`
	Description     string     `json:"description"      validate:"max=2000"`
	Priority        string     `json:"priority"         validate:"omitempty,oneof=high medium low"`
	DueDate         *time.Time `json:"due_date"`
	RecurrenceRule  string     `json:"recurrence_rule"  validate:"max=200"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	Tags            []string   `json:"tags"             validate:"max=20,dive,min=1,max=50"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields are left unchanged; an explicit null due_date clears it.
type UpdateTaskRequest struct {
	Title           *string    `json:"title"            validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description"      validate:"omitempty,max=2000"`
	Priority        *string    `json:"priority"         validate:"omitempty,oneof=high medium low"`
	DueDate         *time.Time `json:"due_date"`
	ClearDueDate    bool       `json:"clear_due_date"`
	RecurrenceRule  *string    `json:"recurrence_rule"  validate:"omitempty,max=200"`
	ReminderEnabled *bool      `json:"reminder_enabled"`
	Tags            []string   `json:"tags"             validate:"omitempty,max=20,dive,min=1,max=50"`
}

// TaskResponse defines the representation of a task in API responses.
type TaskResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Completed       bool       `json:"completed"`
	Priority        string     `json:"priority,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	RecurrenceRule  string     `json:"recurrence_rule,omitempty"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	Tags            []string   `json:"tags,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewTaskResponse builds a TaskResponse from a domain task.
func NewTaskResponse(task *domain.Task, tags []string) TaskResponse {
	return TaskResponse{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Completed:       task.Completed,
		Priority:        string(task.Priority),
		DueDate:         task.DueDate,
		RecurrenceRule:  task.RecurrenceRule,
		ReminderEnabled: task.ReminderEnabled,
		Tags:            tags,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

// TaskListResponse defines the response for the task list endpoint.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// CreateTagRequest defines the payload for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// TagResponse defines the representation of a tag in API responses.
type TagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTagResponse builds a TagResponse from a domain tag.
func NewTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}
