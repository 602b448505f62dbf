package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of event carried by an Envelope.
// The set is closed; routing switches over it exhaustively and unknown
// values are dropped at the subscriber.
type EventType string

const (
	EventTaskCreated              EventType = "task-created"
	EventTaskUpdated              EventType = "task-updated"
	EventTaskCompleted            EventType = "task-completed"
	EventTaskDeleted              EventType = "task-deleted"
	EventReminderTriggered        EventType = "reminder-triggered"
	EventRecurringTaskCreated     EventType = "recurring-task-created"
	EventRecurringInstanceCreated EventType = "recurring-instance-created"
)

// Valid reports whether the event type is one of the known values.
func (t EventType) Valid() bool {
	switch t {
	case EventTaskCreated, EventTaskUpdated, EventTaskCompleted,
		EventTaskDeleted, EventReminderTriggered,
		EventRecurringTaskCreated, EventRecurringInstanceCreated:
		return true
	}
	return false
}

// ParseEventType converts a wire string into an EventType.
// Returns an error for unknown values so subscribers can drop them.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// Envelope is the wire format for every published event.
//
// Timestamp is serialized as ISO-8601 UTC. UserID is the owning user's ID as
// an opaque string; consumers never parse it beyond presence checks. Payload
// holds the type-specific body and is decoded lazily by the handler that
// owns the event type.
type Envelope struct {
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope builds an Envelope for the given event, stamping it with the
// current UTC time and serializing the payload to JSON.
func NewEnvelope(eventType EventType, userID string, payload any) (*Envelope, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &Envelope{
		EventType: string(eventType),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Payload:   payloadBytes,
	}, nil
}

// UnmarshalPayload decodes the envelope payload into the provided structure.
func (e *Envelope) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// TaskCreatedPayload is the body of a task-created event.
type TaskCreatedPayload struct {
	TaskID   int64      `json:"task_id"`
	Title    string     `json:"title"`
	Priority string     `json:"priority,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// TaskUpdatedPayload is the body of a task-updated event. Changes maps
// field names to their new values; only fields the caller actually changed
// are included.
type TaskUpdatedPayload struct {
	TaskID  int64          `json:"task_id"`
	Changes map[string]any `json:"changes,omitempty"`
}

// TaskCompletedPayload is the body of a task-completed event.
type TaskCompletedPayload struct {
	TaskID int64  `json:"task_id"`
	Title  string `json:"title"`
}

// TaskDeletedPayload is the body of a task-deleted event.
type TaskDeletedPayload struct {
	TaskID int64 `json:"task_id"`
}

// ReminderTriggeredPayload is the body of a reminder-triggered event.
type ReminderTriggeredPayload struct {
	TaskID  int64      `json:"task_id"`
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// RecurringTaskCreatedPayload is the body of a recurring-task-created
// event, published when a user creates a task that carries a recurrence
// rule. The worker reacts by scheduling the first instance.
type RecurringTaskCreatedPayload struct {
	TaskID         int64  `json:"task_id"`
	Title          string `json:"title"`
	RecurrenceRule string `json:"recurrence_rule"`
}

// RecurringInstanceCreatedPayload is the body of a
// recurring-instance-created event, published whenever the recurrence
// engine materializes a new instance from a template.
type RecurringInstanceCreatedPayload struct {
	TaskID        int64     `json:"task_id"`
	ParentTaskID  int64     `json:"parent_task_id"`
	Title         string    `json:"title"`
	ScheduledDate time.Time `json:"scheduled_date"`
}
