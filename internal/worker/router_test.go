package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitney/taskloop-api/internal/events"
)

// stubRecurrenceHandler records the envelopes it receives and returns a
// configured outcome.
type stubRecurrenceHandler struct {
	outcome  events.Outcome
	received []*events.Envelope
}

func (s *stubRecurrenceHandler) HandleRecurringTaskCreated(_ context.Context, envelope *events.Envelope) events.Outcome {
	s.received = append(s.received, envelope)
	return s.outcome
}

func newTestRouter(t *testing.T, outcome events.Outcome) (*Router, *stubRecurrenceHandler) {
	t.Helper()
	stub := &stubRecurrenceHandler{outcome: outcome}
	return NewRouter(NewLogNotifier(nil), stub, nil), stub
}

func marshalEnvelope(t *testing.T, envelope *events.Envelope) []byte {
	t.Helper()
	body, err := json.Marshal(envelope)
	require.NoError(t, err)
	return body
}

func mustEnvelope(t *testing.T, eventType events.EventType, userID string, payload any) *events.Envelope {
	t.Helper()
	envelope, err := events.NewEnvelope(eventType, userID, payload)
	require.NoError(t, err)
	return envelope
}

func TestRouteDropsMissingUserID(t *testing.T) {
	t.Parallel()

	router, stub := newTestRouter(t, events.OutcomeSuccess)
	envelope := mustEnvelope(t, events.EventRecurringTaskCreated, "", events.RecurringTaskCreatedPayload{TaskID: 1})

	outcome := router.Route(context.Background(), envelope)

	assert.Equal(t, events.OutcomeDrop, outcome)
	assert.Empty(t, stub.received, "invalid envelopes must not reach handlers")
}

func TestRouteDropsUnknownEventType(t *testing.T) {
	t.Parallel()

	router, stub := newTestRouter(t, events.OutcomeSuccess)
	envelope := mustEnvelope(t, events.EventTaskCreated, "user-123", events.TaskCreatedPayload{TaskID: 1, Title: "x"})
	envelope.EventType = "task-archived"

	outcome := router.Route(context.Background(), envelope)

	assert.Equal(t, events.OutcomeDrop, outcome)
	assert.Empty(t, stub.received)
}

func TestRouteDispatchesRecurringTaskCreated(t *testing.T) {
	t.Parallel()

	router, stub := newTestRouter(t, events.OutcomeSuccess)
	envelope := mustEnvelope(t, events.EventRecurringTaskCreated, "user-123", events.RecurringTaskCreatedPayload{
		TaskID:         5,
		Title:          "Weekly standup",
		RecurrenceRule: "WEEKLY",
	})

	outcome := router.Route(context.Background(), envelope)

	assert.Equal(t, events.OutcomeSuccess, outcome)
	require.Len(t, stub.received, 1)
	assert.Equal(t, envelope, stub.received[0])
}

func TestRouteNotificationEvents(t *testing.T) {
	t.Parallel()

	router, stub := newTestRouter(t, events.OutcomeSuccess)

	created := mustEnvelope(t, events.EventTaskCreated, "user-123", events.TaskCreatedPayload{TaskID: 1, Title: "Pay rent"})
	assert.Equal(t, events.OutcomeSuccess, router.Route(context.Background(), created))

	// Missing title falls back to a placeholder instead of failing.
	reminder := mustEnvelope(t, events.EventReminderTriggered, "user-123", events.ReminderTriggeredPayload{TaskID: 2})
	assert.Equal(t, events.OutcomeSuccess, router.Route(context.Background(), reminder))

	assert.Empty(t, stub.received, "notification events must not reach the recurrence handler")
}

func TestRouteAuditEventsSucceed(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, events.OutcomeSuccess)

	for _, eventType := range []events.EventType{
		events.EventTaskUpdated,
		events.EventTaskCompleted,
		events.EventTaskDeleted,
		events.EventRecurringInstanceCreated,
	} {
		envelope := mustEnvelope(t, eventType, "user-123", map[string]any{"task_id": 1})
		assert.Equal(t, events.OutcomeSuccess, router.Route(context.Background(), envelope),
			"audit event %s should be acknowledged", eventType)
	}
}

func TestProcessTaskOutcomeMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome events.Outcome
		wantErr bool
	}{
		{name: "success acknowledges", outcome: events.OutcomeSuccess, wantErr: false},
		{name: "drop acknowledges", outcome: events.OutcomeDrop, wantErr: false},
		{name: "retry returns error", outcome: events.OutcomeRetry, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, tc.outcome)
			envelope := mustEnvelope(t, events.EventRecurringTaskCreated, "user-123", events.RecurringTaskCreatedPayload{
				TaskID:         5,
				RecurrenceRule: "DAILY",
			})

			body := marshalEnvelope(t, envelope)
			err := router.ProcessTask(context.Background(), asynq.NewTask(events.TaskTypeForTopic("todo-events"), body))

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessTaskDropsMalformedDelivery(t *testing.T) {
	t.Parallel()

	router, stub := newTestRouter(t, events.OutcomeSuccess)

	err := router.ProcessTask(context.Background(), asynq.NewTask("events:todo-events", []byte("{not json")))

	assert.NoError(t, err, "malformed deliveries must be acknowledged, not retried")
	assert.Empty(t, stub.received)
}
