package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventType(t *testing.T) {
	t.Parallel()

	known := []string{
		"task-created",
		"task-updated",
		"task-completed",
		"task-deleted",
		"reminder-triggered",
		"recurring-task-created",
		"recurring-instance-created",
	}
	for _, s := range known {
		parsed, err := ParseEventType(s)
		require.NoError(t, err, "expected %q to parse", s)
		assert.Equal(t, EventType(s), parsed)
		assert.True(t, parsed.Valid())
	}

	_, err := ParseEventType("task-archived")
	assert.Error(t, err, "unknown event types must not parse")
	assert.False(t, EventType("").Valid())
}

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	payload := TaskCreatedPayload{
		TaskID:  42,
		Title:   "Weekly standup",
		Tags:    []string{"work"},
		DueDate: &due,
	}

	before := time.Now().UTC()
	envelope, err := NewEnvelope(EventTaskCreated, "user-123", payload)
	require.NoError(t, err)

	assert.Equal(t, "task-created", envelope.EventType)
	assert.Equal(t, "user-123", envelope.UserID)
	assert.False(t, envelope.Timestamp.Before(before))
	assert.Equal(t, time.UTC, envelope.Timestamp.Location())

	var decoded TaskCreatedPayload
	require.NoError(t, envelope.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestEnvelopeWireFormat(t *testing.T) {
	t.Parallel()

	envelope, err := NewEnvelope(EventTaskCompleted, "user-123", TaskCompletedPayload{TaskID: 7, Title: "Pay rent"})
	require.NoError(t, err)

	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Contains(t, wire, "event_type")
	assert.Contains(t, wire, "timestamp")
	assert.Contains(t, wire, "user_id")
	assert.Contains(t, wire, "payload")

	var roundTrip Envelope
	require.NoError(t, json.Unmarshal(body, &roundTrip))
	assert.Equal(t, envelope.EventType, roundTrip.EventType)
	assert.Equal(t, envelope.UserID, roundTrip.UserID)
	assert.True(t, envelope.Timestamp.Equal(roundTrip.Timestamp))
}

func TestTaskTypeForTopic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "events:todo-events", TaskTypeForTopic("todo-events"))
}
