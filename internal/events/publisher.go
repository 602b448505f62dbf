package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mwhitney/taskloop-api/internal/platform/logger"
)

// taskTypePrefix namespaces event deliveries in the asynq task-type space so
// they never collide with other task kinds sharing the same Redis instance.
const taskTypePrefix = "events:"

// TaskTypeForTopic returns the asynq task type used for deliveries on the
// given topic. The subscriber registers its handler under the same type.
func TaskTypeForTopic(topic string) string {
	return taskTypePrefix + topic
}

// Publisher publishes event envelopes to the configured topic.
//
// Publish is fire-and-forget: implementations report delivery with the
// returned bool and never propagate broker errors to the caller. A task
// mutation must succeed or fail on its own merits regardless of whether the
// event behind it could be enqueued.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, userID string, payload any) bool
}

// AsynqPublisher publishes envelopes as asynq tasks on a Redis-backed queue.
// Delivery is at-least-once; consumers must tolerate duplicates.
type AsynqPublisher struct {
	client *asynq.Client
	topic  string
	logger *slog.Logger
}

// NewAsynqPublisher creates a Publisher backed by the given asynq client.
func NewAsynqPublisher(client *asynq.Client, topic string, log *slog.Logger) *AsynqPublisher {
	if client == nil {
		panic("asynq client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AsynqPublisher{
		client: client,
		topic:  topic,
		logger: log.With(slog.String("component", "event_publisher")),
	}
}

var _ Publisher = (*AsynqPublisher)(nil)

// Publish implements Publisher.
func (p *AsynqPublisher) Publish(ctx context.Context, eventType EventType, userID string, payload any) bool {
	log := logger.FromContextOrDefault(ctx, p.logger)

	envelope, err := NewEnvelope(eventType, userID, payload)
	if err != nil {
		log.Warn("failed to build event envelope",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return false
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		log.Warn("failed to marshal event envelope",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return false
	}

	task := asynq.NewTask(TaskTypeForTopic(p.topic), body)
	info, err := p.client.EnqueueContext(ctx, task)
	if err != nil {
		log.Warn("failed to publish event",
			slog.String("event_type", string(eventType)),
			slog.String("topic", p.topic),
			slog.String("error", err.Error()))
		return false
	}

	log.Debug("event published",
		slog.String("event_type", string(eventType)),
		slog.String("topic", p.topic),
		slog.String("delivery_id", info.ID))
	return true
}

// Close releases the underlying asynq client connection.
func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

// NoopPublisher discards every event. It is used when the event pipeline is
// disabled in configuration, keeping services free of enabled/disabled
// branching.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

// Publish implements Publisher. It short-circuits without attempting a
// connection and reports false: the envelope was not handed off to any
// transport.
func (NoopPublisher) Publish(context.Context, EventType, string, any) bool {
	return false
}
