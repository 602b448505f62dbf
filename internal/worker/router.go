package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
)

// RecurrenceHandler reacts to recurring-task-created events by scheduling
// the first instance of the recurring task. Implemented by the recurrence
// engine.
type RecurrenceHandler interface {
	HandleRecurringTaskCreated(ctx context.Context, envelope *events.Envelope) events.Outcome
}

// Router dispatches envelopes from the todo-events topic to the handler
// that owns each event type.
type Router struct {
	notifier   *LogNotifier
	recurrence RecurrenceHandler
	logger     *slog.Logger
}

// NewRouter creates a Router over the given handlers.
func NewRouter(notifier *LogNotifier, recurrence RecurrenceHandler, log *slog.Logger) *Router {
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if recurrence == nil {
		panic("recurrence handler cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		notifier:   notifier,
		recurrence: recurrence,
		logger:     log.With(slog.String("component", "event_router")),
	}
}

// Route validates the envelope and dispatches it by event type.
//
// Envelopes without a user ID or with an event type outside the known set
// are dropped: they can never become processable, so retrying them would
// only recycle garbage through the queue.
func (r *Router) Route(ctx context.Context, envelope *events.Envelope) events.Outcome {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if envelope.UserID == "" {
		log.Warn("dropping event without user ID",
			slog.String("event_type", envelope.EventType))
		return events.OutcomeDrop
	}

	eventType, err := events.ParseEventType(envelope.EventType)
	if err != nil {
		log.Warn("dropping event with unknown type",
			slog.String("event_type", envelope.EventType),
			slog.String("user_id", envelope.UserID))
		return events.OutcomeDrop
	}

	switch eventType {
	case events.EventTaskCreated:
		return r.notifier.NotifyTaskCreated(ctx, envelope)
	case events.EventReminderTriggered:
		return r.notifier.NotifyReminder(ctx, envelope)
	case events.EventRecurringTaskCreated:
		return r.recurrence.HandleRecurringTaskCreated(ctx, envelope)
	case events.EventTaskUpdated, events.EventTaskCompleted,
		events.EventTaskDeleted, events.EventRecurringInstanceCreated:
		// Audit-only types: recorded in the log, no side effects.
		log.Debug("event observed",
			slog.String("event_type", envelope.EventType),
			slog.String("user_id", envelope.UserID))
		return events.OutcomeSuccess
	}

	log.Warn("dropping unroutable event",
		slog.String("event_type", envelope.EventType))
	return events.OutcomeDrop
}

// ProcessTask implements asynq.Handler. It decodes the delivery into an
// envelope and maps the routing outcome onto asynq's acknowledgement model:
// only OutcomeRetry surfaces as an error and triggers redelivery.
func (r *Router) ProcessTask(ctx context.Context, task *asynq.Task) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var envelope events.Envelope
	if err := json.Unmarshal(task.Payload(), &envelope); err != nil {
		log.Warn("dropping undecodable event delivery",
			slog.String("task_type", task.Type()),
			slog.String("error", err.Error()))
		return nil
	}

	outcome := r.Route(ctx, &envelope)

	log.Debug("event routed",
		slog.String("event_type", envelope.EventType),
		slog.String("outcome", outcome.String()))

	if outcome == events.OutcomeRetry {
		return fmt.Errorf("transient failure handling %s event, requeueing", envelope.EventType)
	}
	return nil
}
