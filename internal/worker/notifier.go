package worker

import (
	"context"
	"log/slog"

	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
)

// unknownTaskTitle is used when a notification payload carries no title.
const unknownTaskTitle = "Unknown Task"

// LogNotifier renders notification events as structured log lines. It stands
// in for a real delivery channel (email, push); swapping it out only
// requires another implementation of the same method set.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that writes notifications to the log.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{logger: log.With(slog.String("component", "notifier"))}
}

// NotifyTaskCreated announces a newly created task to its owner.
func (n *LogNotifier) NotifyTaskCreated(ctx context.Context, envelope *events.Envelope) events.Outcome {
	log := logger.FromContextOrDefault(ctx, n.logger)

	var payload events.TaskCreatedPayload
	if err := envelope.UnmarshalPayload(&payload); err != nil {
		log.Warn("dropping task-created event with malformed payload",
			slog.String("user_id", envelope.UserID),
			slog.String("error", err.Error()))
		return events.OutcomeDrop
	}

	title := payload.Title
	if title == "" {
		title = unknownTaskTitle
	}

	log.Info("notification: task created",
		slog.String("user_id", envelope.UserID),
		slog.Int64("task_id", payload.TaskID),
		slog.String("title", title))
	return events.OutcomeSuccess
}

// NotifyReminder announces that a task's reminder has fired.
func (n *LogNotifier) NotifyReminder(ctx context.Context, envelope *events.Envelope) events.Outcome {
	log := logger.FromContextOrDefault(ctx, n.logger)

	var payload events.ReminderTriggeredPayload
	if err := envelope.UnmarshalPayload(&payload); err != nil {
		log.Warn("dropping reminder-triggered event with malformed payload",
			slog.String("user_id", envelope.UserID),
			slog.String("error", err.Error()))
		return events.OutcomeDrop
	}

	title := payload.Title
	if title == "" {
		title = unknownTaskTitle
	}

	attrs := []any{
		slog.String("user_id", envelope.UserID),
		slog.Int64("task_id", payload.TaskID),
		slog.String("title", title),
	}
	if payload.DueDate != nil {
		attrs = append(attrs, slog.Time("due_date", *payload.DueDate))
	}

	log.Info("notification: reminder triggered", attrs...)
	return events.OutcomeSuccess
}
