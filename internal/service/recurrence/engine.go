package recurrence

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/domain/recur"
	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// DuplicateTolerance is the window used to suppress duplicate recurring
// instances: an event is dropped if the user already has an active task with
// the same title due within this distance of the computed occurrence.
// Redelivered events land well inside the window; genuinely distinct
// occurrences of the supported cadences are at least a day apart.
const DuplicateTolerance = time.Hour

// Engine creates recurring task instances and fires reminders.
type Engine struct {
	db        *sql.DB
	taskStore store.TaskStore
	publisher events.Publisher
	logger    *slog.Logger

	timeFunc func() time.Time // Injectable for testing
	runInTx  func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewEngine creates a recurrence Engine.
func NewEngine(db *sql.DB, taskStore store.TaskStore, publisher events.Publisher, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		db:        db,
		taskStore: taskStore,
		publisher: publisher,
		logger:    log.With(slog.String("component", "recurrence_engine")),
		timeFunc:  time.Now,
		runInTx:   store.RunInTransaction,
	}
}

// ProcessDueTasks runs one scheduler pass: it fires due reminders, then
// rolls over due recurring templates. Returns the instance tasks created
// during the pass.
//
// Per-task failures are logged and skipped so one broken row cannot stall
// the rest of the batch; only scan failures abort the pass.
func (e *Engine) ProcessDueTasks(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)
	now := e.timeFunc().UTC()

	if err := e.fireDueReminders(ctx, now); err != nil {
		return nil, err
	}

	templates, err := e.taskStore.FindDueRecurring(ctx)
	if err != nil {
		log.Error("failed to scan recurring tasks",
			slog.String("error", err.Error()))
		return nil, err
	}

	var created []*domain.Task
	for _, template := range templates {
		// The scan returns every active recurring template; whether it is
		// actually due is decided here, against a single pass-wide instant.
		if !template.DueBefore(now) {
			continue
		}

		instance, err := e.rollOver(ctx, template)
		if err != nil {
			log.Error("failed to roll over recurring task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", template.ID),
				slog.String("user_id", template.UserID.String()))
			continue
		}
		created = append(created, instance)
	}

	if len(created) > 0 {
		log.Info("recurring tasks rolled over",
			slog.Int("created", len(created)))
	}

	return created, nil
}

// fireDueReminders publishes reminder-triggered for every task whose
// reminder is due and clears the flag so each reminder fires once.
func (e *Engine) fireDueReminders(ctx context.Context, now time.Time) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	due, err := e.taskStore.FindDueReminders(ctx, now)
	if err != nil {
		log.Error("failed to scan due reminders",
			slog.String("error", err.Error()))
		return err
	}

	for _, task := range due {
		e.publisher.Publish(ctx, events.EventReminderTriggered, task.UserID.String(), events.ReminderTriggeredPayload{
			TaskID:  task.ID,
			Title:   task.Title,
			DueDate: task.DueDate,
		})

		task.ReminderEnabled = false
		task.Touch()
		err := e.runInTx(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
			return e.taskStore.WithTx(tx).Update(ctx, task)
		})
		if err != nil {
			// The flag stays set, so the reminder fires again next pass.
			// Preferable to silently losing it.
			log.Error("failed to clear reminder flag",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
		}
	}

	return nil
}

// rollOver creates the successor instance for a due recurring template and
// marks the template completed, both in one transaction. The successor
// advances from the template's due date, not from now, so the cadence holds
// even when the scheduler runs late.
func (e *Engine) rollOver(ctx context.Context, template *domain.Task) (*domain.Task, error) {
	next := recur.NextOccurrence(*template.DueDate, template.RecurrenceRule)

	instance, err := domain.NewTask(template.UserID, template.Title)
	if err != nil {
		return nil, err
	}
	instance.Description = template.Description
	instance.Priority = template.Priority
	instance.DueDate = &next
	instance.RecurrenceRule = template.RecurrenceRule
	instance.ReminderEnabled = template.ReminderEnabled

	err = e.runInTx(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := e.taskStore.WithTx(tx)
		if err := txStore.Create(ctx, instance); err != nil {
			return err
		}
		template.Completed = true
		template.Touch()
		return txStore.Update(ctx, template)
	})
	if err != nil {
		return nil, err
	}

	userID := template.UserID.String()
	e.publisher.Publish(ctx, events.EventRecurringInstanceCreated, userID, events.RecurringInstanceCreatedPayload{
		TaskID:        instance.ID,
		ParentTaskID:  template.ID,
		Title:         instance.Title,
		ScheduledDate: next,
	})
	e.publisher.Publish(ctx, events.EventTaskCompleted, userID, events.TaskCompletedPayload{
		TaskID: template.ID,
		Title:  template.Title,
	})

	return instance, nil
}

// HandleRecurringTaskCreated schedules the first instance of a freshly
// created recurring task.
//
// Delivery is at-least-once, so the handler must be idempotent: before
// creating the instance it checks whether the user already has an active
// task with the same title due within DuplicateTolerance of the computed
// occurrence, and drops the event if so. Unprocessable events are dropped;
// only storage failures request a retry.
func (e *Engine) HandleRecurringTaskCreated(ctx context.Context, envelope *events.Envelope) events.Outcome {
	log := logger.FromContextOrDefault(ctx, e.logger)

	userID, err := uuid.Parse(envelope.UserID)
	if err != nil {
		log.Warn("dropping recurring-task-created event with invalid user ID",
			slog.String("user_id", envelope.UserID))
		return events.OutcomeDrop
	}

	var payload events.RecurringTaskCreatedPayload
	if err := envelope.UnmarshalPayload(&payload); err != nil {
		log.Warn("dropping recurring-task-created event with malformed payload",
			slog.String("user_id", envelope.UserID),
			slog.String("error", err.Error()))
		return events.OutcomeDrop
	}
	if payload.RecurrenceRule == "" {
		log.Warn("dropping recurring-task-created event without recurrence rule",
			slog.String("user_id", envelope.UserID),
			slog.Int64("task_id", payload.TaskID))
		return events.OutcomeDrop
	}

	// First instance is anchored to now, not to the parent's due date.
	next := recur.NextOccurrence(e.timeFunc().UTC(), payload.RecurrenceRule)

	exists, err := e.taskStore.ExistsSimilar(ctx, userID, payload.Title, next, DuplicateTolerance)
	if err != nil {
		log.Error("failed to check for duplicate recurring instance",
			slog.String("error", err.Error()),
			slog.String("user_id", envelope.UserID))
		return events.OutcomeRetry
	}
	if exists {
		log.Debug("skipping duplicate recurring instance",
			slog.String("user_id", envelope.UserID),
			slog.Int64("parent_task_id", payload.TaskID),
			slog.Time("scheduled_date", next))
		return events.OutcomeDrop
	}

	instance, err := domain.NewTask(userID, payload.Title)
	if err != nil {
		log.Warn("dropping recurring-task-created event with invalid task data",
			slog.String("user_id", envelope.UserID),
			slog.String("error", err.Error()))
		return events.OutcomeDrop
	}
	instance.DueDate = &next
	instance.RecurrenceRule = payload.RecurrenceRule

	err = e.runInTx(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		return e.taskStore.WithTx(tx).Create(ctx, instance)
	})
	if err != nil {
		log.Error("failed to create recurring instance",
			slog.String("error", err.Error()),
			slog.String("user_id", envelope.UserID),
			slog.Int64("parent_task_id", payload.TaskID))
		return events.OutcomeRetry
	}

	e.publisher.Publish(ctx, events.EventRecurringInstanceCreated, envelope.UserID, events.RecurringInstanceCreatedPayload{
		TaskID:        instance.ID,
		ParentTaskID:  payload.TaskID,
		Title:         instance.Title,
		ScheduledDate: next,
	})

	log.Info("recurring instance scheduled",
		slog.Int64("task_id", instance.ID),
		slog.Int64("parent_task_id", payload.TaskID),
		slog.Time("scheduled_date", next))

	return events.OutcomeSuccess
}
