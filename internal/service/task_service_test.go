package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/mocks"
	"github.com/mwhitney/taskloop-api/internal/store"
)

func newTestTaskService(taskStore *mocks.TaskStore, tagStore *mocks.TagStore, publisher *mocks.Publisher) *TaskServiceImpl {
	svc := NewTaskService(taskStore, tagStore, nil, publisher, testLogger()).(*TaskServiceImpl)
	svc.runInTx = func(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestCreateTaskPublishesTaskCreated(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	tagStore := mocks.NewTagStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, tagStore, publisher)

	userID := uuid.New()
	due := time.Now().Add(24 * time.Hour).UTC()
	task, err := svc.CreateTask(context.Background(), userID, CreateTaskInput{
		Title:    "Pay rent",
		Priority: domain.PriorityHigh,
		DueDate:  &due,
		Tags:     []string{"home", "money"},
	})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	created := publisher.PublishedOfType(events.EventTaskCreated)
	require.Len(t, created, 1)
	assert.Equal(t, userID.String(), created[0].UserID)

	var payload events.TaskCreatedPayload
	require.NoError(t, created[0].DecodePayload(&payload))
	assert.Equal(t, task.ID, payload.TaskID)
	assert.Equal(t, "Pay rent", payload.Title)
	assert.Equal(t, []string{"home", "money"}, payload.Tags)

	assert.Empty(t, publisher.PublishedOfType(events.EventRecurringTaskCreated),
		"non-recurring tasks must not publish recurring-task-created")

	names, err := tagStore.TagsForTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "money"}, names)
}

func TestCreateRecurringTaskPublishesBothEvents(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	userID := uuid.New()
	task, err := svc.CreateTask(context.Background(), userID, CreateTaskInput{
		Title:          "Weekly standup",
		RecurrenceRule: "WEEKLY",
	})
	require.NoError(t, err)

	require.Len(t, publisher.PublishedOfType(events.EventTaskCreated), 1)

	recurring := publisher.PublishedOfType(events.EventRecurringTaskCreated)
	require.Len(t, recurring, 1)

	var payload events.RecurringTaskCreatedPayload
	require.NoError(t, recurring[0].DecodePayload(&payload))
	assert.Equal(t, task.ID, payload.TaskID)
	assert.Equal(t, "WEEKLY", payload.RecurrenceRule)
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	publisher := mocks.NewPublisher()
	svc := newTestTaskService(mocks.NewTaskStore(), mocks.NewTagStore(), publisher)

	_, err := svc.CreateTask(context.Background(), uuid.New(), CreateTaskInput{Title: ""})
	assert.Error(t, err)

	_, err = svc.CreateTask(context.Background(), uuid.New(), CreateTaskInput{
		Title:    "x",
		Priority: domain.Priority("urgent"),
	})
	assert.Error(t, err)

	assert.Empty(t, publisher.Published(), "failed creates must not publish events")
}

func TestUpdateTaskPublishesChangedFields(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	userID := uuid.New()
	seeded, err := domain.NewTask(userID, "Old title")
	require.NoError(t, err)
	taskStore.Seed(seeded)

	newTitle := "New title"
	priority := domain.PriorityLow
	updated, err := svc.UpdateTask(context.Background(), userID, seeded.ID, UpdateTaskInput{
		Title:    &newTitle,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)

	published := publisher.PublishedOfType(events.EventTaskUpdated)
	require.Len(t, published, 1)

	var payload events.TaskUpdatedPayload
	require.NoError(t, published[0].DecodePayload(&payload))
	assert.Equal(t, seeded.ID, payload.TaskID)
	assert.Contains(t, payload.Changes, "title")
	assert.Contains(t, payload.Changes, "priority")
	assert.NotContains(t, payload.Changes, "description")
}

func TestUpdateTaskNoChangesPublishesNothing(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	userID := uuid.New()
	seeded, err := domain.NewTask(userID, "Same title")
	require.NoError(t, err)
	taskStore.Seed(seeded)

	sameTitle := "Same title"
	_, err = svc.UpdateTask(context.Background(), userID, seeded.ID, UpdateTaskInput{Title: &sameTitle})
	require.NoError(t, err)

	assert.Empty(t, publisher.Published())
}

func TestToggleCompletionEvents(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	userID := uuid.New()
	seeded, err := domain.NewTask(userID, "Pay rent")
	require.NoError(t, err)
	taskStore.Seed(seeded)

	task, err := svc.ToggleCompletion(context.Background(), userID, seeded.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	require.Len(t, publisher.PublishedOfType(events.EventTaskCompleted), 1)

	task, err = svc.ToggleCompletion(context.Background(), userID, seeded.ID)
	require.NoError(t, err)
	assert.False(t, task.Completed)
	require.Len(t, publisher.PublishedOfType(events.EventTaskUpdated), 1,
		"un-completing publishes task-updated, not task-completed")
}

func TestDeleteTaskPublishesTaskDeleted(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	userID := uuid.New()
	seeded, err := domain.NewTask(userID, "Doomed")
	require.NoError(t, err)
	taskStore.Seed(seeded)

	require.NoError(t, svc.DeleteTask(context.Background(), userID, seeded.ID))

	stored := taskStore.Get(seeded.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.IsDeleted())

	deleted := publisher.PublishedOfType(events.EventTaskDeleted)
	require.Len(t, deleted, 1)

	// The task is gone from the user's perspective.
	_, err = svc.GetTask(context.Background(), userID, seeded.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskOwnershipEnforced(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewTaskStore()
	publisher := mocks.NewPublisher()
	svc := newTestTaskService(taskStore, mocks.NewTagStore(), publisher)

	owner := uuid.New()
	intruder := uuid.New()
	seeded, err := domain.NewTask(owner, "Private")
	require.NoError(t, err)
	taskStore.Seed(seeded)

	_, err = svc.GetTask(context.Background(), intruder, seeded.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = svc.DeleteTask(context.Background(), intruder, seeded.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.ToggleCompletion(context.Background(), intruder, seeded.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.Empty(t, publisher.Published(), "failed mutations must not publish events")
}
