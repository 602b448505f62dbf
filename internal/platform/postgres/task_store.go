package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwhitney/taskloop-api/internal/domain"
	"github.com/mwhitney/taskloop-api/internal/platform/logger"
	"github.com/mwhitney/taskloop-api/internal/store"
)

// taskColumns is the canonical column list scanned by scanTask.
const taskColumns = `id, user_id, title, description, completed, priority,
	due_date, recurrence_rule, reminder_enabled, deleted_at, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (user_id, title, description, completed, priority,
			due_date, recurrence_rule, reminder_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Title,
		nullString(task.Description),
		task.Completed,
		nullString(string(task.Priority)),
		task.DueDate,
		nullString(task.RecurrenceRule),
		task.ReminderEnabled,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID.String()),
		slog.Bool("recurring", task.IsRecurring()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
// Tasks belonging to other users and soft-deleted tasks are reported as
// ErrTaskNotFound.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	return task, nil
}

// ListForUser implements store.TaskStore.ListForUser.
func (s *PostgresTaskStore) ListForUser(ctx context.Context, userID uuid.UUID, filter store.TaskListFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND deleted_at IS NULL`)
	args := []any{userID}

	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		fmt.Fprintf(&sb, " AND due_date <= $%d", len(args))
	}
	if filter.Recurring != nil {
		if *filter.Recurring {
			sb.WriteString(" AND recurrence_rule IS NOT NULL")
		} else {
			sb.WriteString(" AND recurrence_rule IS NULL")
		}
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		fmt.Fprintf(&sb, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	sb.WriteString(" ORDER BY " + sortColumn(filter.SortField))
	if filter.Descending {
		sb.WriteString(" DESC")
	} else {
		sb.WriteString(" ASC")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// sortColumn maps a filter sort field onto a whitelisted column name.
// The column is interpolated into SQL, so it must never come from user
// input without passing through this whitelist.
func sortColumn(field string) string {
	switch field {
	case "priority", "due_date", "title", "created_at":
		return field
	default:
		return "created_at"
	}
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, priority = $4,
			due_date = $5, recurrence_rule = $6, reminder_enabled = $7,
			deleted_at = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		task.Completed,
		nullString(string(task.Priority)),
		task.DueDate,
		nullString(task.RecurrenceRule),
		task.ReminderEnabled,
		task.DeletedAt,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// SoftDelete implements store.TaskStore.SoftDelete.
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, id int64, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		UPDATE tasks
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		log.Error("failed to soft-delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task soft-deleted",
		slog.Int64("task_id", id),
		slog.String("user_id", userID.String()))
	return nil
}

// FindDueRecurring implements store.TaskStore.FindDueRecurring.
//
// The query intentionally omits the due-date comparison; the recurrence
// engine re-checks "due before now" per task. See the interface doc for why
// the asymmetry with FindDueReminders is preserved.
func (s *PostgresTaskStore) FindDueRecurring(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE recurrence_rule IS NOT NULL
		  AND deleted_at IS NULL
		  AND completed = FALSE
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query recurring tasks",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// FindDueReminders implements store.TaskStore.FindDueReminders.
func (s *PostgresTaskStore) FindDueReminders(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE reminder_enabled = TRUE
		  AND deleted_at IS NULL
		  AND completed = FALSE
		  AND due_date IS NOT NULL
		  AND due_date <= $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		log.Error("failed to query due reminders",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ExistsSimilar implements store.TaskStore.ExistsSimilar.
func (s *PostgresTaskStore) ExistsSimilar(ctx context.Context, userID uuid.UUID, title string, due time.Time, tolerance time.Duration) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE user_id = $1
			  AND title = $2
			  AND due_date >= $3
			  AND due_date <= $4
			  AND deleted_at IS NULL
		)
	`

	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		query,
		userID,
		title,
		due.Add(-tolerance),
		due.Add(tolerance),
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check for similar task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return false, err
	}

	return exists, nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description, priority, recurrence sql.NullString

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Completed,
		&priority,
		&task.DueDate,
		&recurrence,
		&task.ReminderEnabled,
		&task.DeletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Priority = domain.Priority(priority.String)
	task.RecurrenceRule = recurrence.String
	return &task, nil
}

// collectTasks drains rows into a task slice.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
