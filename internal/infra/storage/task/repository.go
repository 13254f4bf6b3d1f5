package task

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с отложенными задачами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отложенных задач
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отложенную задачу. Повторное создание задачи с тем же
// ключом молча игнорируется.
func (r *Repository) Create(ctx context.Context, taskKey, kind string, payload []byte, fireAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("scheduled_tasks").
		Columns("task_key", "kind", "payload", "fire_at").
		Values(taskKey, kind, payload, fireAt).
		Suffix("ON CONFLICT (task_key) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListDue получает невыполненные задачи, срок которых наступил
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"task_key",
		"kind",
		"payload",
		"fire_at",
		"done_at",
		"created_at",
	).
		From("scheduled_tasks").
		Where("done_at IS NULL").
		Where(squirrel.LtOrEq{"fire_at": now}).
		OrderBy("fire_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tasks := make([]*domain.ScheduledTask, 0)
	for rows.Next() {
		var (
			task      domain.ScheduledTask
			doneAt    sql.NullTime
			createdAt sql.NullTime
		)

		err := rows.Scan(
			&task.ID,
			&task.TaskKey,
			&task.Kind,
			&task.Payload,
			&task.FireAt,
			&doneAt,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListDue - scan row: %v", ErrScanRow, err)
		}

		if doneAt.Valid {
			task.DoneAt = &doneAt.Time
		}
		task.CreatedAt = createdAt.Time

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDue - rows error: %v", ErrScanRow, err)
	}

	return tasks, nil
}

// MarkDone помечает задачу выполненной
func (r *Repository) MarkDone(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("scheduled_tasks").
		Set("done_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("done_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkDone - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkDone - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkDone - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
