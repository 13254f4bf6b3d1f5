package earning

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/psqlbuilder"
)

var earningColumns = []string{
	"id",
	"booking_id",
	"provider_id",
	"amount_cents",
	"created_at",
}

// Repository репозиторий для работы с начислениями провайдеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория начислений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateIfAbsent создает начисление по бронированию, если его ещё нет.
// UNIQUE(booking_id) вместе с ON CONFLICT DO NOTHING делает начисление
// идемпотентным при повторном завершении. Возвращает true, если запись создана.
func (r *Repository) CreateIfAbsent(ctx context.Context, earning *domain.Earning) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("earnings").
		Columns(
			"booking_id",
			"provider_id",
			"amount_cents",
		).
		Values(
			earning.BookingID,
			earning.ProviderID,
			earning.AmountCents,
		).
		Suffix("ON CONFLICT (booking_id) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: CreateIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CreateIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CreateIfAbsent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// GetByProviderID получает начисления провайдера, последние первыми
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Earning, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(earningColumns...).
		From("earnings").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	earnings := make([]*domain.Earning, 0)
	for rows.Next() {
		var (
			earning   domain.Earning
			createdAt sql.NullTime
		)

		err := rows.Scan(
			&earning.ID,
			&earning.BookingID,
			&earning.ProviderID,
			&earning.AmountCents,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByProviderID - scan row: %v", ErrScanRow, err)
		}

		earning.CreatedAt = createdAt.Time
		earnings = append(earnings, &earning)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - rows error: %v", ErrScanRow, err)
	}

	return earnings, nil
}
