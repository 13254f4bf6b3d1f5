package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с профилями провайдеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория провайдеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByUserID получает профиль провайдера вместе с выбранными услугами.
// Профиль создаётся лениво: если записи ещё нет, возвращается пустой профиль
// с нулевым балансом.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"user_id",
		"balance_cents",
		"connected_account_id",
		"is_available",
		"latitude",
		"longitude",
		"updated_at",
	).
		From("providers").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		profile            domain.ProviderProfile
		connectedAccountID sql.NullString
		latitude           sql.NullFloat64
		longitude          sql.NullFloat64
		updatedAt          sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&profile.UserID,
		&profile.BalanceCents,
		&connectedAccountID,
		&profile.IsAvailable,
		&latitude,
		&longitude,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ProviderProfile{UserID: userID, SelectedServices: []int64{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - scan profile: %v", ErrScanRow, err)
	}

	if connectedAccountID.Valid {
		profile.ConnectedAccountID = &connectedAccountID.String
	}
	if latitude.Valid && longitude.Valid {
		profile.CurrentLocation = &domain.Location{
			Latitude:  latitude.Float64,
			Longitude: longitude.Float64,
		}
	}
	profile.UpdatedAt = updatedAt.Time

	services, err := r.getServices(ctx, executor, userID)
	if err != nil {
		return nil, err
	}
	profile.SelectedServices = services

	return &profile, nil
}

// SetConnectedAccount сохраняет идентификатор подключённого счёта в процессинге
func (r *Repository) SetConnectedAccount(ctx context.Context, userID int64, connectedAccountID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("providers").
		Columns("user_id", "connected_account_id").
		Values(userID, connectedAccountID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET connected_account_id = EXCLUDED.connected_account_id, updated_at = NOW()").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetConnectedAccount - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetConnectedAccount - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// ReserveBalance атомарно списывает сумму с баланса провайдера.
// Условие "balance_cents >= amount" выполняется в том же UPDATE, что и
// списание, поэтому конкурентные запросы на выплату не могут увести
// баланс в минус.
func (r *Repository) ReserveBalance(ctx context.Context, userID, amountCents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("providers").
		Set("balance_cents", squirrel.Expr("balance_cents - ?", amountCents)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"balance_cents": amountCents}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReserveBalance - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ReserveBalance - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ReserveBalance - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// ReleaseBalance возвращает ранее списанную сумму на баланс провайдера.
// Вызывается при отказе процессинга после успешного резервирования.
func (r *Repository) ReleaseBalance(ctx context.Context, userID, amountCents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("providers").
		Set("balance_cents", squirrel.Expr("balance_cents + ?", amountCents)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReleaseBalance - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ReleaseBalance - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ReleaseBalance - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}

// IncrementBalance увеличивает баланс провайдера на сумму начисления.
// Upsert на случай, если профиль провайдера ещё не создавался.
func (r *Repository) IncrementBalance(ctx context.Context, userID, amountCents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("providers").
		Columns("user_id", "balance_cents").
		Values(userID, amountCents).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET balance_cents = providers.balance_cents + EXCLUDED.balance_cents, updated_at = NOW()").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementBalance - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: IncrementBalance - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateAvailability помечает провайдера доступным и заменяет его координаты
// и набор выбранных услуг. Вызывается внутри транзакции.
func (r *Repository) UpdateAvailability(ctx context.Context, userID int64, location domain.Location, serviceIDs []int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("providers").
		Columns("user_id", "is_available", "latitude", "longitude").
		Values(userID, true, location.Latitude, location.Longitude).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET is_available = TRUE, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = NOW()").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute upsert: %v", ErrExecQuery, err)
	}

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("provider_services").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute delete: %v", ErrExecQuery, err)
	}

	if len(serviceIDs) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("provider_services").Columns("user_id", "service_id")
	for _, serviceID := range serviceIDs {
		insert = insert.Values(userID, serviceID)
	}

	insertQuery, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// SetUnavailable помечает провайдера недоступным
func (r *Repository) SetUnavailable(ctx context.Context, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("providers").
		Set("is_available", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetUnavailable - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetUnavailable - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// getServices получает выбранные услуги провайдера
func (r *Repository) getServices(ctx context.Context, executor dbmetrics.DBExecutor, userID int64) ([]int64, error) {
	query, args, err := psqlbuilder.Select("service_id").
		From("provider_services").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("service_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]int64, 0)
	for rows.Next() {
		var serviceID int64
		if err := rows.Scan(&serviceID); err != nil {
			return nil, fmt.Errorf("%w: getServices - scan row: %v", ErrScanRow, err)
		}
		services = append(services, serviceID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getServices - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}
