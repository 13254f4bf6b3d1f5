package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"status",
	"user_id",
	"provider_id",
	"service_id",
	"service_name",
	"rate_cents",
	"hours",
	"start_at",
	"started_at",
	"completed_at",
	"completed_by",
	"cancelled_at",
	"cancelled_by",
	"cancellation_reason",
	"user_approval_requested",
	"address",
	"latitude",
	"longitude",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование со статусом pending и без назначенного провайдера
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"status",
			"user_id",
			"service_id",
			"service_name",
			"rate_cents",
			"hours",
			"start_at",
			"address",
			"latitude",
			"longitude",
		).
		Values(
			booking.Status,
			booking.UserID,
			booking.ServiceID,
			booking.ServiceName,
			booking.RateCents,
			booking.Hours,
			booking.StartAt,
			booking.Address,
			booking.Latitude,
			booking.Longitude,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает бронирования пользователя, сначала более поздние по началу работ
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByProviderID получает бронирования, принятые провайдером, ближайшие по началу первыми
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListAvailable получает бронирования, доступные для принятия провайдерами:
// pending, без провайдера, с завершённой оплатой и началом не раньше notBefore.
// Сортировка: ближайшие по началу первыми.
func (r *Repository) ListAvailable(ctx context.Context, notBefore time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where("provider_id IS NULL").
		Where(squirrel.GtOrEq{"start_at": notBefore}).
		Where("EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = bookings.id AND p.status = ?)",
			string(domain.PaymentStatusCompleted)).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Claim назначает провайдера на бронирование одним условным обновлением.
// Условие "provider_id IS NULL AND status = pending" закрывает гонку двух
// одновременных принятий: выигрывает ровно один запрос.
func (r *Repository) Claim(ctx context.Context, id, providerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("provider_id", providerID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where("provider_id IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Claim - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Claim - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrNotClaimable
	}

	return nil
}

// RequestStart выставляет флаг запроса подтверждения старта от пользователя.
// Проходит только для назначенного провайдера и статуса pending.
func (r *Repository) RequestStart(ctx context.Context, id, providerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("user_approval_requested", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RequestStart - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RequestStart - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RequestStart - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStartNotAllowed
	}

	return nil
}

// ApproveStart переводит бронирование в in_progress и ставит started_at.
// Проходит только при status = pending, выставленном user_approval_requested
// и назначенном провайдере, поэтому started_at ставится ровно один раз.
func (r *Repository) ApproveStart(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusInProgress).
		Set("started_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Eq{"user_approval_requested": true}).
		Where("provider_id IS NOT NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ApproveStart - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ApproveStart - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ApproveStart - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrApprovalNotAllowed
	}

	return nil
}

// Complete переводит бронирование из in_progress в completed
func (r *Repository) Complete(ctx context.Context, id, completedBy int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("completed_at", squirrel.Expr("NOW()")).
		Set("completed_by", completedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusInProgress}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Complete - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Complete - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Complete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotComplete
	}

	return nil
}

// Cancel отменяет бронирование из pending или in_progress
func (r *Repository) Cancel(ctx context.Context, id, cancelledBy int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancelled_by", cancelledBy).
		Set("cancellation_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.BookingStatus{domain.StatusPending, domain.StatusInProgress}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotCancel
	}

	return nil
}

// CancelExpired отменяет просроченное бронирование, если оно всё ещё pending,
// не принято провайдером и не имеет завершённой оплаты.
// Возвращает false без ошибки, если бронирование уже продвинулось по жизненному
// циклу — обработчик отложенной задачи обязан быть идемпотентным.
func (r *Repository) CancelExpired(ctx context.Context, id int64, reason string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancellation_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where("provider_id IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = bookings.id AND p.status = ?)",
			string(domain.PaymentStatusCompleted)).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: CancelExpired - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CancelExpired - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CancelExpired - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// ListStalePending получает pending бронирования старше olderThan, у которых
// нет ни одной записи об оплате. Используется reconciler-ом для зачистки
// записей, осиротевших из-за падения создания payment intent.
func (r *Repository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Lt{"created_at": olderThan}).
		Where("NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = bookings.id)").
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking            domain.Booking
		providerID         sql.NullInt64
		startedAt          sql.NullTime
		completedAt        sql.NullTime
		completedBy        sql.NullInt64
		cancelledAt        sql.NullTime
		cancelledBy        sql.NullInt64
		cancellationReason sql.NullString
		createdAt          sql.NullTime
		updatedAt          sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.Status,
		&booking.UserID,
		&providerID,
		&booking.ServiceID,
		&booking.ServiceName,
		&booking.RateCents,
		&booking.Hours,
		&booking.StartAt,
		&startedAt,
		&completedAt,
		&completedBy,
		&cancelledAt,
		&cancelledBy,
		&cancellationReason,
		&booking.UserApprovalRequested,
		&booking.Address,
		&booking.Latitude,
		&booking.Longitude,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if providerID.Valid {
		booking.ProviderID = &providerID.Int64
	}
	if startedAt.Valid {
		booking.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		booking.CompletedAt = &completedAt.Time
	}
	if completedBy.Valid {
		booking.CompletedBy = &completedBy.Int64
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	if cancelledBy.Valid {
		booking.CancelledBy = &cancelledBy.Int64
	}
	if cancellationReason.Valid {
		booking.CancellationReason = &cancellationReason.String
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
