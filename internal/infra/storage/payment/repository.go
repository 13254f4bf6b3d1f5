package payment

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

var paymentColumns = []string{
	"id",
	"booking_id",
	"amount_cents",
	"status",
	"payment_intent_id",
	"client_secret",
	"payment_method",
	"refund_id",
	"refund_status",
	"refund_amount_cents",
	"refund_created_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с платежами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись о платеже для бронирования
func (r *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"booking_id",
			"amount_cents",
			"status",
			"payment_intent_id",
			"client_secret",
			"payment_method",
		).
		Values(
			payment.BookingID,
			payment.AmountCents,
			payment.Status,
			payment.PaymentIntentID,
			payment.ClientSecret,
			payment.PaymentMethod,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return payment, nil
}

// GetByBookingID получает последний платёж по бронированию
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// ListByBookingID получает все платежи по бронированию, новые первыми
func (r *Repository) ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBookingID - scan payment: %v", ErrScanRow, err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - iterate rows: %v", ErrExecQuery, err)
	}

	return payments, nil
}

// GetCompletedByBookingID получает завершённый платёж по бронированию
func (r *Repository) GetCompletedByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": domain.PaymentStatusCompleted}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCompletedByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCompletedByBookingID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// HasCompleted проверяет наличие завершённого платежа по бронированию
func (r *Repository) HasCompleted(ctx context.Context, bookingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": domain.PaymentStatusCompleted}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasCompleted - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasCompleted - execute query: %v", ErrExecQuery, err)
	}

	return true, nil
}

// GetByIntentID получает платёж по идентификатору payment intent в процессинге
func (r *Repository) GetByIntentID(ctx context.Context, paymentIntentID string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"payment_intent_id": paymentIntentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIntentID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIntentID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// UpdateStatusByIntentID обновляет статус платежа по идентификатору payment intent.
// Обновление условное по текущему статусу, поэтому повторная доставка webhook-а
// с тем же событием не меняет ничего.
func (r *Repository) UpdateStatusByIntentID(ctx context.Context, paymentIntentID string, from, to domain.PaymentStatus) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"payment_intent_id": paymentIntentID}).
		Where(squirrel.Eq{"status": from}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusByIntentID - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusByIntentID - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusByIntentID - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// SetRefund записывает данные возврата по платежу
func (r *Repository) SetRefund(ctx context.Context, paymentID int64, refundID string, status domain.RefundStatus, amountCents int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("refund_id", refundID).
		Set("refund_status", status).
		Set("refund_amount_cents", amountCents).
		Set("refund_created_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetRefund - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetRefund - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetRefund - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// CancelPending отменяет все незавершённые платежи бронирования
func (r *Repository) CancelPending(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", domain.PaymentStatusCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": domain.PaymentStatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CancelPending - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CancelPending - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPayment сканирует одну строку в платёж
func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment           domain.Payment
		refundID          sql.NullString
		refundStatus      sql.NullString
		refundAmountCents sql.NullInt64
		refundCreatedAt   sql.NullTime
		createdAt         sql.NullTime
		updatedAt         sql.NullTime
	)

	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.AmountCents,
		&payment.Status,
		&payment.PaymentIntentID,
		&payment.ClientSecret,
		&payment.PaymentMethod,
		&refundID,
		&refundStatus,
		&refundAmountCents,
		&refundCreatedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refundID.Valid {
		payment.RefundID = &refundID.String
	}
	if refundStatus.Valid {
		status := domain.RefundStatus(refundStatus.String)
		payment.RefundStatus = &status
	}
	if refundAmountCents.Valid {
		payment.RefundAmountCents = &refundAmountCents.Int64
	}
	if refundCreatedAt.Valid {
		payment.RefundCreatedAt = &refundCreatedAt.Time
	}
	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return &payment, nil
}
