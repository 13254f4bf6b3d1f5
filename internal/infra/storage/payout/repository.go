package payout

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/psqlbuilder"
)

var payoutColumns = []string{
	"id",
	"provider_id",
	"amount_cents",
	"currency",
	"payout_id",
	"status",
	"payment_method",
	"destination_account",
	"destination_type",
	"destination_last4",
	"destination_country",
	"destination_currency",
	"created_at",
}

// Repository репозиторий для работы с выплатами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория выплат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись о выплате
func (r *Repository) Create(ctx context.Context, payout *domain.Payout) (*domain.Payout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payouts").
		Columns(
			"provider_id",
			"amount_cents",
			"currency",
			"payout_id",
			"status",
			"payment_method",
			"destination_account",
			"destination_type",
			"destination_last4",
			"destination_country",
			"destination_currency",
		).
		Values(
			payout.ProviderID,
			payout.AmountCents,
			payout.Currency,
			payout.PayoutID,
			payout.Status,
			payout.PaymentMethod,
			payout.DestinationAccount,
			payout.DestinationType,
			payout.DestinationLast4,
			payout.DestinationCountry,
			payout.DestinationCurrency,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&payout.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	payout.CreatedAt = createdAt.Time

	return payout, nil
}

// GetByProviderID получает выплаты провайдера, последние первыми
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Payout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(payoutColumns...).
		From("payouts").
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

	return scanPayouts(rows)
}

// ListNonTerminal получает выплаты в нефинальных статусах для синхронизации с процессингом
func (r *Repository) ListNonTerminal(ctx context.Context, limit int) ([]*domain.Payout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(payoutColumns...).
		From("payouts").
		Where(squirrel.NotEq{"status": domain.PayoutTerminalStatuses}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListNonTerminal - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListNonTerminal - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanPayouts(rows)
}

// UpdateStatus обновляет статус выплаты по её идентификатору в процессинге
func (r *Repository) UpdateStatus(ctx context.Context, payoutID string, status string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payouts").
		Set("status", status).
		Where(squirrel.Eq{"payout_id": payoutID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPayoutNotFound
	}

	return nil
}

// scanPayouts сканирует результаты запроса в слайс выплат
func scanPayouts(rows *sql.Rows) ([]*domain.Payout, error) {
	payouts := make([]*domain.Payout, 0)

	for rows.Next() {
		var (
			payout              domain.Payout
			destinationLast4    sql.NullString
			destinationCountry  sql.NullString
			destinationCurrency sql.NullString
			createdAt           sql.NullTime
		)

		err := rows.Scan(
			&payout.ID,
			&payout.ProviderID,
			&payout.AmountCents,
			&payout.Currency,
			&payout.PayoutID,
			&payout.Status,
			&payout.PaymentMethod,
			&payout.DestinationAccount,
			&payout.DestinationType,
			&destinationLast4,
			&destinationCountry,
			&destinationCurrency,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanPayouts - scan row: %v", ErrScanRow, err)
		}

		if destinationLast4.Valid {
			payout.DestinationLast4 = &destinationLast4.String
		}
		if destinationCountry.Valid {
			payout.DestinationCountry = &destinationCountry.String
		}
		if destinationCurrency.Valid {
			payout.DestinationCurrency = &destinationCurrency.String
		}
		payout.CreatedAt = createdAt.Time

		payouts = append(payouts, &payout)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanPayouts - rows error: %v", ErrScanRow, err)
	}

	return payouts, nil
}
