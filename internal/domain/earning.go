package domain

import "time"

// Earning represents the provider's credited amount for a completed booking.
// Append-only: одна запись на бронирование, сумма записей формирует баланс провайдера.
type Earning struct {
	ID          int64
	BookingID   int64
	ProviderID  int64
	AmountCents int64
	CreatedAt   time.Time
}
