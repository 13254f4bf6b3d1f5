package domain

import "time"

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// RefundStatus represents the processor-side status of a refund
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
	RefundStatusCancelled RefundStatus = "cancelled"
)

// Payment represents a captured (or pending) charge for exactly one booking
type Payment struct {
	ID          int64
	BookingID   int64
	AmountCents int64
	Status      PaymentStatus

	// Ссылки на платёж в процессинге
	PaymentIntentID string
	ClientSecret    string
	PaymentMethod   string

	// Refund появляется только при отмене оплаченного бронирования
	RefundID          *string
	RefundStatus      *RefundStatus
	RefundAmountCents *int64
	RefundCreatedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompleted returns true if the payment has been captured
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}
