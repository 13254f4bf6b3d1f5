package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Booking represents a requested service engagement between a user and a provider
type Booking struct {
	ID         int64
	Status     BookingStatus
	UserID     int64
	ProviderID *int64 // nil, пока бронирование никем не принято

	ServiceID   int64
	ServiceName string
	RateCents   int64 // почасовая ставка в центах
	Hours       int64

	StartAt   time.Time
	StartedAt *time.Time

	CompletedAt *time.Time
	CompletedBy *int64

	CancelledAt        *time.Time
	CancelledBy        *int64
	CancellationReason *string

	UserApprovalRequested bool

	Address   string
	Latitude  float64
	Longitude float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AmountCents returns the full job price in cents
func (b *Booking) AmountCents() int64 {
	return b.RateCents * b.Hours
}

// IsAssigned returns true if a provider has claimed the booking
func (b *Booking) IsAssigned() bool {
	return b.ProviderID != nil
}

// IsTerminal returns true if the booking is in a final state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusInProgress
}

// CanBeCompleted returns true if the booking can be completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusInProgress
}

// CanRequestStart returns true if the assigned provider may request the start handshake
func (b *Booking) CanRequestStart() bool {
	return b.Status == StatusPending && b.IsAssigned()
}

// CanApproveStart returns true if the requester may approve the start handshake
func (b *Booking) CanApproveStart() bool {
	return b.Status == StatusPending && b.UserApprovalRequested && b.IsAssigned()
}
