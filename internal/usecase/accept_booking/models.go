package accept_booking

import "time"

// Request запрос провайдера на принятие бронирования
type Request struct {
	BookingID  int64
	ProviderID int64
}

// Response результат принятия бронирования
type Response struct {
	ID          int64
	Status      string
	ProviderID  int64
	ServiceName string
	AmountCents int64
	StartAt     time.Time
	Address     string
}
