package create_booking

import "time"

// Request запрос на создание бронирования.
// StartAt задаёт начало работ в формате RFC3339. Старые поля StartDate и
// StartTime принимаются для совместимости, но обязаны согласовываться
// со StartAt, если указаны оба варианта.
type Request struct {
	UserID    int64
	ServiceID int64

	RateUnits int64
	Hours     int64

	StartAt   string
	StartDate string
	StartTime string

	Address   string
	Latitude  float64
	Longitude float64
}

// Response результат создания бронирования
type Response struct {
	ID          int64
	Status      string
	ServiceID   int64
	ServiceName string
	RateCents   int64
	Hours       int64
	AmountCents int64
	StartAt     time.Time
	Address     string

	PaymentIntentID string
	ClientSecret    string

	CreatedAt time.Time
}
