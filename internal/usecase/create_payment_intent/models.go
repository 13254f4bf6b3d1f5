package create_payment_intent

// Request запрос на создание платежа по существующему бронированию
type Request struct {
	UserID    int64
	BookingID int64
}

// Response данные платежа для подтверждения на стороне клиента
type Response struct {
	PaymentID       int64
	BookingID       int64
	AmountCents     int64
	Status          string
	PaymentIntentID string
	ClientSecret    string
}
