package create_payout

import "time"

// Request запрос провайдера на выплату.
// Amount принимается числом из JSON и валидируется как целое: дробные
// суммы отклоняются, а не округляются.
type Request struct {
	ProviderID int64
	Amount     float64
}

// Response результат создания выплаты
type Response struct {
	ID          int64
	PayoutID    string
	Status      string
	AmountCents int64
	Currency    string

	DestinationType     string
	DestinationLast4    *string
	DestinationCountry  *string
	DestinationCurrency *string

	CreatedAt time.Time
}
