package stripeprocessor

// PaymentIntent результат создания платежа в процессинге
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PayoutResult результат создания или запроса выплаты
type PayoutResult struct {
	ID     string
	Status string

	// Снимок внешнего счёта, на который ушла выплата
	DestinationAccount  string
	DestinationType     string
	DestinationLast4    string
	DestinationCountry  string
	DestinationCurrency string
}

// ConnectedAccount подключённый счёт провайдера в процессинге
type ConnectedAccount struct {
	ID                  string
	HasExternalAccounts bool
}

// Refund результат возврата платежа
type Refund struct {
	ID          string
	Status      string
	AmountCents int64
}

// WebhookEvent разобранное и проверенное по подписи событие процессинга
type WebhookEvent struct {
	ID   string
	Type string

	// PaymentIntentID заполнен для событий payment_intent.*
	PaymentIntentID string
}
