package provider

import "errors"

var (
	// ErrNoPayoutAccount возвращается, когда провайдер не проходил онбординг в процессинге
	ErrNoPayoutAccount = errors.New("provider has no payout account")

	// ErrUnknownService возвращается при неизвестном виде услуги
	ErrUnknownService = errors.New("unknown service kind")

	// ErrProcessorUnavailable возвращается при недоступности процессинга
	ErrProcessorUnavailable = errors.New("payout processor unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
