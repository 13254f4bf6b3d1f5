package process_payment_event

import "errors"

var (
	// ErrInvalidSignature возвращается при непрошедшей проверке подписи события
	ErrInvalidSignature = errors.New("process_payment_event: invalid signature")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("process_payment_event: internal error")
)
