package create_payment_intent

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_payment_intent: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("create_payment_intent: booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому пользователю
	ErrAccessDenied = errors.New("create_payment_intent: access denied")

	// ErrNotPayable возвращается, когда бронирование уже вышло из статуса pending
	ErrNotPayable = errors.New("create_payment_intent: booking is not payable")

	// ErrAlreadyPaid возвращается, когда по бронированию уже есть завершённый платёж
	ErrAlreadyPaid = errors.New("create_payment_intent: booking is already paid")

	// ErrPaymentUnavailable возвращается, когда процессинг не смог создать платёж
	ErrPaymentUnavailable = errors.New("create_payment_intent: payment processor unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_payment_intent: internal error")
)
