package accept_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("accept_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("accept_booking: booking not found")

	// ErrNotPaid возвращается, когда бронирование ещё не оплачено
	ErrNotPaid = errors.New("accept_booking: booking is not paid")

	// ErrStartPassed возвращается, когда начало работ уже прошло
	ErrStartPassed = errors.New("accept_booking: booking start time has passed")

	// ErrAlreadyClaimed возвращается, когда бронирование уже принято другим
	// провайдером или ушло из pending
	ErrAlreadyClaimed = errors.New("accept_booking: booking is no longer available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("accept_booking: internal error")
)
