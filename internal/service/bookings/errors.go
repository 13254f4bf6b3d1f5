package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrNotAssignedProvider возвращается, когда провайдер не назначен на бронирование
	ErrNotAssignedProvider = errors.New("provider is not assigned to this booking")

	// ErrStartNotAllowed возвращается, когда провайдер не может запросить старт работ
	ErrStartNotAllowed = errors.New("booking start cannot be requested")

	// ErrApprovalNotAllowed возвращается, когда старт работ нельзя подтвердить:
	// провайдер не запрашивал старт или бронирование ушло из pending
	ErrApprovalNotAllowed = errors.New("booking start cannot be approved")

	// ErrCannotComplete возвращается, когда бронирование не может быть завершено
	ErrCannotComplete = errors.New("booking cannot be completed")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
