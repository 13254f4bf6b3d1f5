package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrNotClaimable возвращается, когда условное обновление claim не затронуло ни одной строки:
	// бронирование не pending, уже принято другим провайдером или не существует
	ErrNotClaimable = errors.New("booking.repository: booking is not claimable")

	// ErrStartNotAllowed возвращается, когда запрос старта работ не прошёл проверку статуса/провайдера
	ErrStartNotAllowed = errors.New("booking.repository: start request is not allowed")

	// ErrApprovalNotAllowed возвращается, когда подтверждение старта не прошло проверку предусловий
	ErrApprovalNotAllowed = errors.New("booking.repository: start approval is not allowed")

	// ErrCannotComplete возвращается, когда бронирование нельзя завершить из текущего статуса
	ErrCannotComplete = errors.New("booking.repository: booking cannot be completed")

	// ErrCannotCancel возвращается, когда бронирование нельзя отменить из текущего статуса
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
