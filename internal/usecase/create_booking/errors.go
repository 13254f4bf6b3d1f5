package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrUnknownService возвращается при неизвестном виде услуги
	ErrUnknownService = errors.New("create_booking: unknown service kind")

	// ErrStartTooSoon возвращается, когда до начала работ остаётся меньше часа
	ErrStartTooSoon = errors.New("create_booking: start time is too soon")

	// ErrStartMismatch возвращается, когда дата и время начала из старых полей
	// расходятся с датой из startAt
	ErrStartMismatch = errors.New("create_booking: start date and time do not match")

	// ErrPaymentUnavailable возвращается, когда процессинг не смог создать платёж.
	// Бронирование при этом уже создано и остаётся в pending до истечения срока.
	ErrPaymentUnavailable = errors.New("create_booking: payment processor unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
