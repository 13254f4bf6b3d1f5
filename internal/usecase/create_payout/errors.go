package create_payout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount возвращается при некорректной сумме выплаты:
	// сумма обязана быть целым числом не меньше минимума
	ErrInvalidAmount = errors.New("create_payout: invalid payout amount")

	// ErrNoPayoutAccount возвращается, когда провайдер не проходил онбординг в процессинге
	ErrNoPayoutAccount = errors.New("create_payout: provider has no payout account")

	// ErrNoExternalAccount возвращается, когда к счёту провайдера не привязан внешний счёт
	ErrNoExternalAccount = errors.New("create_payout: provider has no external account")

	// ErrInsufficientBalance возвращается, когда баланса провайдера не хватает на выплату
	ErrInsufficientBalance = errors.New("create_payout: insufficient balance")

	// ErrProcessorRejected возвращается, когда процессинг отклонил выплату.
	// Конкретный отказ приходит как RejectionError.
	ErrProcessorRejected = errors.New("create_payout: payout rejected by processor")

	// ErrProcessorUnavailable возвращается при недоступности процессинга
	ErrProcessorUnavailable = errors.New("create_payout: payout processor unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_payout: internal error")
)

// RejectionError отказ процессинга в выплате.
// Message содержит только формулировку процессинга, без внутренних обёрток,
// и может быть показан клиенту как есть.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%v: %s", ErrProcessorRejected, e.Message)
}

func (e *RejectionError) Unwrap() error { return ErrProcessorRejected }
