package stripeprocessor

import (
	"errors"
	"fmt"
)

var (
	// ErrClientRejected возвращается, когда процессинг отклонил запрос по вине клиента
	// (невалидные параметры, непройденный онбординг, запрещённая операция).
	ErrClientRejected = errors.New("stripe client: request rejected")

	// ErrUnavailable возвращается при сетевых и внутренних ошибках процессинга
	ErrUnavailable = errors.New("stripe client: service unavailable")

	// ErrInvalidSignature возвращается при непрошедшей проверке подписи webhook-а
	ErrInvalidSignature = errors.New("stripe client: invalid webhook signature")
)

// RejectionError несёт собственное сообщение процессинга об отказе.
// Message пригоден для ответа клиенту, внутренний контекст остаётся в Method.
type RejectionError struct {
	Method  string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%v: %s - %s", ErrClientRejected, e.Method, e.Message)
}

func (e *RejectionError) Unwrap() error { return ErrClientRejected }
