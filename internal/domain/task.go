package domain

import "time"

// Task kinds handled by the background worker
const (
	TaskKindBookingExpire = "booking.expire"
)

// ScheduledTask представляет отложенную задачу с доставкой at-least-once.
// Обработчик задачи обязан быть идемпотентным: задача может сработать
// после того, как бронирование уже оплачено или принято.
type ScheduledTask struct {
	ID      int64
	TaskKey string
	Kind    string
	Payload []byte
	FireAt  time.Time
	DoneAt  *time.Time

	CreatedAt time.Time
}
