package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

const (
	taskBatchSize = 100

	expireReason = "expired: not paid and not accepted before start"
)

// Expirer выгребает наступившие отложенные задачи и применяет их.
// Доставка at-least-once: обработчик каждой задачи идемпотентен.
type Expirer struct {
	taskRepo    TaskRepository
	bookingRepo BookingRepository
	metrics     Metrics
	interval    time.Duration
	logger      Logger
}

// NewExpirer создает новый экземпляр воркера отложенных задач
func NewExpirer(
	tasks TaskRepository,
	bookings BookingRepository,
	metrics Metrics,
	interval time.Duration,
	logger Logger,
) *Expirer {
	return &Expirer{
		taskRepo:    tasks,
		bookingRepo: bookings,
		metrics:     metrics,
		interval:    interval,
		logger:      logger,
	}
}

// Run запускает цикл обработки до отмены контекста
func (e *Expirer) Run(ctx context.Context) {
	e.logger.Info("Expirer: started, interval=%s", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Expirer: stopped")
			return
		case <-ticker.C:
			e.processDueTasks(ctx)
		}
	}
}

// processDueTasks обрабатывает все наступившие задачи одной пачкой
func (e *Expirer) processDueTasks(ctx context.Context) {
	tasks, err := e.taskRepo.ListDue(ctx, time.Now(), taskBatchSize)
	if err != nil {
		e.logger.Error("Expirer: failed to list due tasks: %v", err)
		return
	}

	for _, task := range tasks {
		if err := e.processTask(ctx, task); err != nil {
			e.logger.Error("Expirer: failed to process task id=%d (%s): %v", task.ID, task.Kind, err)
			e.metrics.IncTaskProcessed(task.Kind, "error")
			continue
		}

		if err := e.taskRepo.MarkDone(ctx, task.ID); err != nil {
			e.logger.Error("Expirer: failed to mark task id=%d done: %v", task.ID, err)
		}
	}
}

// processTask применяет одну задачу по её типу
func (e *Expirer) processTask(ctx context.Context, task *domain.ScheduledTask) error {
	switch task.Kind {
	case domain.TaskKindBookingExpire:
		return e.expireBooking(ctx, task)
	default:
		e.logger.Warn("Expirer: unknown task kind %s, id=%d", task.Kind, task.ID)
		e.metrics.IncTaskProcessed(task.Kind, "skipped")
		return nil
	}
}

// expireBooking отменяет бронирование, если оно так и не было оплачено
// и принято. Задача может сработать после оплаты или принятия, тогда
// условная отмена не проходит и задача закрывается как пропущенная.
func (e *Expirer) expireBooking(ctx context.Context, task *domain.ScheduledTask) error {
	var payload struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return err
	}

	cancelled, err := e.bookingRepo.CancelExpired(ctx, payload.BookingID, expireReason)
	if err != nil {
		return err
	}

	if cancelled {
		e.logger.Info("Expirer: booking id=%d expired and cancelled", payload.BookingID)
		e.metrics.IncTaskProcessed(task.Kind, "done")
	} else {
		e.metrics.IncTaskProcessed(task.Kind, "skipped")
	}

	return nil
}
