package worker

import (
	"context"
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// TaskRepository интерфейс репозитория отложенных задач
type TaskRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error)
	MarkDone(ctx context.Context, id int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CancelExpired(ctx context.Context, id int64, reason string) (bool, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Booking, error)
}

// PayoutRepository интерфейс репозитория выплат
type PayoutRepository interface {
	ListNonTerminal(ctx context.Context, limit int) ([]*domain.Payout, error)
	UpdateStatus(ctx context.Context, payoutID string, status string) error
}

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
}

// PaymentProcessor интерфейс клиента процессинга
type PaymentProcessor interface {
	GetPayout(accountID, payoutID string) (*stripeprocessor.PayoutResult, error)
}

// Metrics интерфейс счётчиков обработанных задач
type Metrics interface {
	IncTaskProcessed(kind, status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
