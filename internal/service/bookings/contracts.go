package bookings

import (
	"context"
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error)
	GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Booking, error)
	ListAvailable(ctx context.Context, notBefore time.Time) ([]*domain.Booking, error)
	RequestStart(ctx context.Context, id, providerID int64) error
	ApproveStart(ctx context.Context, id int64) error
	Complete(ctx context.Context, id, completedBy int64) error
	Cancel(ctx context.Context, id, cancelledBy int64, reason string) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.Payment, error)
	GetCompletedByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	SetRefund(ctx context.Context, paymentID int64, refundID string, status domain.RefundStatus, amountCents int64) error
	CancelPending(ctx context.Context, bookingID int64) error
}

// EarningRepository интерфейс репозитория начислений
type EarningRepository interface {
	CreateIfAbsent(ctx context.Context, earning *domain.Earning) (bool, error)
}

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	IncrementBalance(ctx context.Context, userID, amountCents int64) error
}

// PaymentProcessor интерфейс клиента процессинга платежей
type PaymentProcessor interface {
	CreateRefund(paymentIntentID string) (*stripeprocessor.Refund, error)
}

// Notifier интерфейс для отправки push-уведомлений
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, data map[string]string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
