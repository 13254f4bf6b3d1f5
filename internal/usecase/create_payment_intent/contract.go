package create_payment_intent

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.Payment, error)
	HasCompleted(ctx context.Context, bookingID int64) (bool, error)
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}

// PaymentProcessor интерфейс клиента процессинга платежей
type PaymentProcessor interface {
	CreatePaymentIntent(amountCents int64, bookingID int64) (*stripeprocessor.PaymentIntent, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
