package process_payment_event

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	UpdateStatusByIntentID(ctx context.Context, paymentIntentID string, from, to domain.PaymentStatus) (bool, error)
}

// EventParser интерфейс проверки подписи и разбора событий процессинга
type EventParser interface {
	ParseWebhookEvent(payload []byte, signatureHeader string) (*stripeprocessor.WebhookEvent, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
