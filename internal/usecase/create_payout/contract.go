package create_payout

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
	ReserveBalance(ctx context.Context, userID, amountCents int64) error
	ReleaseBalance(ctx context.Context, userID, amountCents int64) error
}

// PayoutRepository интерфейс репозитория выплат
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) (*domain.Payout, error)
}

// PaymentProcessor интерфейс клиента процессинга выплат
type PaymentProcessor interface {
	GetConnectedAccount(accountID string) (*stripeprocessor.ConnectedAccount, error)
	CreatePayout(accountID string, amountCents int64) (*stripeprocessor.PayoutResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
