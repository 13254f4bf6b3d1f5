package earnings

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
}

// EarningRepository интерфейс репозитория начислений
type EarningRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Earning, error)
}

// PayoutRepository интерфейс репозитория выплат
type PayoutRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Payout, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
