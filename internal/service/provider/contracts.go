package provider

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error)
	SetConnectedAccount(ctx context.Context, userID int64, connectedAccountID string) error
	UpdateAvailability(ctx context.Context, userID int64, location domain.Location, serviceIDs []int64) error
	SetUnavailable(ctx context.Context, userID int64) error
}

// PaymentProcessor интерфейс клиента процессинга для онбординга провайдеров
type PaymentProcessor interface {
	CreateConnectedAccount(providerID int64) (*stripeprocessor.ConnectedAccount, error)
	CreateOnboardingLink(accountID, refreshURL, returnURL string) (string, error)
	CreateLoginLink(accountID string) (string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
