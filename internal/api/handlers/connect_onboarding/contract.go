package connect_onboarding

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/provider/models"
)

type ProviderService interface {
	GetOnboardingLink(ctx context.Context, providerID int64) (*models.LinkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
