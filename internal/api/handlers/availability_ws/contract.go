package availability_ws

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/provider/models"
)

type ProviderService interface {
	UpdateAvailability(ctx context.Context, req *models.UpdateAvailabilityRequest) (*models.AvailabilityResponse, error)
	SetUnavailable(ctx context.Context, providerID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
