package get_earnings

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/earnings/models"
)

type EarningsService interface {
	GetSummary(ctx context.Context, providerID int64) (*models.SummaryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
