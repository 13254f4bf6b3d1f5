package get_booking

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

type BookingsService interface {
	GetByID(ctx context.Context, id, actorID int64) (*models.BookingDetailResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
