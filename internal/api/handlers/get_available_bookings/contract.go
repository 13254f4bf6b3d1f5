package get_available_bookings

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

type BookingsService interface {
	GetAvailable(ctx context.Context) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
