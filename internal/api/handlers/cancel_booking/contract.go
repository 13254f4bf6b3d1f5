package cancel_booking

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

type BookingsService interface {
	Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
