package complete_booking

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

type BookingsService interface {
	Complete(ctx context.Context, bookingID, actorID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
