package approve_start

import (
	"context"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

type BookingsService interface {
	ApproveStart(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
