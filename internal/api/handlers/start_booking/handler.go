package start_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "invalid booking id"
	msgBookingNotFound  = "booking not found"
	msgNotAssigned      = "you are not assigned to this booking"
	msgStartNotAllowed  = "work start cannot be requested for this booking"
)

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/start
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.service.StartBooking(r.Context(), bookingID, providerID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrNotAssignedProvider):
			h.logger.Warn("POST /bookings/{id}/start - Not assigned: booking_id=%d, provider_id=%d", bookingID, providerID)
			handlers.RespondForbidden(w, msgNotAssigned)

		case errors.Is(err, bookings.ErrStartNotAllowed):
			h.logger.Warn("POST /bookings/{id}/start - Not allowed: booking_id=%d, provider_id=%d", bookingID, providerID)
			handlers.RespondError(w, http.StatusConflict, msgStartNotAllowed)

		default:
			h.logger.Error("POST /bookings/{id}/start - Failed: booking_id=%d, provider_id=%d, error=%v",
				bookingID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/start - Start requested: booking_id=%d, provider_id=%d", bookingID, providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
