package accept_booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	acceptBooking "github.com/m04kA/HSM-MarketplaceService/internal/usecase/accept_booking"
)

const (
	msgInvalidBookingID = "invalid booking id"
	msgBookingNotFound  = "booking not found"
	msgNotPaid          = "booking is not paid yet"
	msgStartPassed      = "booking start time has passed"
	msgAlreadyClaimed   = "booking is no longer available"
)

// AcceptBookingResponse HTTP response model
type AcceptBookingResponse struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	ProviderID  int64  `json:"providerId"`
	ServiceName string `json:"serviceName"`
	AmountCents int64  `json:"amountCents"`
	StartAt     string `json:"startAt"`
	Address     string `json:"address"`
}

type Handler struct {
	useCase AcceptBookingUseCase
	logger  Logger
}

func NewHandler(useCase AcceptBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/accept
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &acceptBooking.Request{
		BookingID:  bookingID,
		ProviderID: providerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, acceptBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, acceptBooking.ErrNotPaid):
			h.logger.Warn("POST /bookings/{id}/accept - Not paid: booking_id=%d, provider_id=%d", bookingID, providerID)
			handlers.RespondError(w, http.StatusConflict, msgNotPaid)

		case errors.Is(err, acceptBooking.ErrStartPassed):
			h.logger.Warn("POST /bookings/{id}/accept - Start passed: booking_id=%d, provider_id=%d", bookingID, providerID)
			handlers.RespondError(w, http.StatusConflict, msgStartPassed)

		case errors.Is(err, acceptBooking.ErrAlreadyClaimed):
			h.logger.Warn("POST /bookings/{id}/accept - Already claimed: booking_id=%d, provider_id=%d", bookingID, providerID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyClaimed)

		case errors.Is(err, acceptBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/accept - Failed: booking_id=%d, provider_id=%d, error=%v",
				bookingID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/accept - Booking accepted: booking_id=%d, provider_id=%d", bookingID, providerID)
	handlers.RespondJSON(w, http.StatusOK, &AcceptBookingResponse{
		ID:          result.ID,
		Status:      result.Status,
		ProviderID:  result.ProviderID,
		ServiceName: result.ServiceName,
		AmountCents: result.AmountCents,
		StartAt:     result.StartAt.Format(time.RFC3339),
		Address:     result.Address,
	})
}
