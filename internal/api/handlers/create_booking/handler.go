package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	createBooking "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgUnknownService     = "unknown service kind"
	msgStartTooSoon       = "booking must start at least 60 minutes from now"
	msgStartMismatch      = "start date and time do not match"
	msgPaymentUnavailable = "payment service is temporarily unavailable"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgInvalidRequestBody)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrUnknownService):
			h.logger.Warn("POST /bookings - Unknown service: user_id=%d, service_id=%d", userID, req.ServiceID)
			handlers.RespondBadRequest(w, msgUnknownService)

		case errors.Is(err, createBooking.ErrStartTooSoon):
			h.logger.Warn("POST /bookings - Start too soon: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgStartTooSoon)

		case errors.Is(err, createBooking.ErrStartMismatch):
			h.logger.Warn("POST /bookings - Start mismatch: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgStartMismatch)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createBooking.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings - Payment unavailable: user_id=%d, error=%v", userID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
