package create_payment_intent

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	createPaymentIntent "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payment_intent"
)

const (
	msgInvalidBookingID   = "invalid booking id"
	msgBookingNotFound    = "booking not found"
	msgAccessDenied       = "access denied"
	msgNotPayable         = "booking can no longer be paid"
	msgAlreadyPaid        = "booking is already paid"
	msgPaymentUnavailable = "payment service is temporarily unavailable"
)

// PaymentIntentResponse HTTP response model
type PaymentIntentResponse struct {
	PaymentID       int64  `json:"paymentId"`
	BookingID       int64  `json:"bookingId"`
	AmountCents     int64  `json:"amountCents"`
	Status          string `json:"status"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

type Handler struct {
	useCase CreatePaymentIntentUseCase
	logger  Logger
}

func NewHandler(useCase CreatePaymentIntentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment-intent
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &createPaymentIntent.Request{
		UserID:    userID,
		BookingID: bookingID,
	})
	if err != nil {
		switch {
		case errors.Is(err, createPaymentIntent.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, createPaymentIntent.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/payment-intent - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, createPaymentIntent.ErrNotPayable):
			h.logger.Warn("POST /bookings/{id}/payment-intent - Not payable: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondError(w, http.StatusConflict, msgNotPayable)

		case errors.Is(err, createPaymentIntent.ErrAlreadyPaid):
			h.logger.Warn("POST /bookings/{id}/payment-intent - Already paid: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyPaid)

		case errors.Is(err, createPaymentIntent.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings/{id}/payment-intent - Processor unavailable: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentUnavailable)

		case errors.Is(err, createPaymentIntent.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/payment-intent - Failed: booking_id=%d, user_id=%d, error=%v",
				bookingID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment-intent - Intent ready: booking_id=%d, payment_id=%d", bookingID, result.PaymentID)
	handlers.RespondJSON(w, http.StatusCreated, &PaymentIntentResponse{
		PaymentID:       result.PaymentID,
		BookingID:       result.BookingID,
		AmountCents:     result.AmountCents,
		Status:          result.Status,
		PaymentIntentID: result.PaymentIntentID,
		ClientSecret:    result.ClientSecret,
	})
}
