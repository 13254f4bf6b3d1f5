package create_payout

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	createPayout "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payout"
)

const (
	msgInvalidRequestBody   = "invalid request body"
	msgInvalidAmount        = "payout amount must be a whole number of at least 20"
	msgNoPayoutAccount      = "payout account is not set up"
	msgNoExternalAccount    = "no external account is linked to your payout account"
	msgInsufficientBalance  = "insufficient balance"
	msgProcessorRejected    = "payout was rejected by the payment processor"
	msgProcessorUnavailable = "payout service is temporarily unavailable"
)

// CreatePayoutRequest HTTP request model
type CreatePayoutRequest struct {
	Amount float64 `json:"amount"`
}

// PayoutResponse HTTP response model
type PayoutResponse struct {
	ID                  int64   `json:"id"`
	PayoutID            string  `json:"payoutId"`
	Status              string  `json:"status"`
	AmountCents         int64   `json:"amountCents"`
	Currency            string  `json:"currency"`
	DestinationType     string  `json:"destinationType"`
	DestinationLast4    *string `json:"destinationLast4,omitempty"`
	DestinationCountry  *string `json:"destinationCountry,omitempty"`
	DestinationCurrency *string `json:"destinationCurrency,omitempty"`
	CreatedAt           string  `json:"createdAt"`
}

type Handler struct {
	useCase CreatePayoutUseCase
	logger  Logger
}

func NewHandler(useCase CreatePayoutUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/provider/payouts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	var req CreatePayoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /provider/payouts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &createPayout.Request{
		ProviderID: providerID,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, createPayout.ErrInvalidAmount):
			h.logger.Warn("POST /provider/payouts - Invalid amount: provider_id=%d, amount=%v", providerID, req.Amount)
			handlers.RespondBadRequest(w, msgInvalidAmount)

		case errors.Is(err, createPayout.ErrNoPayoutAccount):
			h.logger.Warn("POST /provider/payouts - No payout account: provider_id=%d", providerID)
			handlers.RespondError(w, http.StatusConflict, msgNoPayoutAccount)

		case errors.Is(err, createPayout.ErrNoExternalAccount):
			h.logger.Warn("POST /provider/payouts - No external account: provider_id=%d", providerID)
			handlers.RespondError(w, http.StatusConflict, msgNoExternalAccount)

		case errors.Is(err, createPayout.ErrInsufficientBalance):
			h.logger.Warn("POST /provider/payouts - Insufficient balance: provider_id=%d, amount=%v", providerID, req.Amount)
			handlers.RespondError(w, http.StatusConflict, msgInsufficientBalance)

		case errors.Is(err, createPayout.ErrProcessorRejected):
			h.logger.Warn("POST /provider/payouts - Rejected: provider_id=%d, error=%v", providerID, err)
			// Клиенту уходит только формулировка процессинга
			msg := msgProcessorRejected
			var rejected *createPayout.RejectionError
			if errors.As(err, &rejected) && rejected.Message != "" {
				msg = rejected.Message
			}
			handlers.RespondError(w, http.StatusUnprocessableEntity, msg)

		case errors.Is(err, createPayout.ErrProcessorUnavailable):
			h.logger.Error("POST /provider/payouts - Processor unavailable: provider_id=%d, error=%v", providerID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgProcessorUnavailable)

		default:
			h.logger.Error("POST /provider/payouts - Failed: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /provider/payouts - Payout created: payout_id=%d, provider_id=%d", result.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, &PayoutResponse{
		ID:                  result.ID,
		PayoutID:            result.PayoutID,
		Status:              result.Status,
		AmountCents:         result.AmountCents,
		Currency:            result.Currency,
		DestinationType:     result.DestinationType,
		DestinationLast4:    result.DestinationLast4,
		DestinationCountry:  result.DestinationCountry,
		DestinationCurrency: result.DestinationCurrency,
		CreatedAt:           result.CreatedAt.Format(time.RFC3339),
	})
}
