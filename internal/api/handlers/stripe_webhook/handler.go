package stripe_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	processEvent "github.com/m04kA/HSM-MarketplaceService/internal/usecase/process_payment_event"
)

// Stripe рекомендует ограничивать тело webhook-а 64KB
const maxBodyBytes = 65536

const (
	msgInvalidBody      = "invalid request body"
	msgInvalidSignature = "invalid signature"
)

type Handler struct {
	useCase ProcessPaymentEventUseCase
	logger  Logger
}

func NewHandler(useCase ProcessPaymentEventUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /webhooks/stripe
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("POST /webhooks/stripe - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	err = h.useCase.Execute(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, processEvent.ErrInvalidSignature) {
			handlers.RespondBadRequest(w, msgInvalidSignature)
			return
		}

		h.logger.Error("POST /webhooks/stripe - Failed to process event: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, nil)
}
