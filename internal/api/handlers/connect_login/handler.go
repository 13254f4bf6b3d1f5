package connect_login

import (
	"errors"
	"net/http"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	providerService "github.com/m04kA/HSM-MarketplaceService/internal/service/provider"
)

const (
	msgNoPayoutAccount      = "payout account is not set up"
	msgProcessorUnavailable = "payout service is temporarily unavailable"
)

type Handler struct {
	service ProviderService
	logger  Logger
}

func NewHandler(service ProviderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/provider/connect/login-link
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	result, err := h.service.GetLoginLink(r.Context(), providerID)
	if err != nil {
		switch {
		case errors.Is(err, providerService.ErrNoPayoutAccount):
			h.logger.Warn("GET /provider/connect/login-link - No account: provider_id=%d", providerID)
			handlers.RespondError(w, http.StatusConflict, msgNoPayoutAccount)

		case errors.Is(err, providerService.ErrProcessorUnavailable):
			h.logger.Error("GET /provider/connect/login-link - Processor unavailable: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgProcessorUnavailable)

		default:
			h.logger.Error("GET /provider/connect/login-link - Failed: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
