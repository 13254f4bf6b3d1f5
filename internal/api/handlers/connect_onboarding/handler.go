package connect_onboarding

import (
	"errors"
	"net/http"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	providerService "github.com/m04kA/HSM-MarketplaceService/internal/service/provider"
)

const msgProcessorUnavailable = "payout service is temporarily unavailable"

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

// Handle GET /api/v1/provider/connect/onboarding
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	result, err := h.service.GetOnboardingLink(r.Context(), providerID)
	if err != nil {
		if errors.Is(err, providerService.ErrProcessorUnavailable) {
			h.logger.Error("GET /provider/connect/onboarding - Processor unavailable: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgProcessorUnavailable)
			return
		}

		h.logger.Error("GET /provider/connect/onboarding - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
