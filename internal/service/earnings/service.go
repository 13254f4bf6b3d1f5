package earnings

import (
	"context"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/service/earnings/models"
)

// Service сервис для работы с заработком провайдеров
type Service struct {
	providerRepo ProviderRepository
	earningRepo  EarningRepository
	payoutRepo   PayoutRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса заработка
func NewService(
	providers ProviderRepository,
	earnings EarningRepository,
	payouts PayoutRepository,
	logger Logger,
) *Service {
	return &Service{
		providerRepo: providers,
		earningRepo:  earnings,
		payoutRepo:   payouts,
		logger:       logger,
	}
}

// GetSummary получает сводку заработка провайдера:
// текущий баланс, начисления и историю выплат
func (s *Service) GetSummary(ctx context.Context, providerID int64) (*models.SummaryResponse, error) {
	s.logger.Info("GetSummary: fetching earnings summary for provider=%d", providerID)

	profile, err := s.providerRepo.GetByUserID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetSummary: failed to get provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetSummary - failed to get provider: %v", ErrInternal, err)
	}

	earnings, err := s.earningRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetSummary: failed to get earnings for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetSummary - failed to get earnings: %v", ErrInternal, err)
	}

	payouts, err := s.payoutRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetSummary: failed to get payouts for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetSummary - failed to get payouts: %v", ErrInternal, err)
	}

	return &models.SummaryResponse{
		BalanceCents: profile.BalanceCents,
		Earnings:     models.FromDomainEarnings(earnings),
		Payouts:      models.FromDomainPayouts(payouts),
	}, nil
}
