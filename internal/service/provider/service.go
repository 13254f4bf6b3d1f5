package provider

import (
	"context"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/service/provider/models"
)

// Service сервис для работы с профилем провайдера:
// онбординг в процессинге и доступность для заказов
type Service struct {
	providerRepo ProviderRepository
	processor    PaymentProcessor
	txManager    TransactionManager
	returnURL    string
	refreshURL   string
	logger       Logger
}

// NewService создает новый экземпляр сервиса провайдеров
func NewService(
	providers ProviderRepository,
	processor PaymentProcessor,
	txManager TransactionManager,
	returnURL, refreshURL string,
	logger Logger,
) *Service {
	return &Service{
		providerRepo: providers,
		processor:    processor,
		txManager:    txManager,
		returnURL:    returnURL,
		refreshURL:   refreshURL,
		logger:       logger,
	}
}

// GetOnboardingLink выдает ссылку на онбординг в процессинге.
// Счёт создаётся лениво при первом обращении и сохраняется за провайдером.
func (s *Service) GetOnboardingLink(ctx context.Context, providerID int64) (*models.LinkResponse, error) {
	s.logger.Info("GetOnboardingLink: provider=%d", providerID)

	profile, err := s.providerRepo.GetByUserID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetOnboardingLink: failed to get provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetOnboardingLink - failed to get provider: %v", ErrInternal, err)
	}

	accountID := ""
	if profile.HasConnectedAccount() {
		accountID = *profile.ConnectedAccountID
	} else {
		account, err := s.processor.CreateConnectedAccount(providerID)
		if err != nil {
			s.logger.Error("GetOnboardingLink: failed to create account for provider=%d: %v", providerID, err)
			return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
		}

		if err := s.providerRepo.SetConnectedAccount(ctx, providerID, account.ID); err != nil {
			s.logger.Error("GetOnboardingLink: failed to save account %s for provider=%d: %v",
				account.ID, providerID, err)
			return nil, fmt.Errorf("%w: GetOnboardingLink - failed to save account: %v", ErrInternal, err)
		}

		accountID = account.ID
		s.logger.Info("GetOnboardingLink: created account %s for provider=%d", accountID, providerID)
	}

	url, err := s.processor.CreateOnboardingLink(accountID, s.refreshURL, s.returnURL)
	if err != nil {
		s.logger.Error("GetOnboardingLink: failed to create link for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	return &models.LinkResponse{URL: url}, nil
}

// GetLoginLink выдает ссылку в кабинет счёта процессинга.
// Доступно только после начала онбординга.
func (s *Service) GetLoginLink(ctx context.Context, providerID int64) (*models.LinkResponse, error) {
	s.logger.Info("GetLoginLink: provider=%d", providerID)

	profile, err := s.providerRepo.GetByUserID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetLoginLink: failed to get provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetLoginLink - failed to get provider: %v", ErrInternal, err)
	}

	if !profile.HasConnectedAccount() {
		s.logger.Warn("GetLoginLink: provider=%d has no payout account", providerID)
		return nil, ErrNoPayoutAccount
	}

	url, err := s.processor.CreateLoginLink(*profile.ConnectedAccountID)
	if err != nil {
		s.logger.Error("GetLoginLink: failed to create link for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	return &models.LinkResponse{URL: url}, nil
}

// UpdateAvailability помечает провайдера доступным с его координатами и услугами
func (s *Service) UpdateAvailability(ctx context.Context, req *models.UpdateAvailabilityRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("UpdateAvailability: provider=%d, services=%v", req.ProviderID, req.ServiceIDs)

	for _, serviceID := range req.ServiceIDs {
		if _, ok := domain.ServiceName(serviceID); !ok {
			s.logger.Warn("UpdateAvailability: unknown service=%d for provider=%d", serviceID, req.ProviderID)
			return nil, fmt.Errorf("%w: serviceID=%d", ErrUnknownService, serviceID)
		}
	}

	location := domain.Location{Latitude: req.Latitude, Longitude: req.Longitude}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.providerRepo.UpdateAvailability(txCtx, req.ProviderID, location, req.ServiceIDs)
	})
	if err != nil {
		s.logger.Error("UpdateAvailability: failed for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpdateAvailability - repository error: %v", ErrInternal, err)
	}

	return &models.AvailabilityResponse{
		IsAvailable: true,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ServiceIDs:  req.ServiceIDs,
	}, nil
}

// SetUnavailable помечает провайдера недоступным.
// Вызывается при закрытии сокета доступности.
func (s *Service) SetUnavailable(ctx context.Context, providerID int64) error {
	s.logger.Info("SetUnavailable: provider=%d", providerID)

	if err := s.providerRepo.SetUnavailable(ctx, providerID); err != nil {
		s.logger.Error("SetUnavailable: failed for provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: SetUnavailable - repository error: %v", ErrInternal, err)
	}

	return nil
}
