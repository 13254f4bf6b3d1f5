package create_payout

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	providerRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/provider"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// UseCase use case для создания выплаты провайдеру
type UseCase struct {
	providerRepo ProviderRepository
	payoutRepo   PayoutRepository
	processor    PaymentProcessor
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	providers ProviderRepository,
	payouts PayoutRepository,
	processor PaymentProcessor,
	logger Logger,
) *UseCase {
	return &UseCase{
		providerRepo: providers,
		payoutRepo:   payouts,
		processor:    processor,
		logger:       logger,
	}
}

// Execute выполняет use case создания выплаты.
// Сумма сначала атомарно резервируется списанием с баланса, затем создаётся
// выплата в процессинге. При отказе процессинга резерв возвращается на баланс,
// поэтому баланс не может уйти в минус и не теряется при отказе.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreatePayout: provider=%d, amount=%v", req.ProviderID, req.Amount)

	// 1. Валидация суммы
	if err := validateAmount(req.Amount); err != nil {
		uc.logger.Warn("CreatePayout: amount validation failed: %v", err)
		return nil, err
	}

	amountCents := int64(req.Amount) * domain.CentsPerUnit

	// 2. Получаем профиль провайдера
	profile, err := uc.providerRepo.GetByUserID(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("CreatePayout: failed to get provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Проверяем наличие счёта в процессинге
	if !profile.HasConnectedAccount() {
		uc.logger.Warn("CreatePayout: provider=%d has no payout account", req.ProviderID)
		return nil, ErrNoPayoutAccount
	}
	accountID := *profile.ConnectedAccountID

	// 4. Проверяем наличие привязанного внешнего счёта
	account, err := uc.processor.GetConnectedAccount(accountID)
	if err != nil {
		uc.logger.Error("CreatePayout: failed to get connected account for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}
	if !account.HasExternalAccounts {
		uc.logger.Warn("CreatePayout: provider=%d has no external account", req.ProviderID)
		return nil, ErrNoExternalAccount
	}

	// 5. Резервируем сумму списанием с баланса
	if err := uc.providerRepo.ReserveBalance(ctx, req.ProviderID, amountCents); err != nil {
		if errors.Is(err, providerRepo.ErrInsufficientBalance) {
			uc.logger.Warn("CreatePayout: provider=%d has insufficient balance for %d cents", req.ProviderID, amountCents)
			return nil, ErrInsufficientBalance
		}
		uc.logger.Error("CreatePayout: failed to reserve balance for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to reserve balance: %v", ErrInternal, err)
	}

	// 6. Создаем выплату в процессинге
	result, err := uc.processor.CreatePayout(accountID, amountCents)
	if err != nil {
		uc.releaseReservation(ctx, req.ProviderID, amountCents)

		if errors.Is(err, stripeprocessor.ErrClientRejected) {
			uc.logger.Warn("CreatePayout: processor rejected payout for provider=%d: %v", req.ProviderID, err)
			var rejected *stripeprocessor.RejectionError
			if errors.As(err, &rejected) {
				return nil, &RejectionError{Message: rejected.Message}
			}
			return nil, ErrProcessorRejected
		}
		uc.logger.Error("CreatePayout: processor unavailable for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	// 7. Сохраняем запись о выплате со снимком внешнего счёта
	payout := &domain.Payout{
		ProviderID:         req.ProviderID,
		AmountCents:        amountCents,
		Currency:           domain.DefaultCurrency,
		PayoutID:           result.ID,
		Status:             result.Status,
		PaymentMethod:      result.DestinationType,
		DestinationAccount: result.DestinationAccount,
		DestinationType:    result.DestinationType,
	}
	if result.DestinationLast4 != "" {
		payout.DestinationLast4 = &result.DestinationLast4
	}
	if result.DestinationCountry != "" {
		payout.DestinationCountry = &result.DestinationCountry
	}
	if result.DestinationCurrency != "" {
		payout.DestinationCurrency = &result.DestinationCurrency
	}

	created, err := uc.payoutRepo.Create(ctx, payout)
	if err != nil {
		// Выплата в процессинге уже создана, резерв не возвращаем.
		// Запись восстановит reconciler по данным процессинга.
		uc.logger.Error("CreatePayout: payout %s created but not persisted for provider=%d: %v",
			result.ID, req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to save payout: %v", ErrInternal, err)
	}

	uc.logger.Info("CreatePayout: payout id=%d (%s) created for provider=%d, amount=%d cents",
		created.ID, created.PayoutID, req.ProviderID, amountCents)

	return &Response{
		ID:                  created.ID,
		PayoutID:            created.PayoutID,
		Status:              created.Status,
		AmountCents:         created.AmountCents,
		Currency:            created.Currency,
		DestinationType:     created.DestinationType,
		DestinationLast4:    created.DestinationLast4,
		DestinationCountry:  created.DestinationCountry,
		DestinationCurrency: created.DestinationCurrency,
		CreatedAt:           created.CreatedAt,
	}, nil
}

// releaseReservation возвращает резерв на баланс после отказа процессинга
func (uc *UseCase) releaseReservation(ctx context.Context, providerID, amountCents int64) {
	if err := uc.providerRepo.ReleaseBalance(ctx, providerID, amountCents); err != nil {
		uc.logger.Error("CreatePayout: failed to release %d cents back to provider=%d: %v",
			amountCents, providerID, err)
	}
}
