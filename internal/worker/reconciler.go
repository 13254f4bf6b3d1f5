package worker

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

const (
	sweepBatchSize = 100

	stalePendingReason = "expired: payment was never initiated"
)

// Reconciler сводит локальное состояние с процессингом:
// зачищает осиротевшие pending бронирования и догоняет статусы выплат
type Reconciler struct {
	bookingRepo  BookingRepository
	payoutRepo   PayoutRepository
	providerRepo ProviderRepository
	processor    PaymentProcessor
	interval     time.Duration
	gracePeriod  time.Duration
	logger       Logger
}

// NewReconciler создает новый экземпляр reconciler-а
func NewReconciler(
	bookings BookingRepository,
	payouts PayoutRepository,
	providers ProviderRepository,
	processor PaymentProcessor,
	interval, gracePeriod time.Duration,
	logger Logger,
) *Reconciler {
	return &Reconciler{
		bookingRepo:  bookings,
		payoutRepo:   payouts,
		providerRepo: providers,
		processor:    processor,
		interval:     interval,
		gracePeriod:  gracePeriod,
		logger:       logger,
	}
}

// Run запускает цикл сверки до отмены контекста
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("Reconciler: started, interval=%s", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler: stopped")
			return
		case <-ticker.C:
			r.sweepStalePending(ctx)
			r.syncPayoutStatuses(ctx)
		}
	}
}

// sweepStalePending отменяет старые pending бронирования, по которым
// так и не была создана запись о платеже (создание intent упало после
// вставки бронирования)
func (r *Reconciler) sweepStalePending(ctx context.Context) {
	olderThan := time.Now().Add(-r.gracePeriod)

	bookings, err := r.bookingRepo.ListStalePending(ctx, olderThan, sweepBatchSize)
	if err != nil {
		r.logger.Error("Reconciler: failed to list stale pending bookings: %v", err)
		return
	}

	for _, booking := range bookings {
		cancelled, err := r.bookingRepo.CancelExpired(ctx, booking.ID, stalePendingReason)
		if err != nil {
			r.logger.Error("Reconciler: failed to cancel stale booking id=%d: %v", booking.ID, err)
			continue
		}
		if cancelled {
			r.logger.Info("Reconciler: stale booking id=%d cancelled", booking.ID)
		}
	}
}

// syncPayoutStatuses догоняет статусы нефинальных выплат из процессинга
func (r *Reconciler) syncPayoutStatuses(ctx context.Context) {
	payouts, err := r.payoutRepo.ListNonTerminal(ctx, sweepBatchSize)
	if err != nil {
		r.logger.Error("Reconciler: failed to list non-terminal payouts: %v", err)
		return
	}

	for _, payout := range payouts {
		if err := r.syncPayout(ctx, payout); err != nil {
			r.logger.Error("Reconciler: failed to sync payout %s: %v", payout.PayoutID, err)
		}
	}
}

// syncPayout запрашивает статус одной выплаты с ретраями на сетевые ошибки
func (r *Reconciler) syncPayout(ctx context.Context, payout *domain.Payout) error {
	profile, err := r.providerRepo.GetByUserID(ctx, payout.ProviderID)
	if err != nil {
		return err
	}
	if !profile.HasConnectedAccount() {
		r.logger.Warn("Reconciler: payout %s belongs to provider=%d without account, skipped",
			payout.PayoutID, payout.ProviderID)
		return nil
	}

	var result *stripeprocessor.PayoutResult

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = r.processor.GetPayout(*profile.ConnectedAccountID, payout.PayoutID)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if result.Status == payout.Status {
		return nil
	}

	if err := r.payoutRepo.UpdateStatus(ctx, payout.PayoutID, result.Status); err != nil {
		return err
	}

	r.logger.Info("Reconciler: payout %s moved %s -> %s", payout.PayoutID, payout.Status, result.Status)
	return nil
}
