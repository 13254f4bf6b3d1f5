package process_payment_event

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

// Типы событий процессинга, которые меняют состояние платежа
const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
	eventPaymentCanceled  = "payment_intent.canceled"
)

// UseCase use case обработки событий процессинга платежей
type UseCase struct {
	paymentRepo PaymentRepository
	parser      EventParser
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(payments PaymentRepository, parser EventParser, logger Logger) *UseCase {
	return &UseCase{
		paymentRepo: payments,
		parser:      parser,
		logger:      logger,
	}
}

// Execute проверяет подпись события и применяет его к платежу.
// Обновление статуса условное по текущему статусу, поэтому повторная
// доставка того же события ничего не меняет.
func (uc *UseCase) Execute(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := uc.parser.ParseWebhookEvent(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, stripeprocessor.ErrInvalidSignature) {
			uc.logger.Warn("ProcessPaymentEvent: invalid signature: %v", err)
			return ErrInvalidSignature
		}
		uc.logger.Error("ProcessPaymentEvent: failed to parse event: %v", err)
		return fmt.Errorf("%w: failed to parse event: %v", ErrInternal, err)
	}

	uc.logger.Info("ProcessPaymentEvent: event %s (%s), intent=%s", event.ID, event.Type, event.PaymentIntentID)

	switch event.Type {
	case eventPaymentSucceeded:
		return uc.updateStatus(ctx, event.PaymentIntentID, domain.PaymentStatusPending, domain.PaymentStatusCompleted)

	case eventPaymentCanceled:
		return uc.updateStatus(ctx, event.PaymentIntentID, domain.PaymentStatusPending, domain.PaymentStatusCancelled)

	case eventPaymentFailed:
		// Платёж остаётся pending: клиент может повторить оплату тем же intent
		uc.logger.Warn("ProcessPaymentEvent: payment failed for intent=%s", event.PaymentIntentID)
		return nil

	default:
		// Незнакомые события подтверждаются без обработки
		return nil
	}
}

func (uc *UseCase) updateStatus(ctx context.Context, intentID string, from, to domain.PaymentStatus) error {
	updated, err := uc.paymentRepo.UpdateStatusByIntentID(ctx, intentID, from, to)
	if err != nil {
		uc.logger.Error("ProcessPaymentEvent: failed to update intent=%s to %s: %v", intentID, to, err)
		return fmt.Errorf("%w: failed to update payment: %v", ErrInternal, err)
	}

	if !updated {
		uc.logger.Info("ProcessPaymentEvent: intent=%s already in terminal state, event ignored", intentID)
		return nil
	}

	uc.logger.Info("ProcessPaymentEvent: intent=%s moved to %s", intentID, to)
	return nil
}
