package create_payment_intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
)

// UseCase use case повторного создания платежа по бронированию
type UseCase struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	processor   PaymentProcessor
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookings BookingRepository,
	payments PaymentRepository,
	processor PaymentProcessor,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookings,
		paymentRepo: payments,
		processor:   processor,
		logger:      logger,
	}
}

// Execute выполняет use case создания платежа по существующему бронированию.
// Нужен, когда при создании бронирования процессинг не создал платёж:
// бронирование остаётся pending, и заказчик запрашивает оплату повторно.
// Незавершённый платёж переиспользуется, новый intent создаётся только
// когда по бронированию нет ни одного pending платежа.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreatePaymentIntent: user=%d, booking=%d", req.UserID, req.BookingID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CreatePaymentIntent: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CreatePaymentIntent: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Платёж может запросить только владелец бронирования
	if booking.UserID != req.UserID {
		uc.logger.Warn("CreatePaymentIntent: booking id=%d does not belong to user=%d", booking.ID, req.UserID)
		return nil, ErrAccessDenied
	}

	// 4. Проверяем статус бронирования
	if booking.Status != domain.StatusPending {
		uc.logger.Warn("CreatePaymentIntent: booking id=%d is not payable, status=%s", booking.ID, booking.Status)
		return nil, ErrNotPayable
	}

	// 5. Повторная оплата оплаченного бронирования запрещена
	paid, err := uc.paymentRepo.HasCompleted(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("CreatePaymentIntent: failed to check payment for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to check payment: %v", ErrInternal, err)
	}
	if paid {
		uc.logger.Warn("CreatePaymentIntent: booking id=%d is already paid", booking.ID)
		return nil, ErrAlreadyPaid
	}

	// 6. Незавершённый платёж возвращается как есть: его intent ещё можно подтвердить
	payments, err := uc.paymentRepo.ListByBookingID(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("CreatePaymentIntent: failed to list payments for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to list payments: %v", ErrInternal, err)
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusPending {
			uc.logger.Info("CreatePaymentIntent: reusing pending payment id=%d for booking id=%d", p.ID, booking.ID)
			return toResponse(p), nil
		}
	}

	// 7. Создаем платёж в процессинге
	intent, err := uc.processor.CreatePaymentIntent(booking.AmountCents(), booking.ID)
	if err != nil {
		uc.logger.Error("CreatePaymentIntent: failed to create intent for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	// 8. Сохраняем запись о платеже
	payment := &domain.Payment{
		BookingID:       booking.ID,
		AmountCents:     booking.AmountCents(),
		Status:          domain.PaymentStatusPending,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}

	created, err := uc.paymentRepo.Create(ctx, payment)
	if err != nil {
		uc.logger.Error("CreatePaymentIntent: failed to save payment for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to save payment: %v", ErrInternal, err)
	}

	uc.logger.Info("CreatePaymentIntent: payment id=%d created for booking id=%d, intent=%s",
		created.ID, booking.ID, intent.ID)

	return toResponse(created), nil
}

func toResponse(p *domain.Payment) *Response {
	return &Response{
		PaymentID:       p.ID,
		BookingID:       p.BookingID,
		AmountCents:     p.AmountCents,
		Status:          string(p.Status),
		PaymentIntentID: p.PaymentIntentID,
		ClientSecret:    p.ClientSecret,
	}
}
