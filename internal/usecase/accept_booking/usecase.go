package accept_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
)

// UseCase use case для принятия бронирования провайдером
type UseCase struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookings BookingRepository,
	payments PaymentRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookings,
		paymentRepo:  payments,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case принятия бронирования.
// Предварительные проверки дают понятные ошибки, но гонку двух провайдеров
// закрывает условное обновление в репозитории: выигрывает ровно один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AcceptBooking: provider=%d, booking=%d", req.ProviderID, req.BookingID)

	// 1. Валидация входных данных
	if req.BookingID <= 0 || req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and providerID must be positive", ErrInvalidInput)
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("AcceptBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("AcceptBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Проверяем статус и назначение
	if booking.Status != domain.StatusPending || booking.IsAssigned() {
		uc.logger.Warn("AcceptBooking: booking id=%d is not available, status=%s", booking.ID, booking.Status)
		return nil, ErrAlreadyClaimed
	}

	// 4. Проверяем, что начало работ ещё не прошло
	if !booking.StartAt.After(uc.timeProvider.Now()) {
		uc.logger.Warn("AcceptBooking: booking id=%d start time has passed", booking.ID)
		return nil, ErrStartPassed
	}

	// 5. Проверяем наличие завершённой оплаты
	paid, err := uc.paymentRepo.HasCompleted(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("AcceptBooking: failed to check payment for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to check payment: %v", ErrInternal, err)
	}
	if !paid {
		uc.logger.Warn("AcceptBooking: booking id=%d is not paid", booking.ID)
		return nil, ErrNotPaid
	}

	// 6. Назначаем провайдера условным обновлением
	if err := uc.bookingRepo.Claim(ctx, booking.ID, req.ProviderID); err != nil {
		if errors.Is(err, bookingRepo.ErrNotClaimable) {
			uc.logger.Warn("AcceptBooking: booking id=%d was claimed concurrently", booking.ID)
			return nil, ErrAlreadyClaimed
		}
		uc.logger.Error("AcceptBooking: failed to claim booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to claim booking: %v", ErrInternal, err)
	}

	uc.logger.Info("AcceptBooking: booking id=%d claimed by provider=%d", booking.ID, req.ProviderID)

	return &Response{
		ID:          booking.ID,
		Status:      string(domain.StatusPending),
		ProviderID:  req.ProviderID,
		ServiceName: booking.ServiceName,
		AmountCents: booking.AmountCents(),
		StartAt:     booking.StartAt,
		Address:     booking.Address,
	}, nil
}
