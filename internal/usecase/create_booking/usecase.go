package create_booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	taskRepo     TaskRepository
	processor    PaymentProcessor
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	taskRepo TaskRepository,
	processor PaymentProcessor,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		taskRepo:     taskRepo,
		processor:    processor,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Бронирование и задача на истечение создаются в одной транзакции,
// платёж в процессинге создаётся после неё: при отказе процессинга
// бронирование остаётся pending и будет отменено по сроку.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, service=%d, hours=%d, startAt=%s",
		req.UserID, req.ServiceID, req.Hours, req.StartAt)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Вычисляем момент начала работ
	startAt, err := resolveStartAt(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: start time resolution failed: %v", err)
		return nil, err
	}

	// 3. Проверяем минимальный запас до начала работ
	now := uc.timeProvider.Now()
	if err := validateStartAt(startAt, now); err != nil {
		uc.logger.Warn("CreateBooking: start time validation failed: %v", err)
		return nil, err
	}

	serviceName, _ := domain.ServiceName(req.ServiceID)

	booking := &domain.Booking{
		Status:      domain.StatusPending,
		UserID:      req.UserID,
		ServiceID:   req.ServiceID,
		ServiceName: serviceName,
		RateCents:   req.RateUnits * domain.CentsPerUnit,
		Hours:       req.Hours,
		StartAt:     startAt,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}

	// 4. Создаем бронирование и задачу на истечение в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		booking = created

		payload, err := json.Marshal(map[string]int64{"booking_id": booking.ID})
		if err != nil {
			return fmt.Errorf("%w: failed to marshal task payload: %v", ErrInternal, err)
		}

		// Неоплаченное и непринятое бронирование отменяется в момент начала работ
		if err := uc.taskRepo.Create(txCtx, uuid.NewString(), domain.TaskKindBookingExpire, payload, booking.StartAt); err != nil {
			uc.logger.Error("CreateBooking: failed to schedule expiration: %v", err)
			return fmt.Errorf("%w: failed to schedule expiration: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Создаем платёж в процессинге
	intent, err := uc.processor.CreatePaymentIntent(booking.AmountCents(), booking.ID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create payment intent for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	// 6. Сохраняем запись о платеже
	payment := &domain.Payment{
		BookingID:       booking.ID,
		AmountCents:     booking.AmountCents(),
		Status:          domain.PaymentStatusPending,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}

	if _, err := uc.paymentRepo.Create(ctx, payment); err != nil {
		uc.logger.Error("CreateBooking: failed to save payment for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to save payment: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, intent=%s", booking.ID, intent.ID)

	return &Response{
		ID:              booking.ID,
		Status:          string(booking.Status),
		ServiceID:       booking.ServiceID,
		ServiceName:     booking.ServiceName,
		RateCents:       booking.RateCents,
		Hours:           booking.Hours,
		AmountCents:     booking.AmountCents(),
		StartAt:         booking.StartAt,
		Address:         booking.Address,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		CreatedAt:       booking.CreatedAt,
	}, nil
}
