package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/payment"
	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
)

// Service сервис для работы с жизненным циклом бронирований
type Service struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	earningRepo  EarningRepository
	providerRepo ProviderRepository
	processor    PaymentProcessor
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookings BookingRepository,
	payments PaymentRepository,
	earnings EarningRepository,
	providers ProviderRepository,
	processor PaymentProcessor,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookings,
		paymentRepo:  payments,
		earningRepo:  earnings,
		providerRepo: providers,
		processor:    processor,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование с его платежами.
// Доступно только заказчику и назначенному провайдеру
func (s *Service) GetByID(ctx context.Context, id, actorID int64) (*models.BookingDetailResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d", id, actorID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canView(booking, actorID) {
		s.logger.Warn("GetByID: access denied for actor=%d to booking id=%d", actorID, id)
		return nil, ErrAccessDenied
	}

	payments, err := s.paymentRepo.ListByBookingID(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to list payments for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - failed to list payments: %v", ErrInternal, err)
	}

	return models.FromDomainBookingDetail(booking, payments), nil
}

// GetUserBookings получает бронирования пользователя, сгруппированные по жизненному циклу
func (s *Service) GetUserBookings(ctx context.Context, userID int64) (*models.GroupedBookingsResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d", userID)

	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	return models.GroupByLifecycle(bookings), nil
}

// GetProviderOrders получает бронирования, принятые провайдером
func (s *Service) GetProviderOrders(ctx context.Context, providerID int64) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderOrders: fetching orders for provider=%d", providerID)

	bookings, err := s.bookingRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		s.logger.Error("GetProviderOrders: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetProviderOrders - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// GetAvailable получает бронирования, доступные для принятия.
// Бронирования, до начала которых осталось меньше окна листинга, уже не показываются.
func (s *Service) GetAvailable(ctx context.Context) (*models.BookingListResponse, error) {
	notBefore := s.timeProvider.Now().Add(domain.ClaimListingWindow)

	bookings, err := s.bookingRepo.ListAvailable(ctx, notBefore)
	if err != nil {
		s.logger.Error("GetAvailable: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetAvailable - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAvailable: %d bookings available", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// StartBooking запрашивает у заказчика подтверждение старта работ.
// Доступно только назначенному провайдеру до начала работ.
func (s *Service) StartBooking(ctx context.Context, bookingID, providerID int64) (*models.BookingResponse, error) {
	s.logger.Info("StartBooking: provider=%d requests start for booking id=%d", providerID, bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.ProviderID == nil || *booking.ProviderID != providerID {
		s.logger.Warn("StartBooking: provider=%d is not assigned to booking id=%d", providerID, bookingID)
		return nil, ErrNotAssignedProvider
	}

	if err := s.bookingRepo.RequestStart(ctx, bookingID, providerID); err != nil {
		if errors.Is(err, bookingRepo.ErrStartNotAllowed) {
			s.logger.Warn("StartBooking: start not allowed for booking id=%d, status=%s", bookingID, booking.Status)
			return nil, ErrStartNotAllowed
		}
		s.logger.Error("StartBooking: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: StartBooking - repository error: %v", ErrInternal, err)
	}

	s.notify(ctx, booking.UserID, "Work start requested",
		"Your provider is ready to start. Please confirm the start of work.", booking.ID)

	booking.UserApprovalRequested = true
	return models.FromDomainBooking(booking), nil
}

// ApproveStart подтверждает старт работ со стороны заказчика.
// Бронирование переходит в in_progress, момент старта фиксируется один раз.
func (s *Service) ApproveStart(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("ApproveStart: user=%d approves start for booking id=%d", userID, bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID {
		s.logger.Warn("ApproveStart: access denied for user=%d to booking id=%d", userID, bookingID)
		return nil, ErrAccessDenied
	}

	if err := s.bookingRepo.ApproveStart(ctx, bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrApprovalNotAllowed) {
			s.logger.Warn("ApproveStart: approval not allowed for booking id=%d", bookingID)
			return nil, ErrApprovalNotAllowed
		}
		s.logger.Error("ApproveStart: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: ApproveStart - repository error: %v", ErrInternal, err)
	}

	if booking.ProviderID != nil {
		s.notify(ctx, *booking.ProviderID, "Work start approved",
			"The client approved the start. You can begin the work.", booking.ID)
	}

	updated, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(updated), nil
}

// Complete завершает бронирование и начисляет заработок провайдеру.
// Начисление и увеличение баланса выполняются в одной транзакции с завершением;
// повторное завершение не создаёт второго начисления.
func (s *Service) Complete(ctx context.Context, bookingID, actorID int64) (*models.BookingResponse, error) {
	s.logger.Info("Complete: actor=%d completes booking id=%d", actorID, bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !canView(booking, actorID) {
		s.logger.Warn("Complete: access denied for actor=%d to booking id=%d", actorID, bookingID)
		return nil, ErrAccessDenied
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Complete(txCtx, bookingID, actorID); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotComplete) {
				return ErrCannotComplete
			}
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}

		if booking.ProviderID == nil {
			return nil
		}

		created, err := s.earningRepo.CreateIfAbsent(txCtx, &domain.Earning{
			BookingID:   booking.ID,
			ProviderID:  *booking.ProviderID,
			AmountCents: booking.AmountCents(),
		})
		if err != nil {
			return fmt.Errorf("%w: Complete - failed to create earning: %v", ErrInternal, err)
		}

		if created {
			if err := s.providerRepo.IncrementBalance(txCtx, *booking.ProviderID, booking.AmountCents()); err != nil {
				return fmt.Errorf("%w: Complete - failed to increment balance: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCannotComplete) {
			s.logger.Error("Complete: failed for booking id=%d: %v", bookingID, err)
		}
		return nil, err
	}

	if booking.ProviderID != nil && actorID != *booking.ProviderID {
		s.notify(ctx, *booking.ProviderID, "Booking completed",
			"The booking was marked as completed. Your earnings were credited.", booking.ID)
	}
	if actorID != booking.UserID {
		s.notify(ctx, booking.UserID, "Booking completed",
			"Your booking was marked as completed.", booking.ID)
	}

	updated, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Complete: booking id=%d completed by actor=%d", bookingID, actorID)
	return models.FromDomainBooking(updated), nil
}

// Cancel отменяет бронирование.
// Завершённый платёж возвращается через процессинг, незавершённые помечаются отменёнными.
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: actor=%d cancels booking id=%d", req.ActorID, req.BookingID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !canView(booking, req.ActorID) {
		s.logger.Warn("Cancel: access denied for actor=%d to booking id=%d", req.ActorID, req.BookingID)
		return nil, ErrAccessDenied
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Cancel(txCtx, req.BookingID, req.ActorID, req.CancellationReason); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotCancel) {
				return ErrCannotCancel
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if err := s.paymentRepo.CancelPending(txCtx, req.BookingID); err != nil {
			return fmt.Errorf("%w: Cancel - failed to cancel pending payments: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCannotCancel) {
			s.logger.Error("Cancel: failed for booking id=%d: %v", req.BookingID, err)
		}
		return nil, err
	}

	s.refundCompletedPayment(ctx, req.BookingID)

	if booking.ProviderID != nil && req.ActorID != *booking.ProviderID {
		s.notify(ctx, *booking.ProviderID, "Booking cancelled",
			"A booking you accepted was cancelled.", booking.ID)
	}

	updated, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: booking id=%d cancelled by actor=%d", req.BookingID, req.ActorID)
	return models.FromDomainBooking(updated), nil
}

// refundCompletedPayment возвращает завершённый платёж бронирования, если он есть.
// Возврат best-effort: отмена уже зафиксирована, ошибка процессинга логируется.
func (s *Service) refundCompletedPayment(ctx context.Context, bookingID int64) {
	payment, err := s.paymentRepo.GetCompletedByBookingID(ctx, bookingID)
	if err != nil {
		if !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Error("Cancel: failed to look up completed payment for booking id=%d: %v", bookingID, err)
		}
		return
	}

	refund, err := s.processor.CreateRefund(payment.PaymentIntentID)
	if err != nil {
		s.logger.Error("Cancel: failed to create refund for payment id=%d (intent=%s): %v",
			payment.ID, payment.PaymentIntentID, err)
		return
	}

	if err := s.paymentRepo.SetRefund(ctx, payment.ID, refund.ID, domain.RefundStatus(refund.Status), refund.AmountCents); err != nil {
		s.logger.Error("Cancel: refund %s created but not persisted for payment id=%d: %v",
			refund.ID, payment.ID, err)
		return
	}

	s.logger.Info("Cancel: refund %s created for payment id=%d", refund.ID, payment.ID)
}

// getBooking получает бронирование с маппингом ошибки not found
func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

// notify отправляет push-уведомление best-effort
func (s *Service) notify(ctx context.Context, userID int64, title, message string, bookingID int64) {
	data := map[string]string{"bookingId": strconv.FormatInt(bookingID, 10)}
	if err := s.notifier.Notify(ctx, userID, title, message, data); err != nil {
		s.logger.Warn("notify: failed to push to user=%d: %v", userID, err)
	}
}

// canView проверяет, имеет ли актор доступ к бронированию
func canView(b *domain.Booking, actorID int64) bool {
	if b.UserID == actorID {
		return true
	}
	return b.ProviderID != nil && *b.ProviderID == actorID
}
