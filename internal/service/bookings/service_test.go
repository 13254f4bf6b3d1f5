package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/payment"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
	"github.com/m04kA/HSM-MarketplaceService/internal/service/bookings/models"
	"github.com/m04kA/HSM-MarketplaceService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubBookingRepo struct {
	byID map[int64]*domain.Booking

	requestStartErr error
	approveStartErr error
	completeErr     error
	cancelErr       error

	completedBy  int64
	cancelledBy  int64
	cancelReason string
	listedBefore time.Time
}

func (s *stubBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *stubBookingRepo) GetByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	return nil, nil
}

func (s *stubBookingRepo) GetByProviderID(ctx context.Context, providerID int64) ([]*domain.Booking, error) {
	return nil, nil
}

func (s *stubBookingRepo) ListAvailable(ctx context.Context, notBefore time.Time) ([]*domain.Booking, error) {
	s.listedBefore = notBefore
	return nil, nil
}

func (s *stubBookingRepo) RequestStart(ctx context.Context, id, providerID int64) error {
	if s.requestStartErr != nil {
		return s.requestStartErr
	}
	s.byID[id].UserApprovalRequested = true
	return nil
}

func (s *stubBookingRepo) ApproveStart(ctx context.Context, id int64) error {
	if s.approveStartErr != nil {
		return s.approveStartErr
	}
	b := s.byID[id]
	b.Status = domain.StatusInProgress
	now := time.Now()
	b.StartedAt = &now
	return nil
}

func (s *stubBookingRepo) Complete(ctx context.Context, id, completedBy int64) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completedBy = completedBy
	s.byID[id].Status = domain.StatusCompleted
	return nil
}

func (s *stubBookingRepo) Cancel(ctx context.Context, id, cancelledBy int64, reason string) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelledBy = cancelledBy
	s.cancelReason = reason
	s.byID[id].Status = domain.StatusCancelled
	return nil
}

type stubPaymentRepo struct {
	payments     []*domain.Payment
	completed    *domain.Payment
	completedErr error

	refundSet        bool
	cancelledPending bool
}

func (s *stubPaymentRepo) ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.Payment, error) {
	return s.payments, nil
}

func (s *stubPaymentRepo) GetCompletedByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	if s.completedErr != nil {
		return nil, s.completedErr
	}
	if s.completed == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return s.completed, nil
}

func (s *stubPaymentRepo) SetRefund(ctx context.Context, paymentID int64, refundID string, status domain.RefundStatus, amountCents int64) error {
	s.refundSet = true
	return nil
}

func (s *stubPaymentRepo) CancelPending(ctx context.Context, bookingID int64) error {
	s.cancelledPending = true
	return nil
}

type stubEarningRepo struct {
	created bool
	err     error

	gotEarning *domain.Earning
	calls      int
}

func (s *stubEarningRepo) CreateIfAbsent(ctx context.Context, earning *domain.Earning) (bool, error) {
	s.calls++
	s.gotEarning = earning
	return s.created, s.err
}

type stubProviderRepo struct {
	incremented int64
	calls       int
}

func (s *stubProviderRepo) IncrementBalance(ctx context.Context, userID, amountCents int64) error {
	s.calls++
	s.incremented += amountCents
	return nil
}

type stubProcessor struct {
	refund *stripeprocessor.Refund
	err    error
	calls  int
}

func (s *stubProcessor) CreateRefund(paymentIntentID string) (*stripeprocessor.Refund, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.refund, nil
}

type stubNotifier struct {
	notified []int64
}

func (s *stubNotifier) Notify(ctx context.Context, userID int64, title, message string, data map[string]string) error {
	s.notified = append(s.notified, userID)
	return nil
}

type stubTxManager struct{}

func (stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type env struct {
	svc       *Service
	bookings  *stubBookingRepo
	payments  *stubPaymentRepo
	earnings  *stubEarningRepo
	providers *stubProviderRepo
	processor *stubProcessor
	notifier  *stubNotifier
}

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const (
	userID     = int64(1)
	providerID = int64(9)
	strangerID = int64(77)
)

func assignedBooking() *domain.Booking {
	return &domain.Booking{
		ID:          42,
		Status:      domain.StatusPending,
		UserID:      userID,
		ProviderID:  ptr.Ptr(providerID),
		ServiceID:   domain.ServiceRoomAttendant,
		ServiceName: "Room Attendant",
		RateCents:   2500,
		Hours:       3,
		StartAt:     testNow.Add(2 * time.Hour),
		Address:     "10 Main St",
	}
}

func newEnv(bookings ...*domain.Booking) *env {
	e := &env{
		bookings:  &stubBookingRepo{byID: make(map[int64]*domain.Booking)},
		payments:  &stubPaymentRepo{},
		earnings:  &stubEarningRepo{created: true},
		providers: &stubProviderRepo{},
		processor: &stubProcessor{refund: &stripeprocessor.Refund{ID: "re_1", Status: "pending", AmountCents: 7500}},
		notifier:  &stubNotifier{},
	}
	for _, b := range bookings {
		e.bookings.byID[b.ID] = b
	}
	e.svc = NewService(e.bookings, e.payments, e.earnings, e.providers, e.processor, e.notifier, stubTxManager{}, nopLogger{})
	e.svc.timeProvider = fixedClock{now: testNow}
	return e
}

func TestGetByID_Access(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		wantErr error
	}{
		{"owner", userID, nil},
		{"assigned provider", providerID, nil},
		{"stranger", strangerID, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(assignedBooking())
			resp, err := e.svc.GetByID(context.Background(), 42, tt.actorID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), resp.ID)
			assert.Equal(t, int64(7500), resp.AmountCents)
		})
	}
}

func TestGetByID_PaymentVisibility(t *testing.T) {
	e := newEnv(assignedBooking())
	e.payments.payments = []*domain.Payment{
		{ID: 6, BookingID: 42, Status: domain.PaymentStatusPending, PaymentIntentID: "pi_2", ClientSecret: "pi_2_secret"},
		{ID: 5, BookingID: 42, Status: domain.PaymentStatusCancelled, PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret"},
	}

	resp, err := e.svc.GetByID(context.Background(), 42, userID)
	require.NoError(t, err)
	require.Len(t, resp.Payments, 2)

	// секрет подтверждения отдаётся только по незавершённому платежу
	assert.Equal(t, "pi_2_secret", resp.Payments[0].ClientSecret)
	assert.Empty(t, resp.Payments[1].ClientSecret)
}

func TestGetByID_NotFound(t *testing.T) {
	e := newEnv()
	_, err := e.svc.GetByID(context.Background(), 404, userID)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetAvailable_HidesImminentStarts(t *testing.T) {
	e := newEnv()
	_, err := e.svc.GetAvailable(context.Background())
	require.NoError(t, err)

	// бронирования ближе окна листинга к началу не показываются
	assert.True(t, e.bookings.listedBefore.Equal(testNow.Add(domain.ClaimListingWindow)))
}

func TestStartBooking(t *testing.T) {
	t.Run("assigned provider requests start", func(t *testing.T) {
		e := newEnv(assignedBooking())

		resp, err := e.svc.StartBooking(context.Background(), 42, providerID)
		require.NoError(t, err)
		assert.True(t, resp.UserApprovalRequested)
		assert.Equal(t, []int64{userID}, e.notifier.notified, "client must get a push")
	})

	t.Run("other provider is rejected", func(t *testing.T) {
		e := newEnv(assignedBooking())

		_, err := e.svc.StartBooking(context.Background(), 42, strangerID)
		require.ErrorIs(t, err, ErrNotAssignedProvider)
	})

	t.Run("unassigned booking is rejected", func(t *testing.T) {
		b := assignedBooking()
		b.ProviderID = nil
		e := newEnv(b)

		_, err := e.svc.StartBooking(context.Background(), 42, providerID)
		require.ErrorIs(t, err, ErrNotAssignedProvider)
	})

	t.Run("repository refusal maps to ErrStartNotAllowed", func(t *testing.T) {
		e := newEnv(assignedBooking())
		e.bookings.requestStartErr = bookingRepo.ErrStartNotAllowed

		_, err := e.svc.StartBooking(context.Background(), 42, providerID)
		require.ErrorIs(t, err, ErrStartNotAllowed)
	})
}

func TestApproveStart(t *testing.T) {
	t.Run("owner approves", func(t *testing.T) {
		b := assignedBooking()
		b.UserApprovalRequested = true
		e := newEnv(b)

		resp, err := e.svc.ApproveStart(context.Background(), 42, userID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusInProgress), resp.Status)
		assert.NotNil(t, resp.StartedAt)
		assert.Equal(t, []int64{providerID}, e.notifier.notified)
	})

	t.Run("only the owner may approve", func(t *testing.T) {
		e := newEnv(assignedBooking())

		_, err := e.svc.ApproveStart(context.Background(), 42, providerID)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("approval without request is rejected", func(t *testing.T) {
		e := newEnv(assignedBooking())
		e.bookings.approveStartErr = bookingRepo.ErrApprovalNotAllowed

		_, err := e.svc.ApproveStart(context.Background(), 42, userID)
		require.ErrorIs(t, err, ErrApprovalNotAllowed)
	})
}

func TestComplete(t *testing.T) {
	inProgress := func() *domain.Booking {
		b := assignedBooking()
		b.Status = domain.StatusInProgress
		return b
	}

	t.Run("credits provider earnings once", func(t *testing.T) {
		e := newEnv(inProgress())

		resp, err := e.svc.Complete(context.Background(), 42, userID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCompleted), resp.Status)

		require.NotNil(t, e.earnings.gotEarning)
		assert.Equal(t, int64(42), e.earnings.gotEarning.BookingID)
		assert.Equal(t, providerID, e.earnings.gotEarning.ProviderID)
		assert.Equal(t, int64(7500), e.earnings.gotEarning.AmountCents)
		assert.Equal(t, int64(7500), e.providers.incremented)
	})

	t.Run("repeat completion does not double credit", func(t *testing.T) {
		e := newEnv(inProgress())
		e.earnings.created = false // начисление уже существует

		_, err := e.svc.Complete(context.Background(), 42, userID)
		require.NoError(t, err)
		assert.Zero(t, e.providers.calls, "balance must not be incremented again")
	})

	t.Run("pending booking cannot be completed", func(t *testing.T) {
		e := newEnv(assignedBooking())
		e.bookings.completeErr = bookingRepo.ErrCannotComplete

		_, err := e.svc.Complete(context.Background(), 42, userID)
		require.ErrorIs(t, err, ErrCannotComplete)
		assert.Zero(t, e.earnings.calls)
	})

	t.Run("stranger cannot complete", func(t *testing.T) {
		e := newEnv(inProgress())

		_, err := e.svc.Complete(context.Background(), 42, strangerID)
		require.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestCancel(t *testing.T) {
	t.Run("paid booking is refunded", func(t *testing.T) {
		e := newEnv(assignedBooking())
		e.payments.completed = &domain.Payment{ID: 5, BookingID: 42, PaymentIntentID: "pi_123", Status: domain.PaymentStatusCompleted}

		resp, err := e.svc.Cancel(context.Background(), &models.CancelBookingRequest{
			BookingID:          42,
			ActorID:            userID,
			CancellationReason: "plans changed",
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.Equal(t, "plans changed", e.bookings.cancelReason)
		assert.True(t, e.payments.cancelledPending)
		assert.Equal(t, 1, e.processor.calls)
		assert.True(t, e.payments.refundSet)
		assert.Equal(t, []int64{providerID}, e.notifier.notified)
	})

	t.Run("unpaid booking cancels without refund", func(t *testing.T) {
		e := newEnv(assignedBooking())

		_, err := e.svc.Cancel(context.Background(), &models.CancelBookingRequest{BookingID: 42, ActorID: userID})
		require.NoError(t, err)
		assert.Zero(t, e.processor.calls)
	})

	t.Run("refund failure does not undo the cancellation", func(t *testing.T) {
		e := newEnv(assignedBooking())
		e.payments.completed = &domain.Payment{ID: 5, BookingID: 42, PaymentIntentID: "pi_123"}
		e.processor.err = errors.New("stripe is down")

		resp, err := e.svc.Cancel(context.Background(), &models.CancelBookingRequest{BookingID: 42, ActorID: userID})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.False(t, e.payments.refundSet)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		b := assignedBooking()
		b.Status = domain.StatusCompleted
		e := newEnv(b)
		e.bookings.cancelErr = bookingRepo.ErrCannotCancel

		_, err := e.svc.Cancel(context.Background(), &models.CancelBookingRequest{BookingID: 42, ActorID: userID})
		require.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("overlong reason is rejected", func(t *testing.T) {
		e := newEnv(assignedBooking())
		reason := make([]byte, domain.MaxCancellationReasonLength+1)
		for i := range reason {
			reason[i] = 'x'
		}

		_, err := e.svc.Cancel(context.Background(), &models.CancelBookingRequest{
			BookingID:          42,
			ActorID:            userID,
			CancellationReason: string(reason),
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestGroupByLifecycle(t *testing.T) {
	pending := assignedBooking()

	active := assignedBooking()
	active.ID = 43
	active.Status = domain.StatusInProgress

	done := assignedBooking()
	done.ID = 44
	done.Status = domain.StatusCompleted

	cancelled := assignedBooking()
	cancelled.ID = 45
	cancelled.Status = domain.StatusCancelled

	grouped := models.GroupByLifecycle([]*domain.Booking{pending, active, done, cancelled})

	require.Len(t, grouped.Scheduled, 1)
	require.Len(t, grouped.Active, 1)
	require.Len(t, grouped.History, 2)
	assert.Equal(t, int64(42), grouped.Scheduled[0].ID)
	assert.Equal(t, int64(43), grouped.Active[0].ID)
}
