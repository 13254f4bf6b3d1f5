package accept_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/HSM-MarketplaceService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubBookingRepo struct {
	booking  *domain.Booking
	getErr   error
	claimErr error

	claimedID       int64
	claimedProvider int64
}

func (s *stubBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.booking, nil
}

func (s *stubBookingRepo) Claim(ctx context.Context, id, providerID int64) error {
	if s.claimErr != nil {
		return s.claimErr
	}
	s.claimedID = id
	s.claimedProvider = providerID
	return nil
}

type stubPaymentRepo struct {
	paid bool
	err  error
}

func (s *stubPaymentRepo) HasCompleted(ctx context.Context, bookingID int64) (bool, error) {
	return s.paid, s.err
}

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          42,
		Status:      domain.StatusPending,
		UserID:      1,
		ServiceID:   domain.ServiceLinenPorter,
		ServiceName: "Linen Porter",
		RateCents:   2000,
		Hours:       2,
		StartAt:     testNow.Add(3 * time.Hour),
		Address:     "10 Main St",
	}
}

func newUseCase(bookings *stubBookingRepo, payments *stubPaymentRepo) *UseCase {
	uc := NewUseCase(bookings, payments, nopLogger{})
	uc.timeProvider = fixedClock{now: testNow}
	return uc
}

func TestExecute_Success(t *testing.T) {
	bookings := &stubBookingRepo{booking: pendingBooking()}
	uc := newUseCase(bookings, &stubPaymentRepo{paid: true})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 42, ProviderID: 9})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, int64(9), resp.ProviderID)
	assert.Equal(t, int64(4000), resp.AmountCents)
	assert.Equal(t, int64(42), bookings.claimedID)
	assert.Equal(t, int64(9), bookings.claimedProvider)
}

func TestExecute_Rejections(t *testing.T) {
	assigned := pendingBooking()
	assigned.ProviderID = ptr.Ptr(int64(5))

	cancelled := pendingBooking()
	cancelled.Status = domain.StatusCancelled

	passed := pendingBooking()
	passed.StartAt = testNow.Add(-time.Minute)

	atNow := pendingBooking()
	atNow.StartAt = testNow

	tests := []struct {
		name    string
		booking *domain.Booking
		getErr  error
		paid    bool
		wantErr error
	}{
		{"not found", nil, bookingRepo.ErrBookingNotFound, true, ErrBookingNotFound},
		{"already assigned", assigned, nil, true, ErrAlreadyClaimed},
		{"cancelled", cancelled, nil, true, ErrAlreadyClaimed},
		{"start passed", passed, nil, true, ErrStartPassed},
		{"start is right now", atNow, nil, true, ErrStartPassed},
		{"not paid", pendingBooking(), nil, false, ErrNotPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &stubBookingRepo{booking: tt.booking, getErr: tt.getErr}
			uc := newUseCase(bookings, &stubPaymentRepo{paid: tt.paid})

			_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ProviderID: 9})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, bookings.claimedID, "booking must not be claimed")
		})
	}
}

func TestExecute_ConcurrentClaimLoses(t *testing.T) {
	// другой провайдер выиграл условное обновление между проверкой и Claim
	bookings := &stubBookingRepo{
		booking:  pendingBooking(),
		claimErr: bookingRepo.ErrNotClaimable,
	}
	uc := newUseCase(bookings, &stubPaymentRepo{paid: true})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 42, ProviderID: 9})
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newUseCase(&stubBookingRepo{}, &stubPaymentRepo{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0, ProviderID: 9})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 42, ProviderID: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}
