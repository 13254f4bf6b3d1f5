package create_payment_intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type stubBookingRepo struct {
	booking *domain.Booking
	getErr  error
}

func (s *stubBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.booking, nil
}

type stubPaymentRepo struct {
	payments []*domain.Payment
	paid     bool
	listErr  error

	created *domain.Payment
}

func (s *stubPaymentRepo) ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.Payment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.payments, nil
}

func (s *stubPaymentRepo) HasCompleted(ctx context.Context, bookingID int64) (bool, error) {
	return s.paid, nil
}

func (s *stubPaymentRepo) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	s.created = payment
	created := *payment
	created.ID = 7
	return &created, nil
}

type stubProcessor struct {
	err   error
	calls int
}

func (s *stubProcessor) CreatePaymentIntent(amountCents int64, bookingID int64) (*stripeprocessor.PaymentIntent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &stripeprocessor.PaymentIntent{ID: "pi_retry", ClientSecret: "pi_retry_secret", Status: "requires_payment_method"}, nil
}

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:        42,
		Status:    domain.StatusPending,
		UserID:    1,
		ServiceID: domain.ServiceRoomAttendant,
		RateCents: 2500,
		Hours:     3,
		StartAt:   testNow.Add(3 * time.Hour),
		Address:   "10 Main St",
	}
}

type env struct {
	bookings  *stubBookingRepo
	payments  *stubPaymentRepo
	processor *stubProcessor
	uc        *UseCase
}

func newEnv() *env {
	e := &env{
		bookings:  &stubBookingRepo{booking: pendingBooking()},
		payments:  &stubPaymentRepo{},
		processor: &stubProcessor{},
	}
	e.uc = NewUseCase(e.bookings, e.payments, e.processor, nopLogger{})
	return e
}

func TestExecute_CreatesIntentWhenNoneExists(t *testing.T) {
	// бронирование без единого платежа: создание intent при бронировании сорвалось
	e := newEnv()

	resp, err := e.uc.Execute(context.Background(), &Request{UserID: 1, BookingID: 42})
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.PaymentID)
	assert.Equal(t, int64(42), resp.BookingID)
	assert.Equal(t, int64(7500), resp.AmountCents)
	assert.Equal(t, string(domain.PaymentStatusPending), resp.Status)
	assert.Equal(t, "pi_retry", resp.PaymentIntentID)
	assert.Equal(t, "pi_retry_secret", resp.ClientSecret)

	require.NotNil(t, e.payments.created)
	assert.Equal(t, int64(7500), e.payments.created.AmountCents)
}

func TestExecute_ReusesPendingPayment(t *testing.T) {
	e := newEnv()
	e.payments.payments = []*domain.Payment{
		{ID: 3, BookingID: 42, AmountCents: 7500, Status: domain.PaymentStatusPending,
			PaymentIntentID: "pi_old", ClientSecret: "pi_old_secret"},
		{ID: 2, BookingID: 42, AmountCents: 7500, Status: domain.PaymentStatusCancelled,
			PaymentIntentID: "pi_dead"},
	}

	resp, err := e.uc.Execute(context.Background(), &Request{UserID: 1, BookingID: 42})
	require.NoError(t, err)

	assert.Equal(t, "pi_old", resp.PaymentIntentID)
	assert.Equal(t, "pi_old_secret", resp.ClientSecret)
	assert.Zero(t, e.processor.calls, "no new intent while a pending one exists")
	assert.Nil(t, e.payments.created)
}

func TestExecute_Rejections(t *testing.T) {
	cancelled := pendingBooking()
	cancelled.Status = domain.StatusCancelled

	tests := []struct {
		name    string
		booking *domain.Booking
		getErr  error
		userID  int64
		paid    bool
		wantErr error
	}{
		{"not found", nil, bookingRepo.ErrBookingNotFound, 1, false, ErrBookingNotFound},
		{"not the owner", pendingBooking(), nil, 77, false, ErrAccessDenied},
		{"cancelled booking", cancelled, nil, 1, false, ErrNotPayable},
		{"already paid", pendingBooking(), nil, 1, true, ErrAlreadyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.bookings.booking = tt.booking
			e.bookings.getErr = tt.getErr
			e.payments.paid = tt.paid

			_, err := e.uc.Execute(context.Background(), &Request{UserID: tt.userID, BookingID: 42})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, e.processor.calls, "no intent must be created")
		})
	}
}

func TestExecute_ProcessorDown(t *testing.T) {
	e := newEnv()
	e.processor.err = errors.New("connection refused")

	_, err := e.uc.Execute(context.Background(), &Request{UserID: 1, BookingID: 42})
	require.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.Nil(t, e.payments.created)
}

func TestExecute_InvalidInput(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), &Request{UserID: 0, BookingID: 42})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.uc.Execute(context.Background(), &Request{UserID: 1, BookingID: -5})
	require.ErrorIs(t, err, ErrInvalidInput)
}
