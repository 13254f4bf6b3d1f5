package process_payment_event

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type stubPaymentRepo struct {
	updated bool
	err     error

	gotIntent string
	gotFrom   domain.PaymentStatus
	gotTo     domain.PaymentStatus
	calls     int
}

func (s *stubPaymentRepo) UpdateStatusByIntentID(ctx context.Context, paymentIntentID string, from, to domain.PaymentStatus) (bool, error) {
	s.calls++
	s.gotIntent = paymentIntentID
	s.gotFrom = from
	s.gotTo = to
	return s.updated, s.err
}

type stubParser struct {
	event *stripeprocessor.WebhookEvent
	err   error
}

func (s *stubParser) ParseWebhookEvent(payload []byte, signatureHeader string) (*stripeprocessor.WebhookEvent, error) {
	return s.event, s.err
}

func event(eventType string) *stripeprocessor.WebhookEvent {
	return &stripeprocessor.WebhookEvent{
		ID:              "evt_1",
		Type:            eventType,
		PaymentIntentID: "pi_123",
	}
}

func TestExecute_InvalidSignature(t *testing.T) {
	payments := &stubPaymentRepo{}
	parser := &stubParser{err: fmt.Errorf("%w: bad header", stripeprocessor.ErrInvalidSignature)}
	uc := NewUseCase(payments, parser, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "t=1,v1=bad")
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Zero(t, payments.calls)
}

func TestExecute_Succeeded(t *testing.T) {
	payments := &stubPaymentRepo{updated: true}
	uc := NewUseCase(payments, &stubParser{event: event("payment_intent.succeeded")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, "pi_123", payments.gotIntent)
	assert.Equal(t, domain.PaymentStatusPending, payments.gotFrom)
	assert.Equal(t, domain.PaymentStatusCompleted, payments.gotTo)
}

func TestExecute_Canceled(t *testing.T) {
	payments := &stubPaymentRepo{updated: true}
	uc := NewUseCase(payments, &stubParser{event: event("payment_intent.canceled")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCancelled, payments.gotTo)
}

func TestExecute_RedeliveryIsIdempotent(t *testing.T) {
	// платёж уже в терминальном статусе, условное обновление ничего не меняет
	payments := &stubPaymentRepo{updated: false}
	uc := NewUseCase(payments, &stubParser{event: event("payment_intent.succeeded")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, 1, payments.calls)
}

func TestExecute_FailedLeavesPaymentPending(t *testing.T) {
	payments := &stubPaymentRepo{}
	uc := NewUseCase(payments, &stubParser{event: event("payment_intent.payment_failed")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Zero(t, payments.calls, "failed payment must stay pending for retry")
}

func TestExecute_UnknownEventAcked(t *testing.T) {
	payments := &stubPaymentRepo{}
	uc := NewUseCase(payments, &stubParser{event: event("charge.refunded")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Zero(t, payments.calls)
}

func TestExecute_RepositoryError(t *testing.T) {
	payments := &stubPaymentRepo{err: errors.New("db down")}
	uc := NewUseCase(payments, &stubParser{event: event("payment_intent.succeeded")}, nopLogger{})

	err := uc.Execute(context.Background(), []byte(`{}`), "sig")
	require.ErrorIs(t, err, ErrInternal)
}
