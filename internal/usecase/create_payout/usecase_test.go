package create_payout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	providerRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/provider"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
	"github.com/m04kA/HSM-MarketplaceService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type stubProviderRepo struct {
	profile    *domain.ProviderProfile
	reserveErr error

	reserved int64
	released int64
}

func (s *stubProviderRepo) GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error) {
	return s.profile, nil
}

func (s *stubProviderRepo) ReserveBalance(ctx context.Context, userID, amountCents int64) error {
	if s.reserveErr != nil {
		return s.reserveErr
	}
	s.reserved += amountCents
	return nil
}

func (s *stubProviderRepo) ReleaseBalance(ctx context.Context, userID, amountCents int64) error {
	s.released += amountCents
	return nil
}

type stubPayoutRepo struct {
	created *domain.Payout
	err     error
}

func (s *stubPayoutRepo) Create(ctx context.Context, payout *domain.Payout) (*domain.Payout, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *payout
	cp.ID = 11
	s.created = &cp
	return &cp, nil
}

type stubProcessor struct {
	account    *stripeprocessor.ConnectedAccount
	accountErr error
	result     *stripeprocessor.PayoutResult
	payoutErr  error

	payoutAmount int64
}

func (s *stubProcessor) GetConnectedAccount(accountID string) (*stripeprocessor.ConnectedAccount, error) {
	return s.account, s.accountErr
}

func (s *stubProcessor) CreatePayout(accountID string, amountCents int64) (*stripeprocessor.PayoutResult, error) {
	s.payoutAmount = amountCents
	if s.payoutErr != nil {
		return nil, s.payoutErr
	}
	return s.result, nil
}

type env struct {
	uc        *UseCase
	providers *stubProviderRepo
	payouts   *stubPayoutRepo
	processor *stubProcessor
}

func newEnv() *env {
	e := &env{
		providers: &stubProviderRepo{
			profile: &domain.ProviderProfile{
				UserID:             9,
				ConnectedAccountID: ptr.Ptr("acct_123"),
				BalanceCents:       10000,
			},
		},
		payouts: &stubPayoutRepo{},
		processor: &stubProcessor{
			account: &stripeprocessor.ConnectedAccount{ID: "acct_123", HasExternalAccounts: true},
			result: &stripeprocessor.PayoutResult{
				ID:               "po_123",
				Status:           "pending",
				DestinationType:  "bank_account",
				DestinationLast4: "4242",
			},
		},
	}
	e.uc = NewUseCase(e.providers, e.payouts, e.processor, nopLogger{})
	return e
}

func TestExecute_AmountValidation(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"zero", 0},
		{"negative", -20},
		{"below minimum", float64(domain.MinPayoutAmountUnits - 1)},
		{"fractional", 20.5},
		{"fractional above minimum", 25.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: tt.amount})
			require.ErrorIs(t, err, ErrInvalidAmount)
			assert.Zero(t, e.providers.reserved, "balance must stay untouched")
		})
	}
}

func TestExecute_Success(t *testing.T) {
	e := newEnv()

	resp, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
	require.NoError(t, err)

	assert.Equal(t, "po_123", resp.PayoutID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(2000), resp.AmountCents)
	assert.Equal(t, "bank_account", resp.DestinationType)
	require.NotNil(t, resp.DestinationLast4)
	assert.Equal(t, "4242", *resp.DestinationLast4)

	assert.Equal(t, int64(2000), e.providers.reserved)
	assert.Zero(t, e.providers.released)
	assert.Equal(t, int64(2000), e.processor.payoutAmount)

	require.NotNil(t, e.payouts.created)
	assert.Equal(t, domain.DefaultCurrency, e.payouts.created.Currency)
}

func TestExecute_NoPayoutAccount(t *testing.T) {
	e := newEnv()
	e.providers.profile.ConnectedAccountID = nil

	_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
	require.ErrorIs(t, err, ErrNoPayoutAccount)
}

func TestExecute_NoExternalAccount(t *testing.T) {
	e := newEnv()
	e.processor.account.HasExternalAccounts = false

	_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
	require.ErrorIs(t, err, ErrNoExternalAccount)
	assert.Zero(t, e.providers.reserved)
}

func TestExecute_InsufficientBalance(t *testing.T) {
	e := newEnv()
	e.providers.reserveErr = providerRepo.ErrInsufficientBalance

	_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestExecute_ProcessorFailureReleasesReservation(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		e := newEnv()
		e.processor.payoutErr = &stripeprocessor.RejectionError{Method: "CreatePayout", Message: "account restricted"}

		_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
		require.ErrorIs(t, err, ErrProcessorRejected)
		assert.Equal(t, int64(2000), e.providers.released, "reservation must be returned")

		// Наружу уходит только формулировка процессинга, без внутренних обёрток
		var rejected *RejectionError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "account restricted", rejected.Message)
	})

	t.Run("unavailable", func(t *testing.T) {
		e := newEnv()
		e.processor.payoutErr = fmt.Errorf("%w: timeout", stripeprocessor.ErrUnavailable)

		_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
		require.ErrorIs(t, err, ErrProcessorUnavailable)
		assert.Equal(t, int64(2000), e.providers.released)
	})
}

func TestExecute_PersistFailureKeepsReservation(t *testing.T) {
	// выплата в процессинге уже ушла, возврат резерва раздул бы баланс
	e := newEnv()
	e.payouts.err = errors.New("insert failed")

	_, err := e.uc.Execute(context.Background(), &Request{ProviderID: 9, Amount: 20})
	require.ErrorIs(t, err, ErrInternal)
	assert.Zero(t, e.providers.released, "reservation must not be released after the payout was sent")
}
