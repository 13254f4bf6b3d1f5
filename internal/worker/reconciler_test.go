package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
	"github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
	"github.com/m04kA/HSM-MarketplaceService/pkg/ptr"
)

type stubPayoutRepo struct {
	nonTerminal []*domain.Payout
	err         error

	updatedID     string
	updatedStatus string
	updates       int
}

func (s *stubPayoutRepo) ListNonTerminal(ctx context.Context, limit int) ([]*domain.Payout, error) {
	return s.nonTerminal, s.err
}

func (s *stubPayoutRepo) UpdateStatus(ctx context.Context, payoutID string, status string) error {
	s.updates++
	s.updatedID = payoutID
	s.updatedStatus = status
	return nil
}

type stubProviderRepo struct {
	profile *domain.ProviderProfile
	err     error
}

func (s *stubProviderRepo) GetByUserID(ctx context.Context, userID int64) (*domain.ProviderProfile, error) {
	return s.profile, s.err
}

type stubPayoutProcessor struct {
	result   *stripeprocessor.PayoutResult
	failures int

	calls int
}

func (s *stubPayoutProcessor) GetPayout(accountID, payoutID string) (*stripeprocessor.PayoutResult, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, stripeprocessor.ErrUnavailable
	}
	return s.result, nil
}

func connectedProfile() *domain.ProviderProfile {
	return &domain.ProviderProfile{UserID: 9, ConnectedAccountID: ptr.Ptr("acct_123")}
}

func pendingPayout() *domain.Payout {
	return &domain.Payout{ID: 1, ProviderID: 9, PayoutID: "po_123", Status: "pending"}
}

func newReconcilerEnv(bookings *stubExpirerBookingRepo, payouts *stubPayoutRepo, providers *stubProviderRepo, processor *stubPayoutProcessor) *Reconciler {
	return NewReconciler(bookings, payouts, providers, processor, time.Second, time.Hour, nopLogger{})
}

func TestSyncPayoutStatuses_UpdatesChangedStatus(t *testing.T) {
	payouts := &stubPayoutRepo{nonTerminal: []*domain.Payout{pendingPayout()}}
	processor := &stubPayoutProcessor{result: &stripeprocessor.PayoutResult{ID: "po_123", Status: "paid"}}

	r := newReconcilerEnv(&stubExpirerBookingRepo{}, payouts, &stubProviderRepo{profile: connectedProfile()}, processor)
	r.syncPayoutStatuses(context.Background())

	assert.Equal(t, "po_123", payouts.updatedID)
	assert.Equal(t, "paid", payouts.updatedStatus)
}

func TestSyncPayoutStatuses_UnchangedStatusNotTouched(t *testing.T) {
	payouts := &stubPayoutRepo{nonTerminal: []*domain.Payout{pendingPayout()}}
	processor := &stubPayoutProcessor{result: &stripeprocessor.PayoutResult{ID: "po_123", Status: "pending"}}

	r := newReconcilerEnv(&stubExpirerBookingRepo{}, payouts, &stubProviderRepo{profile: connectedProfile()}, processor)
	r.syncPayoutStatuses(context.Background())

	assert.Zero(t, payouts.updates)
}

func TestSyncPayoutStatuses_RetriesTransientFailures(t *testing.T) {
	payouts := &stubPayoutRepo{nonTerminal: []*domain.Payout{pendingPayout()}}
	processor := &stubPayoutProcessor{
		result:   &stripeprocessor.PayoutResult{ID: "po_123", Status: "paid"},
		failures: 2,
	}

	r := newReconcilerEnv(&stubExpirerBookingRepo{}, payouts, &stubProviderRepo{profile: connectedProfile()}, processor)
	r.syncPayoutStatuses(context.Background())

	require.Equal(t, 3, processor.calls)
	assert.Equal(t, "paid", payouts.updatedStatus)
}

func TestSyncPayoutStatuses_ProviderWithoutAccountSkipped(t *testing.T) {
	payouts := &stubPayoutRepo{nonTerminal: []*domain.Payout{pendingPayout()}}
	processor := &stubPayoutProcessor{}

	r := newReconcilerEnv(&stubExpirerBookingRepo{}, payouts, &stubProviderRepo{profile: &domain.ProviderProfile{UserID: 9}}, processor)
	r.syncPayoutStatuses(context.Background())

	assert.Zero(t, processor.calls)
	assert.Zero(t, payouts.updates)
}

func TestSweepStalePending_CancelsAbandonedBookings(t *testing.T) {
	bookings := &stubExpirerBookingRepo{
		cancelled: true,
		stale: []*domain.Booking{
			{ID: 42, Status: domain.StatusPending},
			{ID: 43, Status: domain.StatusPending},
		},
	}

	r := newReconcilerEnv(bookings, &stubPayoutRepo{}, &stubProviderRepo{}, &stubPayoutProcessor{})
	r.sweepStalePending(context.Background())

	assert.Equal(t, []int64{42, 43}, bookings.cancelledIDs)
	require.Len(t, bookings.reasons, 2)
	assert.Equal(t, stalePendingReason, bookings.reasons[0])
}

func TestIsPayoutTerminal(t *testing.T) {
	assert.True(t, domain.IsPayoutTerminal("paid"))
	assert.True(t, domain.IsPayoutTerminal("failed"))
	assert.True(t, domain.IsPayoutTerminal("canceled"))
	assert.False(t, domain.IsPayoutTerminal("pending"))
	assert.False(t, domain.IsPayoutTerminal("in_transit"))
}
