package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type stubTaskRepo struct {
	due []*domain.ScheduledTask
	err error

	doneIDs []int64
}

func (s *stubTaskRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.due, nil
}

func (s *stubTaskRepo) MarkDone(ctx context.Context, id int64) error {
	s.doneIDs = append(s.doneIDs, id)
	return nil
}

type stubExpirerBookingRepo struct {
	cancelled bool
	err       error

	cancelledIDs []int64
	reasons      []string
	stale        []*domain.Booking
	staleErr     error
}

func (s *stubExpirerBookingRepo) CancelExpired(ctx context.Context, id int64, reason string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.cancelledIDs = append(s.cancelledIDs, id)
	s.reasons = append(s.reasons, reason)
	return s.cancelled, nil
}

func (s *stubExpirerBookingRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Booking, error) {
	return s.stale, s.staleErr
}

type recordingMetrics struct {
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: make(map[string]int)}
}

func (m *recordingMetrics) IncTaskProcessed(kind, status string) {
	m.counts[kind+"/"+status]++
}

func expireTask(id int64) *domain.ScheduledTask {
	return &domain.ScheduledTask{
		ID:      id,
		TaskKey: "c0ffee",
		Kind:    domain.TaskKindBookingExpire,
		Payload: []byte(`{"booking_id": 42}`),
		FireAt:  time.Now().Add(-time.Minute),
	}
}

func TestProcessDueTasks_ExpiresUnpaidBooking(t *testing.T) {
	tasks := &stubTaskRepo{due: []*domain.ScheduledTask{expireTask(1)}}
	bookings := &stubExpirerBookingRepo{cancelled: true}
	metrics := newRecordingMetrics()

	e := NewExpirer(tasks, bookings, metrics, time.Second, nopLogger{})
	e.processDueTasks(context.Background())

	require.Equal(t, []int64{42}, bookings.cancelledIDs)
	assert.Equal(t, []int64{1}, tasks.doneIDs)
	assert.Equal(t, 1, metrics.counts[domain.TaskKindBookingExpire+"/done"])
}

func TestProcessDueTasks_PaidBookingIsSkipped(t *testing.T) {
	// бронирование успели оплатить и принять, условная отмена не прошла
	tasks := &stubTaskRepo{due: []*domain.ScheduledTask{expireTask(1)}}
	bookings := &stubExpirerBookingRepo{cancelled: false}
	metrics := newRecordingMetrics()

	e := NewExpirer(tasks, bookings, metrics, time.Second, nopLogger{})
	e.processDueTasks(context.Background())

	assert.Equal(t, []int64{1}, tasks.doneIDs, "task must still be closed")
	assert.Equal(t, 1, metrics.counts[domain.TaskKindBookingExpire+"/skipped"])
}

func TestProcessDueTasks_FailedTaskStaysOpen(t *testing.T) {
	tasks := &stubTaskRepo{due: []*domain.ScheduledTask{expireTask(1)}}
	bookings := &stubExpirerBookingRepo{err: errors.New("db down")}
	metrics := newRecordingMetrics()

	e := NewExpirer(tasks, bookings, metrics, time.Second, nopLogger{})
	e.processDueTasks(context.Background())

	assert.Empty(t, tasks.doneIDs, "failed task must be retried on the next pass")
	assert.Equal(t, 1, metrics.counts[domain.TaskKindBookingExpire+"/error"])
}

func TestProcessDueTasks_UnknownKindClosed(t *testing.T) {
	tasks := &stubTaskRepo{due: []*domain.ScheduledTask{{
		ID:      2,
		Kind:    "booking.remind",
		Payload: []byte(`{}`),
	}}}
	bookings := &stubExpirerBookingRepo{}
	metrics := newRecordingMetrics()

	e := NewExpirer(tasks, bookings, metrics, time.Second, nopLogger{})
	e.processDueTasks(context.Background())

	assert.Equal(t, []int64{2}, tasks.doneIDs)
	assert.Empty(t, bookings.cancelledIDs)
	assert.Equal(t, 1, metrics.counts["booking.remind/skipped"])
}

func TestProcessDueTasks_MalformedPayload(t *testing.T) {
	tasks := &stubTaskRepo{due: []*domain.ScheduledTask{{
		ID:      3,
		Kind:    domain.TaskKindBookingExpire,
		Payload: []byte(`{broken`),
	}}}
	bookings := &stubExpirerBookingRepo{}
	metrics := newRecordingMetrics()

	e := NewExpirer(tasks, bookings, metrics, time.Second, nopLogger{})
	e.processDueTasks(context.Background())

	assert.Empty(t, tasks.doneIDs)
	assert.Equal(t, 1, metrics.counts[domain.TaskKindBookingExpire+"/error"])
}
