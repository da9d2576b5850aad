package expire_bookings

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
)

// memStore хранилище, повторяющее условия запросов репозиториев
type memStore struct {
	bookings map[int64]*domain.Booking
	attempts map[int64]time.Time
	payments map[int64]*domain.Payment

	listPendingErr error
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[int64]*domain.Booking{},
		attempts: map[int64]time.Time{},
		payments: map[int64]*domain.Payment{},
	}
}

func (s *memStore) add(b *domain.Booking) {
	s.bookings[b.ID] = b
}

func (s *memStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.bookings))
	for id := range s.bookings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memStore) ListPendingCreatedBefore(_ context.Context, createdBefore time.Time, _ uint64) ([]bookingRepo.PendingCandidate, error) {
	if s.listPendingErr != nil {
		return nil, s.listPendingErr
	}
	var out []bookingRepo.PendingCandidate
	for _, id := range s.sortedIDs() {
		b := s.bookings[id]
		if b.Status != domain.StatusPending || b.CreatedAt.After(createdBefore) {
			continue
		}
		c := bookingRepo.PendingCandidate{BookingID: id, CreatedAt: b.CreatedAt}
		if at, ok := s.attempts[id]; ok {
			c.DocumentAttemptAt = ptr.Ptr(at)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) CancelMany(_ context.Context, ids []int64, from domain.BookingStatus, reason string, at time.Time) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		b, ok := s.bookings[id]
		if !ok || b.Status != from {
			continue
		}
		s.cancel(b, reason, at)
		out = append(out, id)
	}
	return out, nil
}

func (s *memStore) CancelUnpaidVerified(_ context.Context, ttl time.Duration, reason string, at time.Time, _ uint64) ([]int64, error) {
	updatedBefore := at.Add(-ttl)
	var out []int64
	for _, id := range s.sortedIDs() {
		b := s.bookings[id]
		if b.Status != domain.StatusVerified || b.UpdatedAt.After(updatedBefore) || s.payments[id].IsSucceeded() {
			continue
		}
		s.cancel(b, reason, at)
		out = append(out, id)
	}
	return out, nil
}

func (s *memStore) DeleteDraftsCreatedBefore(_ context.Context, createdBefore time.Time) (int64, error) {
	var n int64
	for _, id := range s.sortedIDs() {
		b := s.bookings[id]
		if b.Status == domain.StatusDraft && !b.CreatedAt.After(createdBefore) {
			delete(s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListRefundable(_ context.Context, updatedBefore time.Time, _ uint64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, id := range s.sortedIDs() {
		b := s.bookings[id]
		p := s.payments[id]
		if !p.IsSucceeded() || p.ExternalPaymentID == nil {
			continue
		}
		if b.Status != domain.StatusCancelled && b.Status != domain.StatusRejected {
			continue
		}
		if b.UpdatedAt.After(updatedBefore) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) MarkRefunded(_ context.Context, bookingID int64, refundID string) error {
	p, ok := s.payments[bookingID]
	if !ok || p.Status != domain.PaymentSucceeded {
		return paymentRepo.ErrStatusMismatch
	}
	p.Status = domain.PaymentRefunded
	p.RefundID = ptr.Ptr(refundID)
	return nil
}

func (s *memStore) cancel(b *domain.Booking, reason string, at time.Time) {
	b.Status = domain.StatusCancelled
	b.CancellationReason = ptr.Ptr(reason)
	b.CancelledAt = ptr.Ptr(at)
	b.UpdatedAt = at
}

type fakeGateway struct {
	refunds map[int64]int
	err     error
}

func (g *fakeGateway) Refund(_ context.Context, bookingID int64, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.refunds == nil {
		g.refunds = map[int64]int{}
	}
	g.refunds[bookingID]++
	return "re_1", nil
}

type recordingNotifier struct {
	messages []notifier.Message
}

func (n *recordingNotifier) Publish(_ context.Context, msg notifier.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

type fakeMetrics struct {
	sweeps      map[string]int
	failed      map[string]int
	transitions int
}

func (m *fakeMetrics) ObserveSweep(sweep string, affected int, _ time.Duration, err error) {
	if m.sweeps == nil {
		m.sweeps, m.failed = map[string]int{}, map[string]int{}
	}
	m.sweeps[sweep] += affected
	if err != nil {
		m.failed[sweep]++
	}
}

func (m *fakeMetrics) IncTransition(string, string) {
	m.transitions++
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	gateway  *fakeGateway
	notifier *recordingNotifier
	metrics  *fakeMetrics
	clock    *fixedClock
	uc       *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
		metrics:  &fakeMetrics{},
		clock:    &fixedClock{now: t0},
	}
	f.uc = NewUseCase(f.store, f.store, f.gateway, f.notifier, f.metrics, DefaultSettings(), nopLogger{}).
		WithTimeProvider(f.clock)
	return f
}

func booking(id int64, status domain.BookingStatus, createdAt time.Time) *domain.Booking {
	return &domain.Booking{ID: id, CarID: 1, Status: status, CreatedAt: createdAt, UpdatedAt: createdAt}
}

func TestExecute_PendingTimeout(t *testing.T) {
	f := newFixture()
	f.store.add(booking(1, domain.StatusPending, t0))

	// T+59min: срок еще не истек
	f.clock.now = t0.Add(59 * time.Minute)
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.PendingExpired)
	assert.Equal(t, domain.StatusPending, f.store.bookings[1].Status)

	// T+61min: отменено
	f.clock.now = t0.Add(61 * time.Minute)
	report, err = f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.PendingExpired)
	assert.Equal(t, domain.StatusCancelled, f.store.bookings[1].Status)
	assert.Equal(t, ReasonVerificationTimeout, *f.store.bookings[1].CancellationReason)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notifier.TypeBookingCancelled, f.notifier.messages[0].Type)
	assert.Equal(t, 1, f.metrics.transitions)
}

func TestExecute_PendingGraceAfterLateDocumentAttempt(t *testing.T) {
	f := newFixture()
	f.store.add(booking(1, domain.StatusPending, t0))
	f.store.add(booking(2, domain.StatusPending, t0))
	f.store.attempts[1] = t0.Add(50 * time.Minute) // последние 15 минут срока
	f.store.attempts[2] = t0.Add(20 * time.Minute) // слишком рано для продления

	f.clock.now = t0.Add(70 * time.Minute)
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, report.PendingExpired)
	assert.Equal(t, domain.StatusPending, f.store.bookings[1].Status)

	f.clock.now = t0.Add(76 * time.Minute)
	report, err = f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.PendingExpired)
}

func TestExecute_VerifiedUnpaid(t *testing.T) {
	f := newFixture()
	f.store.add(booking(1, domain.StatusVerified, t0))
	f.store.add(booking(2, domain.StatusVerified, t0))
	f.store.payments[2] = &domain.Payment{BookingID: 2, Status: domain.PaymentSucceeded, UpdatedAt: t0.Add(10 * time.Minute)}

	f.clock.now = t0.Add(16 * time.Minute)
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, report.UnpaidCancelled)
	assert.Equal(t, domain.StatusCancelled, f.store.bookings[1].Status)
	assert.Equal(t, ReasonPaymentTimeout, *f.store.bookings[1].CancellationReason)
	assert.Equal(t, domain.StatusVerified, f.store.bookings[2].Status)
}

func TestExecute_DraftPurge(t *testing.T) {
	f := newFixture()
	f.store.add(booking(1, domain.StatusDraft, t0.Add(-25*time.Hour)))
	f.store.add(booking(2, domain.StatusDraft, t0.Add(-time.Hour)))

	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.DraftsDeleted)
	assert.NotContains(t, f.store.bookings, int64(1))
	assert.Contains(t, f.store.bookings, int64(2))
}

func TestExecute_RefundReconciliation(t *testing.T) {
	f := newFixture()
	cancelled := booking(1, domain.StatusCancelled, t0.Add(-time.Hour))
	f.store.add(cancelled)
	f.store.payments[1] = &domain.Payment{
		BookingID:         1,
		Status:            domain.PaymentSucceeded,
		ExternalPaymentID: ptr.Ptr("pi_1"),
	}

	f.gateway.err = errors.New("gateway down")
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.RefundsFailed)
	assert.Equal(t, domain.PaymentSucceeded, f.store.payments[1].Status)

	f.gateway.err = nil
	report, err = f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.Refunded)
	assert.Equal(t, domain.PaymentRefunded, f.store.payments[1].Status)

	// повторный запуск ничего не возвращает
	report, err = f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Refunded)
	assert.Equal(t, 1, f.gateway.refunds[1])
}

func TestExecute_Monotonic(t *testing.T) {
	f := newFixture()
	f.store.add(booking(1, domain.StatusPending, t0))
	f.store.add(booking(2, domain.StatusVerified, t0))
	f.store.add(booking(3, domain.StatusConfirmed, t0))

	f.clock.now = t0.Add(2 * time.Hour)
	_, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	statuses := map[int64]domain.BookingStatus{}
	for id, b := range f.store.bookings {
		statuses[id] = b.Status
	}

	f.clock.now = t0.Add(3 * time.Hour)
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.PendingExpired)
	assert.Empty(t, report.UnpaidCancelled)
	for id, b := range f.store.bookings {
		assert.Equal(t, statuses[id], b.Status, "booking %d", id)
	}
	assert.Equal(t, domain.StatusConfirmed, f.store.bookings[3].Status)
	assert.Len(t, f.notifier.messages, 2)
}

func TestExecute_FailingSweepDoesNotStopOthers(t *testing.T) {
	f := newFixture()
	f.store.listPendingErr = errors.New("connection reset")
	f.store.add(booking(1, domain.StatusVerified, t0))

	f.clock.now = t0.Add(time.Hour)
	report, err := f.uc.Execute(context.Background())

	assert.ErrorIs(t, err, ErrSweepFailed)
	assert.Equal(t, []string{SweepPendingTimeout}, report.FailedSweeps)
	assert.Equal(t, []int64{1}, report.UnpaidCancelled)
	assert.Equal(t, 1, f.metrics.failed[SweepPendingTimeout])
}
