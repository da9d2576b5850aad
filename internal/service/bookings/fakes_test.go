package bookings

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	verificationRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/verification"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
)

// memBookings хранилище бронирований в памяти с семантикой условных UPDATE репозитория
type memBookings struct {
	items map[int64]*domain.Booking
}

func newMemBookings(items ...*domain.Booking) *memBookings {
	m := &memBookings{items: map[int64]*domain.Booking{}}
	for _, b := range items {
		m.items[b.ID] = b
	}
	return m
}

func (m *memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) GetByUserID(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range m.items {
		if !b.IsOwnedBy(userID) || (status != nil && b.Status != *status) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) error {
	b, ok := m.items[id]
	if !ok || !contains(from, b.Status) {
		return bookingRepo.ErrStatusMismatch
	}
	b.Status = to
	return nil
}

func (m *memBookings) Cancel(_ context.Context, id int64, from []domain.BookingStatus, reason string, at time.Time) error {
	b, ok := m.items[id]
	if !ok || !contains(from, b.Status) {
		return bookingRepo.ErrStatusMismatch
	}
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledAt = &at
	return nil
}

func (m *memBookings) Update(_ context.Context, booking *domain.Booking) error {
	b, ok := m.items[booking.ID]
	if !ok || b.Status != booking.Status {
		return bookingRepo.ErrStatusMismatch
	}
	cp := *booking
	m.items[booking.ID] = &cp
	return nil
}

func (m *memBookings) Delete(_ context.Context, id int64, statuses []domain.BookingStatus) error {
	b, ok := m.items[id]
	if !ok || !contains(statuses, b.Status) {
		return bookingRepo.ErrStatusMismatch
	}
	delete(m.items, id)
	return nil
}

type memPayments struct {
	items map[int64]*domain.Payment
}

func newMemPayments(items ...*domain.Payment) *memPayments {
	m := &memPayments{items: map[int64]*domain.Payment{}}
	for _, p := range items {
		m.items[p.BookingID] = p
	}
	return m
}

func (m *memPayments) GetByBookingID(_ context.Context, bookingID int64) (*domain.Payment, error) {
	p, ok := m.items[bookingID]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) reopenable(bookingID int64) bool {
	p, ok := m.items[bookingID]
	return !ok || p.Status == domain.PaymentPending || p.Status == domain.PaymentFailed
}

func (m *memPayments) UpsertPending(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	if !m.reopenable(p.BookingID) {
		return nil, paymentRepo.ErrAlreadySucceeded
	}
	cp := *p
	cp.Status = domain.PaymentPending
	m.items[p.BookingID] = &cp
	return &cp, nil
}

func (m *memPayments) MarkSucceeded(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	if !m.reopenable(p.BookingID) {
		return nil, paymentRepo.ErrAlreadySucceeded
	}
	cp := *p
	cp.Status = domain.PaymentSucceeded
	m.items[p.BookingID] = &cp
	return &cp, nil
}

func (m *memPayments) MarkFailed(_ context.Context, bookingID int64) error {
	p, ok := m.items[bookingID]
	if !ok || p.Status != domain.PaymentPending {
		return paymentRepo.ErrStatusMismatch
	}
	p.Status = domain.PaymentFailed
	return nil
}

func (m *memPayments) MarkRefunded(_ context.Context, bookingID int64, refundID string) error {
	p, ok := m.items[bookingID]
	if !ok || p.Status != domain.PaymentSucceeded {
		return paymentRepo.ErrStatusMismatch
	}
	p.Status = domain.PaymentRefunded
	p.RefundID = &refundID
	return nil
}

type memVerifications struct {
	items map[int64]*domain.BookingVerification
}

func newMemVerifications() *memVerifications {
	return &memVerifications{items: map[int64]*domain.BookingVerification{}}
}

func (m *memVerifications) Upsert(_ context.Context, v *domain.BookingVerification) (*domain.BookingVerification, error) {
	cp := *v
	m.items[v.BookingID] = &cp
	return &cp, nil
}

func (m *memVerifications) GetByToken(_ context.Context, token string) (*domain.BookingVerification, error) {
	for _, v := range m.items {
		if v.Token == token {
			cp := *v
			return &cp, nil
		}
	}
	return nil, verificationRepo.ErrVerificationNotFound
}

func (m *memVerifications) MarkVerified(_ context.Context, bookingID int64, at time.Time) (bool, error) {
	v, ok := m.items[bookingID]
	if !ok {
		return false, verificationRepo.ErrVerificationNotFound
	}
	if v.IsVerified {
		return false, nil
	}
	v.IsVerified = true
	v.VerifiedAt = &at
	return true, nil
}

func (m *memVerifications) RecordDocumentAttempt(_ context.Context, bookingID int64, at time.Time) error {
	v, ok := m.items[bookingID]
	if !ok {
		return verificationRepo.ErrVerificationNotFound
	}
	v.DocumentAttemptAt = &at
	return nil
}

type fakeCars struct {
	cars map[int64]*domain.Car
}

func (f *fakeCars) GetByID(_ context.Context, id int64) (*domain.Car, error) {
	c, ok := f.cars[id]
	if !ok {
		return nil, carRepo.ErrCarNotFound
	}
	return c, nil
}

type fakeAvailability struct {
	err   error
	calls int
}

func (f *fakeAvailability) CheckAvailable(context.Context, int64, domain.Window, *int64) error {
	f.calls++
	return f.err
}

type fakeGateway struct {
	checkoutFn func(ctx context.Context, req payments.CheckoutRequest) (*payments.Checkout, error)
	refundFn   func(ctx context.Context, bookingID int64, externalPaymentID string) (string, error)
	refunds    int
}

func (f *fakeGateway) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.Checkout, error) {
	if f.checkoutFn != nil {
		return f.checkoutFn(ctx, req)
	}
	return &payments.Checkout{RedirectURL: "https://pay.example/cs_1", ExternalSessionID: "cs_1"}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, bookingID int64, externalPaymentID string) (string, error) {
	f.refunds++
	if f.refundFn != nil {
		return f.refundFn(ctx, bookingID, externalPaymentID)
	}
	return "re_1", nil
}

type recordingNotifier struct {
	messages []notifier.Message
}

func (n *recordingNotifier) Publish(_ context.Context, msg notifier.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

type transitionCounter struct {
	seen []string
}

func (t *transitionCounter) IncTransition(from, to string) {
	t.seen = append(t.seen, from+"->"+to)
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var errGatewayDown = errors.New("gateway unavailable")

func contains(statuses []domain.BookingStatus, s domain.BookingStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
