package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02T15:04", s)
	require.NoError(t, err)
	return tm
}

func TestWindow_Overlaps(t *testing.T) {
	existing := Window{Start: mustTime(t, "2024-06-01T10:00"), End: mustTime(t, "2024-06-03T10:00")}

	tests := []struct {
		name  string
		other Window
		want  bool
	}{
		{"new start inside", Window{mustTime(t, "2024-06-02T09:00"), mustTime(t, "2024-06-04T09:00")}, true},
		{"new end inside", Window{mustTime(t, "2024-05-31T09:00"), mustTime(t, "2024-06-01T11:00")}, true},
		{"new contains existing", Window{mustTime(t, "2024-05-30T00:00"), mustTime(t, "2024-06-05T00:00")}, true},
		{"ends exactly at start", Window{mustTime(t, "2024-05-31T10:00"), mustTime(t, "2024-06-01T10:00")}, false},
		{"starts exactly at end", Window{mustTime(t, "2024-06-03T10:00"), mustTime(t, "2024-06-04T10:00")}, false},
		{"disjoint", Window{mustTime(t, "2024-07-01T10:00"), mustTime(t, "2024-07-02T10:00")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(existing))
		})
	}
}

func TestValidateWindow(t *testing.T) {
	now := mustTime(t, "2024-06-01T08:00")
	start := mustTime(t, "2024-06-01T10:00")

	assert.NoError(t, ValidateWindow(Window{start, start.Add(2 * time.Hour)}, now, time.Hour))

	err := ValidateWindow(Window{start, start}, now, time.Hour)
	assert.ErrorIs(t, err, ErrBadUserInput)

	err = ValidateWindow(Window{start, start.Add(-time.Hour)}, now, time.Hour)
	assert.ErrorIs(t, err, ErrBadUserInput)

	err = ValidateWindow(Window{start, start.Add(119 * time.Minute)}, now, time.Hour)
	assert.ErrorIs(t, err, ErrBadUserInput)

	err = ValidateWindow(Window{now.Add(30 * time.Minute), now.Add(5 * time.Hour)}, now, time.Hour)
	assert.ErrorIs(t, err, ErrBadUserInput)
}

func TestTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusPending))
	assert.True(t, StatusPending.CanTransitionTo(StatusVerified))
	assert.True(t, StatusVerified.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusOngoing))
	assert.True(t, StatusVerified.CanTransitionTo(StatusOngoing))
	assert.True(t, StatusOngoing.CanTransitionTo(StatusCompleted))

	assert.False(t, StatusOngoing.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusDraft.CanTransitionTo(StatusConfirmed))

	for _, s := range []BookingStatus{StatusCompleted, StatusCancelled, StatusRejected, StatusExpired} {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsActive(), s)
	}
	for _, s := range ActiveStatuses {
		assert.False(t, s.IsTerminal(), s)
	}
	assert.False(t, StatusDraft.IsActive())

	assert.ElementsMatch(t,
		[]BookingStatus{StatusDraft, StatusPending, StatusVerified, StatusConfirmed},
		StatusesFrom(StatusCancelled))
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseBookingStatus("booked")
	assert.ErrorIs(t, err, ErrBadUserInput)
}

func TestSubject_Validate(t *testing.T) {
	assert.NoError(t, UserSubject(7).Validate())
	assert.NoError(t, GuestSubject(GuestContact{Name: "Ann", Phone: "+100"}).Validate())

	both := Subject{UserID: ptr.Ptr[int64](7), Guest: &GuestContact{Name: "Ann", Phone: "+100"}}
	assert.ErrorIs(t, both.Validate(), ErrBadUserInput)
	assert.ErrorIs(t, Subject{}.Validate(), ErrBadUserInput)
	assert.ErrorIs(t, GuestSubject(GuestContact{Name: "Ann"}).Validate(), ErrBadUserInput)
}

func TestPendingDeadline(t *testing.T) {
	created := mustTime(t, "2024-06-01T10:00")
	timeout, grace := 60*time.Minute, 15*time.Minute

	assert.Equal(t, created.Add(time.Hour), PendingDeadline(created, nil, timeout, grace))

	early := created.Add(30 * time.Minute)
	assert.Equal(t, created.Add(time.Hour), PendingDeadline(created, &early, timeout, grace))

	late := created.Add(50 * time.Minute)
	assert.Equal(t, created.Add(75*time.Minute), PendingDeadline(created, &late, timeout, grace))

	assert.False(t, IsPendingExpired(created, nil, created.Add(59*time.Minute), timeout, grace))
	assert.True(t, IsPendingExpired(created, nil, created.Add(61*time.Minute), timeout, grace))
	assert.False(t, IsPendingExpired(created, &late, created.Add(61*time.Minute), timeout, grace))
}

func TestQuoteRental(t *testing.T) {
	start := mustTime(t, "2024-07-01T10:00")

	q := QuoteRental(Window{start, start.Add(25 * time.Hour)}, 50, 0.1, 200, KindRental)
	assert.Equal(t, 2, q.Days)
	assert.Equal(t, 100.0, q.BasePrice)
	assert.Equal(t, 10.0, q.TaxAmount)
	assert.Equal(t, 110.0, q.TotalPrice)
	assert.Equal(t, 200.0, q.DepositAmount)

	q = QuoteRental(Window{start, start.Add(3 * time.Hour)}, 50, 0.1, 200, KindRental)
	assert.Equal(t, 1, q.Days)

	q = QuoteRental(Window{start, start.Add(48 * time.Hour)}, 50, 0.1, 200, KindReplacement)
	assert.Zero(t, q.TotalPrice)
	assert.Zero(t, q.DepositAmount)
}

func TestBooking_PickupAt(t *testing.T) {
	b := &Booking{StartDate: mustTime(t, "2024-06-02T00:00")}
	assert.Equal(t, b.StartDate, b.PickupAt())

	b.PickupTime = ptr.Ptr(types.TimeString("14:30"))
	assert.Equal(t, mustTime(t, "2024-06-02T14:30"), b.PickupAt())
}

func TestErrorCodes(t *testing.T) {
	err := NewError(ErrForbidden, "cancellation window has passed")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "FORBIDDEN", Code(err))
	assert.Equal(t, "cancellation window has passed", PublicMessage(err))

	raw := errors.New("pq: connection reset")
	assert.Equal(t, "INTERNAL_ERROR", Code(raw))
	assert.Equal(t, "internal error", PublicMessage(raw))
}
