package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
)

type fakeBookings struct {
	bookings []*domain.Booking
	err      error
	filters  []bookingRepo.OverlapFilter
}

// FindOverlapping ведет себя как SQL запрос репозитория
func (f *fakeBookings) FindOverlapping(_ context.Context, filter bookingRepo.OverlapFilter) ([]*domain.Booking, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Booking
	for _, b := range f.bookings {
		if filter.CarID != nil && b.CarID != *filter.CarID {
			continue
		}
		if filter.ExcludeID != nil && b.ID == *filter.ExcludeID {
			continue
		}
		if !b.Status.IsActive() {
			continue
		}
		if b.Window().Overlaps(filter.Window) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeCars struct {
	cars []*domain.Car
}

func (f *fakeCars) ListBookable(context.Context) ([]*domain.Car, error) {
	return f.cars, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02T15:04", s)
	require.NoError(t, err)
	return tm
}

func TestCheckAvailable_OverlapReturnsConflicts(t *testing.T) {
	existing := &domain.Booking{
		ID: 1, CarID: 1, Status: domain.StatusConfirmed,
		StartDate: at(t, "2024-06-01T10:00"), EndDate: at(t, "2024-06-03T10:00"),
	}
	svc := NewService(&fakeBookings{bookings: []*domain.Booking{existing}}, &fakeCars{}, 0, nopLogger{})

	err := svc.CheckAvailable(context.Background(), 1,
		domain.Window{Start: at(t, "2024-06-02T09:00"), End: at(t, "2024-06-04T09:00")}, nil)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, int64(1), conflict.Conflicts[0].ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "ALREADY_EXISTS", domain.Code(err))
}

func TestCheckAvailable_BackToBackAndInactive(t *testing.T) {
	bookings := []*domain.Booking{
		{ID: 1, CarID: 1, Status: domain.StatusConfirmed, StartDate: at(t, "2024-06-01T10:00"), EndDate: at(t, "2024-06-03T10:00")},
		{ID: 2, CarID: 1, Status: domain.StatusCancelled, StartDate: at(t, "2024-06-03T10:00"), EndDate: at(t, "2024-06-05T10:00")},
		{ID: 3, CarID: 1, Status: domain.StatusDraft, StartDate: at(t, "2024-06-03T10:00"), EndDate: at(t, "2024-06-05T10:00")},
	}
	svc := NewService(&fakeBookings{bookings: bookings}, &fakeCars{}, 0, nopLogger{})

	err := svc.CheckAvailable(context.Background(), 1,
		domain.Window{Start: at(t, "2024-06-03T10:00"), End: at(t, "2024-06-04T10:00")}, nil)

	assert.NoError(t, err)
}

func TestCheckAvailable_ExcludesSelf(t *testing.T) {
	self := &domain.Booking{ID: 5, CarID: 1, Status: domain.StatusPending,
		StartDate: at(t, "2024-06-01T10:00"), EndDate: at(t, "2024-06-03T10:00")}
	svc := NewService(&fakeBookings{bookings: []*domain.Booking{self}}, &fakeCars{}, 0, nopLogger{})

	id := int64(5)
	err := svc.CheckAvailable(context.Background(), 1,
		domain.Window{Start: at(t, "2024-06-01T12:00"), End: at(t, "2024-06-03T12:00")}, &id)

	assert.NoError(t, err)
}

func TestCheckAvailable_RepositoryError(t *testing.T) {
	svc := NewService(&fakeBookings{err: errors.New("db down")}, &fakeCars{}, 0, nopLogger{})

	err := svc.CheckAvailable(context.Background(), 1,
		domain.Window{Start: at(t, "2024-06-01T10:00"), End: at(t, "2024-06-02T10:00")}, nil)

	assert.ErrorIs(t, err, ErrInternal)
}

func TestListAvailableCars_AppliesBuffer(t *testing.T) {
	bookings := []*domain.Booking{
		// заканчивается за 12 часов до запрошенного окна: попадает в буфер 24h
		{ID: 1, CarID: 1, Status: domain.StatusConfirmed, StartDate: at(t, "2024-06-01T10:00"), EndDate: at(t, "2024-06-02T22:00")},
		// заканчивается за 2 дня до окна
		{ID: 2, CarID: 2, Status: domain.StatusConfirmed, StartDate: at(t, "2024-05-28T10:00"), EndDate: at(t, "2024-05-31T10:00")},
	}
	cars := []*domain.Car{{ID: 1}, {ID: 2}, {ID: 3}}
	repo := &fakeBookings{bookings: bookings}
	svc := NewService(repo, &fakeCars{cars: cars}, 24*time.Hour, nopLogger{})

	available, err := svc.ListAvailableCars(context.Background(),
		domain.Window{Start: at(t, "2024-06-03T10:00"), End: at(t, "2024-06-05T10:00")})

	require.NoError(t, err)
	var ids []int64
	for _, c := range available {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)
	require.Len(t, repo.filters, 1)
	assert.Nil(t, repo.filters[0].CarID)
	assert.Equal(t, at(t, "2024-06-02T10:00"), repo.filters[0].Window.Start)
}

func TestListAvailableCars_InvalidWindow(t *testing.T) {
	svc := NewService(&fakeBookings{}, &fakeCars{}, 0, nopLogger{})

	_, err := svc.ListAvailableCars(context.Background(),
		domain.Window{Start: at(t, "2024-06-05T10:00"), End: at(t, "2024-06-03T10:00")})

	assert.ErrorIs(t, err, domain.ErrBadUserInput)
}
