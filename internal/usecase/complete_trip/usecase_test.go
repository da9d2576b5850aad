package complete_trip

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/txmanager"
)

type bookingStore struct {
	*bookingRepo.Repository
	booking *domain.Booking
}

func (s *bookingStore) GetByID(context.Context, int64) (*domain.Booking, error) {
	cp := *s.booking
	return &cp, nil
}

type transitionCounter struct {
	seen []string
}

func (c *transitionCounter) IncTransition(from, to string) {
	c.seen = append(c.seen, from+"->"+to)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var staff = domain.Actor{UserID: 1, Role: domain.RoleAdmin}

func newUseCase(t *testing.T, booking *domain.Booking) (*UseCase, sqlmock.Sqlmock, *transitionCounter) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil, "test")
	counter := &transitionCounter{}
	uc := NewUseCase(
		&bookingStore{Repository: bookingRepo.NewRepository(wrapped), booking: booking},
		carRepo.NewRepository(wrapped),
		txmanager.NewTransactionManager(wrapped),
		counter,
		nopLogger{},
	)
	return uc, mock, counter
}

func ongoing() *domain.Booking {
	return &domain.Booking{ID: 10, CarID: 3, Status: domain.StatusOngoing, StartOdometer: ptr.Ptr(int64(12000))}
}

func TestExecute_CompletesTripAtomically(t *testing.T) {
	uc, mock, counter := newUseCase(t, ongoing())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE cars SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := uc.Execute(context.Background(), &Request{
		Actor: staff, BookingID: 10, EndOdometer: 12450, DamageFee: 80, ExtraKmFee: 12.5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	assert.Equal(t, domain.CarMaintenance, resp.CarStatus)
	assert.Equal(t, 80.0, resp.Booking.DamageFee)
	assert.Equal(t, []string{"ONGOING->COMPLETED"}, counter.seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CarNotRentedRollsBack(t *testing.T) {
	uc, mock, counter := newUseCase(t, ongoing())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE cars SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 10, EndOdometer: 12450})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, counter.seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Guards(t *testing.T) {
	confirmed := ongoing()
	confirmed.Status = domain.StatusConfirmed

	tests := []struct {
		name    string
		booking *domain.Booking
		req     Request
		wantErr error
	}{
		{"customer", ongoing(), Request{Actor: domain.Actor{UserID: 7, Role: domain.RoleUser}, BookingID: 10}, ErrStaffOnly},
		{"not ongoing", confirmed, Request{Actor: staff, BookingID: 10, EndOdometer: 13000}, ErrInvalidStatus},
		{"odometer rollback", ongoing(), Request{Actor: staff, BookingID: 10, EndOdometer: 11000}, ErrOdometerRollback},
		{"negative fee", ongoing(), Request{Actor: staff, BookingID: 10, EndOdometer: 13000, DamageFee: -1}, domain.ErrBadUserInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mock, _ := newUseCase(t, tt.booking)

			_, err := uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
