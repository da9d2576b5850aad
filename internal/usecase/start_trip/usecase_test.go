package start_trip

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/txmanager"
)

// bookingStore читает бронирование из памяти, пишет через настоящий репозиторий
type bookingStore struct {
	*bookingRepo.Repository
	booking *domain.Booking
}

func (s *bookingStore) GetByID(context.Context, int64) (*domain.Booking, error) {
	if s.booking == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *s.booking
	return &cp, nil
}

type carStore struct {
	*carRepo.Repository
	car *domain.Car
}

func (s *carStore) GetByID(context.Context, int64) (*domain.Car, error) {
	cp := *s.car
	return &cp, nil
}

type fakePayments struct {
	payment *domain.Payment
}

func (f *fakePayments) GetByBookingID(context.Context, int64) (*domain.Payment, error) {
	if f.payment == nil {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return f.payment, nil
}

type fakeDocuments struct {
	status domain.DocumentStatus
	err    error
	calls  int
}

func (f *fakeDocuments) GetUserStatus(context.Context, int64) (domain.DocumentStatus, error) {
	f.calls++
	return f.status, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var staff = domain.Actor{UserID: 1, Role: domain.RoleAdmin}

type env struct {
	uc        *UseCase
	mock      sqlmock.Sqlmock
	bookings  *bookingStore
	cars      *carStore
	payments  *fakePayments
	documents *fakeDocuments
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil, "test")
	e := &env{
		mock: mock,
		bookings: &bookingStore{
			Repository: bookingRepo.NewRepository(wrapped),
			booking: &domain.Booking{
				ID: 10, CarID: 3, Subject: domain.UserSubject(7), Status: domain.StatusConfirmed,
			},
		},
		cars: &carStore{
			Repository: carRepo.NewRepository(wrapped),
			car:        &domain.Car{ID: 3, Status: domain.CarAvailable},
		},
		payments:  &fakePayments{payment: &domain.Payment{BookingID: 10, Status: domain.PaymentSucceeded}},
		documents: &fakeDocuments{status: domain.DocumentsApproved},
	}
	e.uc = NewUseCase(e.bookings, e.cars, e.payments, e.documents,
		txmanager.NewTransactionManager(wrapped), nil, nopLogger{})
	return e
}

func TestExecute_StartsTripAtomically(t *testing.T) {
	e := newEnv(t)

	e.mock.ExpectBegin()
	e.mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectExec("UPDATE cars SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectCommit()

	resp, err := e.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 10, StartOdometer: 12000})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOngoing, resp.Booking.Status)
	assert.Equal(t, domain.CarRented, resp.CarStatus)
	assert.Equal(t, int64(12000), *resp.Booking.StartOdometer)
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestExecute_CarWriteFailureRollsBack(t *testing.T) {
	e := newEnv(t)

	e.mock.ExpectBegin()
	e.mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectExec("UPDATE cars SET status").WillReturnError(errors.New("connection reset"))
	e.mock.ExpectRollback()

	_, err := e.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 10, StartOdometer: 12000})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, "INTERNAL_ERROR", domain.Code(err))
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestExecute_DocumentsPendingIsRejected(t *testing.T) {
	e := newEnv(t)
	e.documents.status = domain.DocumentsPending

	_, err := e.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 10})
	assert.ErrorIs(t, err, ErrDocumentsNotApproved)
	assert.ErrorIs(t, err, domain.ErrBadUserInput)
	// ни одной записи в базу
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestExecute_WalkInSkipsDocuments(t *testing.T) {
	e := newEnv(t)
	e.bookings.booking.Subject = domain.GuestSubject(domain.GuestContact{Name: "Ann", Phone: "+100"})
	e.bookings.booking.IsWalkIn = true
	e.bookings.booking.Status = domain.StatusVerified
	e.documents.status = domain.DocumentsPending

	e.mock.ExpectBegin()
	e.mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectExec("UPDATE cars SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectCommit()

	_, err := e.uc.Execute(context.Background(), &Request{Actor: staff, BookingID: 10})
	require.NoError(t, err)
	assert.Zero(t, e.documents.calls)
}

func TestExecute_Guards(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(e *env)
		req     Request
		wantErr error
	}{
		{
			name:    "customer cannot start",
			req:     Request{Actor: domain.Actor{UserID: 7, Role: domain.RoleUser}, BookingID: 10},
			wantErr: ErrStaffOnly,
		},
		{
			name:    "negative odometer",
			req:     Request{Actor: staff, BookingID: 10, StartOdometer: -1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "pending booking",
			prepare: func(e *env) { e.bookings.booking.Status = domain.StatusPending },
			req:     Request{Actor: staff, BookingID: 10},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unpaid",
			prepare: func(e *env) { e.payments.payment = nil },
			req:     Request{Actor: staff, BookingID: 10},
			wantErr: ErrPaymentRequired,
		},
		{
			name:    "car in maintenance",
			prepare: func(e *env) { e.cars.car.Status = domain.CarMaintenance },
			req:     Request{Actor: staff, BookingID: 10},
			wantErr: ErrCarNotReady,
		},
		{
			name:    "unknown booking",
			prepare: func(e *env) { e.bookings.booking = nil },
			req:     Request{Actor: staff, BookingID: 10},
			wantErr: ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			if tt.prepare != nil {
				tt.prepare(e)
			}

			_, err := e.uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, e.mock.ExpectationsWereMet())
		})
	}
}
