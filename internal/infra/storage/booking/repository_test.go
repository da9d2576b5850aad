package booking

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), db, mock
}

func bookingRow(id int64, status domain.BookingStatus, start, end time.Time) *sqlmock.Rows {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(bookingColumns).AddRow(
		id, int64(7), nil, nil, nil, int64(1), "RENTAL", start, end, "10:00", nil,
		100.0, 10.0, 110.0, 200.0, 0.0, 0.0, nil, nil, string(status), false, false,
		nil, nil, now, now,
	)
}

func TestCreate_Success(t *testing.T) {
	repo, _, mock := newRepo(t)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	b := &domain.Booking{
		Subject:   domain.UserSubject(7),
		CarID:     1,
		Kind:      domain.KindRental,
		StartDate: now.Add(24 * time.Hour),
		EndDate:   now.Add(48 * time.Hour),
		Status:    domain.StatusDraft,
	}
	created, err := repo.Create(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExclusionViolation(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "23P01"})

	_, err := repo.Create(context.Background(), &domain.Booking{Subject: domain.UserSubject(7)})

	assert.ErrorIs(t, err, ErrOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)

	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_ScansGuestAndTimes(t *testing.T) {
	repo, _, mock := newRepo(t)
	start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(bookingColumns).AddRow(
		int64(9), nil, "Ann", "+100", nil, int64(1), "RENTAL", start, start.Add(48*time.Hour), "14:30", "10:00",
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, int64(1200), nil, "VERIFIED", true, true,
		nil, nil, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).WithArgs(int64(9)).WillReturnRows(rows)

	b, err := repo.GetByID(context.Background(), 9)

	require.NoError(t, err)
	require.NotNil(t, b.Subject.Guest)
	assert.Nil(t, b.Subject.UserID)
	assert.Equal(t, "Ann", b.Subject.Guest.Name)
	assert.Equal(t, "14:30", b.PickupTime.String())
	assert.Equal(t, int64(1200), *b.StartOdometer)
	assert.True(t, b.IsWalkIn)
}

func TestFindOverlapping_LocksInsideTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM bookings WHERE start_date < \$1 AND end_date > \$2 AND car_id = \$3 AND status IN \(\$4,\$5,\$6,\$7\) ORDER BY start_date FOR UPDATE`).
		WillReturnRows(bookingRow(1, domain.StatusConfirmed, start, end))
	mock.ExpectRollback()

	tx, err := dbmetrics.Wrap(db, nil, "test").BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	carID := int64(1)
	found, err := repo.FindOverlapping(ctx, OverlapFilter{
		CarID:    &carID,
		Window:   domain.Window{Start: start.Add(23 * time.Hour), End: end.Add(23 * time.Hour)},
		Statuses: domain.ActiveStatuses,
	})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.StatusConfirmed, found[0].Status)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMany_ReturnsOnlyTransitioned(t *testing.T) {
	repo, _, mock := newRepo(t)
	at := time.Date(2024, 6, 1, 11, 1, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	ids, err := repo.CancelMany(context.Background(), []int64{3, 4}, domain.StatusPending, "expired", at)

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMany_EmptyIsNoop(t *testing.T) {
	repo, _, mock := newRepo(t)

	ids, err := repo.CancelMany(context.Background(), nil, domain.StatusPending, "expired", time.Now())

	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_StatusGuard(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1 AND status IN ($2,$3)")).
		WithArgs(int64(8), "DRAFT", "CANCELLED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 8, domain.DeletableStatuses)

	assert.ErrorIs(t, err, ErrStatusMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingCreatedBefore(t *testing.T) {
	repo, _, mock := newRepo(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	attempt := created.Add(50 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN booking_verifications v ON v.booking_id = b.id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "document_attempt_at"}).
			AddRow(int64(1), created, nil).
			AddRow(int64(2), created, attempt))

	candidates, err := repo.ListPendingCreatedBefore(context.Background(), created.Add(time.Hour), 100)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Nil(t, candidates[0].DocumentAttemptAt)
	assert.Equal(t, attempt, *candidates[1].DocumentAttemptAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnpaidVerified_NumbersSubqueryPlaceholders(t *testing.T) {
	repo, _, mock := newRepo(t)
	at := time.Date(2024, 6, 1, 12, 16, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE bookings SET status = $1, cancellation_reason = $2, cancelled_at = $3, updated_at = NOW() "+
			"WHERE id IN (SELECT b.id FROM bookings b WHERE b.status = $4 "+
			"AND b.updated_at <= NOW() - make_interval(secs => $5) "+
			"AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id AND p.status = $6) "+
			"ORDER BY b.updated_at LIMIT 10) AND status = $7 RETURNING id",
	)).
		WithArgs(
			domain.StatusCancelled, "payment timed out", at,
			domain.StatusVerified, float64(900), domain.PaymentSucceeded,
			domain.StatusVerified,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)).AddRow(int64(6)))

	ids, err := repo.CancelUnpaidVerified(context.Background(), 15*time.Minute, "payment timed out", at, 10)

	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDraftsCreatedBefore(t *testing.T) {
	repo, _, mock := newRepo(t)
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE status = $1 AND created_at <= $2")).
		WithArgs(domain.StatusDraft, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteDraftsCreatedBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTrip_GuardsSourceStatus(t *testing.T) {
	query := regexp.QuoteMeta(
		"UPDATE bookings SET status = $1, start_odometer = $2, updated_at = NOW() WHERE id = $3 AND status IN ($4,$5)",
	)

	t.Run("moved", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).
			WithArgs(domain.StatusOngoing, int64(12000), int64(4), "VERIFIED", "CONFIRMED").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.StartTrip(context.Background(), 4, 12000))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status changed", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.StartTrip(context.Background(), 4, 12000)

		assert.ErrorIs(t, err, ErrStatusMismatch)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompleteTrip_GuardsOngoing(t *testing.T) {
	query := regexp.QuoteMeta(
		"UPDATE bookings SET status = $1, end_odometer = $2, damage_fee = $3, extra_km_fee = $4, updated_at = NOW() " +
			"WHERE id = $5 AND status = $6",
	)
	completion := TripCompletion{EndOdometer: 12500, DamageFee: 50, ExtraKmFee: 12.5}

	t.Run("completed", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).
			WithArgs(domain.StatusCompleted, int64(12500), 50.0, 12.5, int64(4), domain.StatusOngoing).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.CompleteTrip(context.Background(), 4, completion))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not ongoing", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.CompleteTrip(context.Background(), 4, completion)

		assert.ErrorIs(t, err, ErrStatusMismatch)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate_GuardsReadStatus(t *testing.T) {
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	booking := &domain.Booking{
		ID:            11,
		StartDate:     start,
		EndDate:       start.Add(48 * time.Hour),
		BasePrice:     100,
		TaxAmount:     10,
		TotalPrice:    110,
		DepositAmount: 200,
		Status:        domain.StatusPending,
	}
	query := regexp.QuoteMeta(
		"UPDATE bookings SET start_date = $1, end_date = $2, pickup_time = $3, return_time = $4, " +
			"base_price = $5, tax_amount = $6, total_price = $7, deposit_amount = $8, damage_fee = $9, " +
			"extra_km_fee = $10, updated_at = NOW() WHERE id = $11 AND status = $12",
	)

	t.Run("saved", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).
			WithArgs(booking.StartDate, booking.EndDate, sqlmock.AnyArg(), sqlmock.AnyArg(),
				100.0, 10.0, 110.0, 200.0, 0.0, 0.0, int64(11), domain.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), booking))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status changed", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), booking), ErrStatusMismatch)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overlap", func(t *testing.T) {
		repo, _, mock := newRepo(t)
		mock.ExpectExec(query).WillReturnError(&pq.Error{Code: "23P01"})

		assert.ErrorIs(t, repo.Update(context.Background(), booking), ErrOverlap)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
