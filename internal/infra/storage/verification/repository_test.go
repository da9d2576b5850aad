package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkVerified_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	update := regexp.QuoteMeta("UPDATE booking_verifications SET is_verified = $1, verified_at = $2 WHERE booking_id = $3 AND is_verified = $4")
	mock.ExpectExec(update).WithArgs(true, at, int64(5), false).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(true, at, int64(5), false).WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.MarkVerified(context.Background(), 5, at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkVerified(context.Background(), 5, at)
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	expires := time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_verifications WHERE token = $1")).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(verificationColumns).
			AddRow(int64(1), int64(5), "tok", expires, false, nil, nil, expires.Add(-24*time.Hour)))

	v, err := repo.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.BookingID)
	assert.Nil(t, v.VerifiedAt)
	assert.Equal(t, expires, v.ExpiresAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_verifications WHERE token = $1")).
		WillReturnRows(sqlmock.NewRows(verificationColumns))
	_, err = repo.GetByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}
