package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/psqlbuilder"
)

var verificationColumns = []string{
	"id",
	"booking_id",
	"token",
	"expires_at",
	"is_verified",
	"verified_at",
	"document_attempt_at",
	"created_at",
}

// Repository репозиторий токенов подтверждения бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает токен подтверждения или выпускает новый для того же бронирования
// Уже подтвержденную запись не трогает
func (r *Repository) Upsert(ctx context.Context, v *domain.BookingVerification) (*domain.BookingVerification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_verifications").
		Columns("booking_id", "token", "expires_at", "is_verified", "verified_at").
		Values(v.BookingID, v.Token, v.ExpiresAt, v.IsVerified, v.VerifiedAt).
		Suffix("ON CONFLICT (booking_id) DO UPDATE SET " +
			"token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, " +
			"is_verified = booking_verifications.is_verified OR EXCLUDED.is_verified, " +
			"verified_at = COALESCE(booking_verifications.verified_at, EXCLUDED.verified_at) " +
			"RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return v, nil
}

// GetByToken получает запись подтверждения по токену
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.BookingVerification, error) {
	return r.getOne(ctx, "GetByToken", squirrel.Eq{"token": token})
}

// GetByBookingID получает запись подтверждения бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingVerification, error) {
	return r.getOne(ctx, "GetByBookingID", squirrel.Eq{"booking_id": bookingID})
}

// MarkVerified отмечает бронирование подтвержденным
// Возвращает false, если запись уже была подтверждена ранее
func (r *Repository) MarkVerified(ctx context.Context, bookingID int64, at time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_verifications").
		Set("is_verified", true).
		Set("verified_at", at).
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"is_verified": false}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: MarkVerified - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkVerified - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkVerified - rows affected: %v", ErrExecQuery, err)
	}

	return affected > 0, nil
}

// RecordDocumentAttempt запоминает время начала загрузки документов по бронированию
func (r *Repository) RecordDocumentAttempt(ctx context.Context, bookingID int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_verifications").
		Set("document_attempt_at", at).
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordDocumentAttempt - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordDocumentAttempt - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordDocumentAttempt - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrVerificationNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.BookingVerification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(verificationColumns...).
		From("booking_verifications").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var (
		v                     domain.BookingVerification
		verifiedAt, attemptAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.BookingID,
		&v.Token,
		&v.ExpiresAt,
		&v.IsVerified,
		&verifiedAt,
		&attemptAt,
		&v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan verification: %v", ErrScanRow, op, err)
	}

	if verifiedAt.Valid {
		v.VerifiedAt = &verifiedAt.Time
	}
	if attemptAt.Valid {
		v.DocumentAttemptAt = &attemptAt.Time
	}

	return &v, nil
}
