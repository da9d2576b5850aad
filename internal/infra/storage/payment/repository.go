package payment

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

var paymentColumns = []string{
	"id",
	"booking_id",
	"amount",
	"currency",
	"status",
	"method",
	"external_session_id",
	"external_payment_id",
	"refund_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий оплат
// У бронирования не больше одной оплаты (unique booking_id)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория оплат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBookingID получает оплату бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// UpsertPending создает или переоткрывает оплату со ссылкой на новую платежную сессию
// Успешную или возвращенную оплату переоткрыть нельзя - возвращается ErrAlreadySucceeded
func (r *Repository) UpsertPending(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns("booking_id", "amount", "currency", "status", "method", "external_session_id").
		Values(p.BookingID, p.Amount, p.Currency, domain.PaymentPending, p.Method, p.ExternalSessionID).
		Suffix(
			"ON CONFLICT (booking_id) DO UPDATE SET "+
				"amount = EXCLUDED.amount, currency = EXCLUDED.currency, status = EXCLUDED.status, "+
				"method = EXCLUDED.method, external_session_id = EXCLUDED.external_session_id, updated_at = NOW() "+
				"WHERE payments.status IN (?, ?) "+
				"RETURNING id, created_at, updated_at",
			domain.PaymentPending, domain.PaymentFailed,
		).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertPending - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadySucceeded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertPending - execute insert: %v", ErrExecQuery, err)
	}

	p.Status = domain.PaymentPending
	return p, nil
}

// MarkSucceeded фиксирует успешную оплату бронирования
// Повторное уведомление об успешной оплате возвращает ErrAlreadySucceeded
func (r *Repository) MarkSucceeded(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns("booking_id", "amount", "currency", "status", "method", "external_session_id", "external_payment_id").
		Values(p.BookingID, p.Amount, p.Currency, domain.PaymentSucceeded, p.Method, p.ExternalSessionID, p.ExternalPaymentID).
		Suffix(
			"ON CONFLICT (booking_id) DO UPDATE SET "+
				"status = EXCLUDED.status, method = EXCLUDED.method, "+
				"external_session_id = COALESCE(EXCLUDED.external_session_id, payments.external_session_id), "+
				"external_payment_id = EXCLUDED.external_payment_id, updated_at = NOW() "+
				"WHERE payments.status IN (?, ?) "+
				"RETURNING id, created_at, updated_at",
			domain.PaymentPending, domain.PaymentFailed,
		).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: MarkSucceeded - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadySucceeded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: MarkSucceeded - execute insert: %v", ErrExecQuery, err)
	}

	p.Status = domain.PaymentSucceeded
	return p, nil
}

// MarkFailed переводит ожидающую оплату в FAILED
func (r *Repository) MarkFailed(ctx context.Context, bookingID int64) error {
	return r.transition(ctx, "MarkFailed", bookingID, domain.PaymentPending, domain.PaymentFailed, nil)
}

// MarkRefunded переводит успешную оплату в REFUNDED
func (r *Repository) MarkRefunded(ctx context.Context, bookingID int64, refundID string) error {
	return r.transition(ctx, "MarkRefunded", bookingID, domain.PaymentSucceeded, domain.PaymentRefunded, &refundID)
}

// ListRefundable возвращает успешные онлайн оплаты отмененных или отклоненных бронирований,
// которые не менялись с момента updatedBefore. Оплаты на стойке возвращаются вручную
func (r *Repository) ListRefundable(ctx context.Context, updatedBefore time.Time, limit uint64) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := make([]string, len(paymentColumns))
	for i, c := range paymentColumns {
		columns[i] = "p." + c
	}

	query, args, err := psqlbuilder.Select(columns...).
		From("payments p").
		Join("bookings b ON b.id = p.booking_id").
		Where(squirrel.Eq{"p.status": domain.PaymentSucceeded}).
		Where(squirrel.NotEq{"p.external_payment_id": nil}).
		Where(squirrel.Eq{"b.status": []string{string(domain.StatusCancelled), string(domain.StatusRejected)}}).
		Where(squirrel.LtOrEq{"b.updated_at": updatedBefore}).
		OrderBy("b.updated_at").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListRefundable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRefundable - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListRefundable - scan payment: %v", ErrScanRow, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRefundable - rows iteration: %v", ErrScanRow, err)
	}

	return payments, nil
}

func (r *Repository) transition(ctx context.Context, op string, bookingID int64, from, to domain.PaymentStatus, refundID *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("payments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": from})

	if refundID != nil {
		builder = builder.Set("refund_id", *refundID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrStatusMismatch
	}

	return nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p                              domain.Payment
		sessionID, paymentID, refundID sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.Method,
		&sessionID,
		&paymentID,
		&refundID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		p.ExternalSessionID = &sessionID.String
	}
	if paymentID.Valid {
		p.ExternalPaymentID = &paymentID.String
	}
	if refundID.Valid {
		p.RefundID = &refundID.String
	}

	return &p, nil
}
