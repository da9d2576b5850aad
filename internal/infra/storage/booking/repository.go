package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/pgerr"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/psqlbuilder"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

var bookingColumns = []string{
	"id",
	"user_id",
	"guest_name",
	"guest_phone",
	"guest_email",
	"car_id",
	"kind",
	"start_date",
	"end_date",
	"pickup_time",
	"return_time",
	"base_price",
	"tax_amount",
	"total_price",
	"deposit_amount",
	"damage_fee",
	"extra_km_fee",
	"start_odometer",
	"end_odometer",
	"status",
	"created_by_staff",
	"is_walk_in",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Нарушение ограничения на пересечение активных бронирований возвращается как ErrOverlap
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var guestName, guestPhone, guestEmail *string
	if g := booking.Subject.Guest; g != nil {
		guestName, guestPhone, guestEmail = &g.Name, &g.Phone, g.Email
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"guest_name",
			"guest_phone",
			"guest_email",
			"car_id",
			"kind",
			"start_date",
			"end_date",
			"pickup_time",
			"return_time",
			"base_price",
			"tax_amount",
			"total_price",
			"deposit_amount",
			"status",
			"created_by_staff",
			"is_walk_in",
		).
		Values(
			booking.Subject.UserID,
			guestName,
			guestPhone,
			guestEmail,
			booking.CarID,
			booking.Kind,
			booking.StartDate,
			booking.EndDate,
			booking.PickupTime,
			booking.ReturnTime,
			booking.BasePrice,
			booking.TaxAmount,
			booking.TotalPrice,
			booking.DepositAmount,
			booking.Status,
			booking.CreatedByStaff,
			booking.IsWalkIn,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if isOverlapError(err) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_date DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "GetByUserID", query, args)
}

// FindOverlapping возвращает бронирования с указанными статусами, чьи окна пересекаются с filter.Window
// Условие пересечения полуоткрытых интервалов: existing.start < new.end AND existing.end > new.start
// Внутри транзакции найденные строки блокируются
func (r *Repository) FindOverlapping(ctx context.Context, filter OverlapFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Lt{"start_date": filter.Window.End}).
		Where(squirrel.Gt{"end_date": filter.Window.Start}).
		OrderBy("start_date")

	if filter.CarID != nil {
		builder = builder.Where(squirrel.Eq{"car_id": *filter.CarID})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}
	if filter.ExcludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": *filter.ExcludeID})
	}
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "FindOverlapping", query, args)
}

// UpdateStatus переводит бронирование в статус to, если текущий статус входит в from
// Если статус уже изменился, возвращает ErrStatusMismatch
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(from)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isOverlapError(err) {
			return ErrOverlap
		}
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "UpdateStatus")
}

// Cancel отменяет бронирование, если его текущий статус входит в from
func (r *Repository) Cancel(ctx context.Context, id int64, from []domain.BookingStatus, reason string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(from)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "Cancel")
}

// CancelMany отменяет пачку бронирований, которые все еще находятся в статусе from
// Возвращает ID фактически отмененных бронирований: повторный вызов ничего не меняет
func (r *Repository) CancelMany(ctx context.Context, ids []int64, from domain.BookingStatus, reason string, at time.Time) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": from}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CancelMany - build update query: %v", ErrBuildQuery, err)
	}

	return r.queryIDs(ctx, executor, "CancelMany", query, args)
}

// CancelUnpaidVerified отменяет VERIFIED бронирования без успешной оплаты,
// не изменявшиеся дольше ttl. Проверка оплаты выполняется в том же запросе.
// Порог считается по часам базы: updated_at проставляется через NOW()
func (r *Repository) CancelUnpaidVerified(ctx context.Context, ttl time.Duration, reason string, at time.Time, limit uint64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// Подзапрос строится с плейсхолдерами "?", нумерацию $N выполняет внешний UPDATE
	candidates := squirrel.Select("b.id").
		From("bookings b").
		Where(squirrel.Eq{"b.status": domain.StatusVerified}).
		Where(squirrel.Expr("b.updated_at <= NOW() - make_interval(secs => ?)", ttl.Seconds())).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id AND p.status = ?)",
			domain.PaymentSucceeded,
		)).
		OrderBy("b.updated_at").
		Limit(limit)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Expr("id IN (?)", candidates)).
		Where(squirrel.Eq{"status": domain.StatusVerified}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CancelUnpaidVerified - build update query: %v", ErrBuildQuery, err)
	}

	return r.queryIDs(ctx, executor, "CancelUnpaidVerified", query, args)
}

// ListPendingCreatedBefore возвращает PENDING бронирования, созданные не позже createdBefore,
// вместе с временем последней попытки загрузки документов
func (r *Repository) ListPendingCreatedBefore(ctx context.Context, createdBefore time.Time, limit uint64) ([]PendingCandidate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("b.id", "b.created_at", "v.document_attempt_at").
		From("bookings b").
		LeftJoin("booking_verifications v ON v.booking_id = b.id").
		Where(squirrel.Eq{"b.status": domain.StatusPending}).
		Where(squirrel.LtOrEq{"b.created_at": createdBefore}).
		OrderBy("b.created_at").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingCreatedBefore - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingCreatedBefore - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var candidates []PendingCandidate
	for rows.Next() {
		var (
			c         PendingCandidate
			attemptAt sql.NullTime
		)
		if err := rows.Scan(&c.BookingID, &c.CreatedAt, &attemptAt); err != nil {
			return nil, fmt.Errorf("%w: ListPendingCreatedBefore - scan row: %v", ErrScanRow, err)
		}
		if attemptAt.Valid {
			t := attemptAt.Time
			c.DocumentAttemptAt = &t
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPendingCreatedBefore - rows iteration: %v", ErrScanRow, err)
	}

	return candidates, nil
}

// DeleteDraftsCreatedBefore удаляет брошенные черновики
// Черновики не удерживают автомобиль, поэтому удаляются без перехода в CANCELLED
func (r *Repository) DeleteDraftsCreatedBefore(ctx context.Context, createdBefore time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"status": domain.StatusDraft}).
		Where(squirrel.LtOrEq{"created_at": createdBefore}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteDraftsCreatedBefore - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteDraftsCreatedBefore - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteDraftsCreatedBefore - rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// StartTrip переводит бронирование в ONGOING и фиксирует пробег при выдаче
func (r *Repository) StartTrip(ctx context.Context, id int64, startOdometer int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusOngoing).
		Set("start_odometer", startOdometer).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(domain.StatusesFrom(domain.StatusOngoing))}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: StartTrip - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: StartTrip - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "StartTrip")
}

// CompleteTrip переводит бронирование в COMPLETED и фиксирует пробег и сборы при возврате
func (r *Repository) CompleteTrip(ctx context.Context, id int64, completion TripCompletion) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("end_odometer", completion.EndOdometer).
		Set("damage_fee", completion.DamageFee).
		Set("extra_km_fee", completion.ExtraKmFee).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusOngoing}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CompleteTrip - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CompleteTrip - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "CompleteTrip")
}

// Update сохраняет измененные даты, время и суммы бронирования
// Обновление выполняется только если статус не изменился с момента чтения
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_date", booking.StartDate).
		Set("end_date", booking.EndDate).
		Set("pickup_time", booking.PickupTime).
		Set("return_time", booking.ReturnTime).
		Set("base_price", booking.BasePrice).
		Set("tax_amount", booking.TaxAmount).
		Set("total_price", booking.TotalPrice).
		Set("deposit_amount", booking.DepositAmount).
		Set("damage_fee", booking.DamageFee).
		Set("extra_km_fee", booking.ExtraKmFee).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Where(squirrel.Eq{"status": booking.Status}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isOverlapError(err) {
			return ErrOverlap
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "Update")
}

// Delete удаляет бронирование, если его статус входит в statuses
func (r *Repository) Delete(ctx context.Context, id int64, statuses []domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "Delete")
}

func (r *Repository) queryBookings(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func (r *Repository) queryIDs(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]int64, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %s - scan id: %v", ErrScanRow, op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return ids, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                                    domain.Booking
		userID, startOdometer, endOdometer   sql.NullInt64
		guestName, guestPhone, guestEmail    sql.NullString
		pickupTime, returnTime, cancelReason sql.NullString
		cancelledAt                          sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&userID,
		&guestName,
		&guestPhone,
		&guestEmail,
		&b.CarID,
		&b.Kind,
		&b.StartDate,
		&b.EndDate,
		&pickupTime,
		&returnTime,
		&b.BasePrice,
		&b.TaxAmount,
		&b.TotalPrice,
		&b.DepositAmount,
		&b.DamageFee,
		&b.ExtraKmFee,
		&startOdometer,
		&endOdometer,
		&b.Status,
		&b.CreatedByStaff,
		&b.IsWalkIn,
		&cancelReason,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		b.Subject.UserID = &userID.Int64
	} else {
		guest := &domain.GuestContact{Name: guestName.String, Phone: guestPhone.String}
		if guestEmail.Valid {
			guest.Email = &guestEmail.String
		}
		b.Subject.Guest = guest
	}

	b.PickupTime = nullTimeString(pickupTime)
	b.ReturnTime = nullTimeString(returnTime)
	if startOdometer.Valid {
		b.StartOdometer = &startOdometer.Int64
	}
	if endOdometer.Valid {
		b.EndOdometer = &endOdometer.Int64
	}
	if cancelReason.Valid {
		b.CancellationReason = &cancelReason.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}

	return &b, nil
}

func nullTimeString(s sql.NullString) *types.TimeString {
	if !s.Valid || s.String == "" {
		return nil
	}
	ts := types.TimeString(s.String)
	return &ts
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrStatusMismatch
	}
	return nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// isOverlapError ошибки БД, означающие конкурентное бронирование того же интервала
func isOverlapError(err error) bool {
	return pgerr.IsExclusionViolation(err) || pgerr.IsSerializationFailure(err)
}
