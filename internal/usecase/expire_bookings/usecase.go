package expire_bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
)

// UseCase проходы по просроченным бронированиям и возвратам
// Все сроки считаются от сохраненных меток времени, поэтому повторный запуск ничего не меняет
type UseCase struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	gateway      PaymentGateway
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	settings     Settings
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	gateway PaymentGateway,
	notifier Notifier,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		gateway:      gateway,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: RealTimeProvider{},
		settings:     settings,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет все проходы. Ошибка одного прохода логируется и не мешает остальным
func (uc *UseCase) Execute(ctx context.Context) (*Report, error) {
	now := uc.timeProvider.Now()
	report := &Report{RanAt: now}

	sweeps := []struct {
		name string
		run  func(ctx context.Context, now time.Time, report *Report) (int, error)
	}{
		{SweepPendingTimeout, uc.expirePending},
		{SweepVerifiedUnpaid, uc.cancelUnpaidVerified},
		{SweepDraftPurge, uc.purgeDrafts},
		{SweepRefundReconciliation, uc.reconcileRefunds},
	}

	for _, sweep := range sweeps {
		started := time.Now()
		affected, err := sweep.run(ctx, now, report)
		uc.observe(sweep.name, affected, time.Since(started), err)

		if err != nil {
			uc.logger.Error("ExpireBookings: sweep %s failed: %v", sweep.name, err)
			report.FailedSweeps = append(report.FailedSweeps, sweep.name)
			continue
		}
		if affected > 0 {
			uc.logger.Info("ExpireBookings: sweep %s affected %d records", sweep.name, affected)
		}
	}

	if len(report.FailedSweeps) > 0 {
		return report, fmt.Errorf("%w: %s", ErrSweepFailed, strings.Join(report.FailedSweeps, ", "))
	}
	return report, nil
}

// expirePending отменяет PENDING бронирования, у которых истек срок с учетом продления
func (uc *UseCase) expirePending(ctx context.Context, now time.Time, report *Report) (int, error) {
	// 1. Кандидаты: базовый срок уже прошел
	candidates, err := uc.bookingRepo.ListPendingCreatedBefore(ctx, now.Add(-uc.settings.PendingTimeout), uc.settings.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}

	// 2. Попытка загрузки документов в конце срока продлевает его
	var expired []int64
	for _, c := range candidates {
		if domain.IsPendingExpired(c.CreatedAt, c.DocumentAttemptAt, now, uc.settings.PendingTimeout, uc.settings.DocumentGrace) {
			expired = append(expired, c.BookingID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	// 3. Отменяем только те, что все еще PENDING
	cancelled, err := uc.bookingRepo.CancelMany(ctx, expired, domain.StatusPending, ReasonVerificationTimeout, now)
	if err != nil {
		return 0, fmt.Errorf("cancel pending: %w", err)
	}

	report.PendingExpired = append(report.PendingExpired, cancelled...)
	uc.afterCancel(ctx, cancelled, domain.StatusPending, ReasonVerificationTimeout, now)
	return len(cancelled), nil
}

// cancelUnpaidVerified отменяет VERIFIED бронирования без оплаты
func (uc *UseCase) cancelUnpaidVerified(ctx context.Context, now time.Time, report *Report) (int, error) {
	cancelled, err := uc.bookingRepo.CancelUnpaidVerified(ctx, uc.settings.VerifiedUnpaidTTL, ReasonPaymentTimeout, now, uc.settings.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("cancel unpaid verified: %w", err)
	}

	report.UnpaidCancelled = append(report.UnpaidCancelled, cancelled...)
	uc.afterCancel(ctx, cancelled, domain.StatusVerified, ReasonPaymentTimeout, now)
	return len(cancelled), nil
}

// purgeDrafts удаляет брошенные черновики
func (uc *UseCase) purgeDrafts(ctx context.Context, now time.Time, report *Report) (int, error) {
	deleted, err := uc.bookingRepo.DeleteDraftsCreatedBefore(ctx, now.Add(-uc.settings.DraftMaxAge))
	if err != nil {
		return 0, fmt.Errorf("delete drafts: %w", err)
	}

	report.DraftsDeleted = deleted
	return int(deleted), nil
}

// reconcileRefunds возвращает деньги по отмененным и отклоненным бронированиям
// Возврат идемпотентен по ID бронирования, поэтому неудачная попытка повторяется на следующем тике
func (uc *UseCase) reconcileRefunds(ctx context.Context, now time.Time, report *Report) (int, error) {
	payments, err := uc.paymentRepo.ListRefundable(ctx, now.Add(-uc.settings.RefundRetryBackoff), uc.settings.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list refundable: %w", err)
	}

	refunded := 0
	for _, p := range payments {
		if p.ExternalPaymentID == nil {
			continue
		}

		refundID, err := uc.gateway.Refund(ctx, p.BookingID, *p.ExternalPaymentID)
		if err != nil {
			uc.logger.Warn("ExpireBookings: refund for booking id=%d failed, will retry: %v", p.BookingID, err)
			report.RefundsFailed = append(report.RefundsFailed, p.BookingID)
			continue
		}

		if err := uc.paymentRepo.MarkRefunded(ctx, p.BookingID, refundID); err != nil {
			if errors.Is(err, paymentRepo.ErrStatusMismatch) {
				// уже отмечено другим инстансом
				continue
			}
			uc.logger.Error("ExpireBookings: failed to mark payment of booking id=%d refunded (refund %s): %v", p.BookingID, refundID, err)
			report.RefundsFailed = append(report.RefundsFailed, p.BookingID)
			continue
		}

		report.Refunded = append(report.Refunded, p.BookingID)
		refunded++
	}

	return refunded, nil
}

func (uc *UseCase) afterCancel(ctx context.Context, ids []int64, from domain.BookingStatus, reason string, now time.Time) {
	for _, id := range ids {
		if uc.metrics != nil {
			uc.metrics.IncTransition(string(from), string(domain.StatusCancelled))
		}
		if uc.notifier == nil {
			continue
		}
		msg := notifier.Message{
			Type:       notifier.TypeBookingCancelled,
			BookingID:  id,
			Reason:     reason,
			OccurredAt: now,
		}
		if err := uc.notifier.Publish(ctx, msg); err != nil {
			uc.logger.Warn("ExpireBookings: failed to notify about booking id=%d: %v", id, err)
		}
	}
}

func (uc *UseCase) observe(sweep string, affected int, d time.Duration, err error) {
	if uc.metrics != nil {
		uc.metrics.ObserveSweep(sweep, affected, d, err)
	}
}
