package expire_bookings

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// Названия проходов в логах и метриках
const (
	SweepPendingTimeout       = "pending_timeout"
	SweepVerifiedUnpaid       = "verified_unpaid"
	SweepDraftPurge           = "draft_purge"
	SweepRefundReconciliation = "refund_reconciliation"
)

// Причины автоматической отмены
const (
	ReasonVerificationTimeout = "verification timed out"
	ReasonPaymentTimeout      = "payment timed out"
)

// Settings сроки и размер пачки для проходов
type Settings struct {
	PendingTimeout     time.Duration
	DocumentGrace      time.Duration
	VerifiedUnpaidTTL  time.Duration
	DraftMaxAge        time.Duration
	RefundRetryBackoff time.Duration
	BatchSize          uint64
}

// DefaultSettings значения по умолчанию
func DefaultSettings() Settings {
	return Settings{
		PendingTimeout:     domain.DefaultPendingTimeout,
		DocumentGrace:      domain.DefaultDocumentGrace,
		VerifiedUnpaidTTL:  domain.DefaultVerifiedUnpaidTTL,
		DraftMaxAge:        domain.DefaultDraftMaxAge,
		RefundRetryBackoff: domain.DefaultRefundRetryBackoff,
		BatchSize:          domain.DefaultSweepBatchSize,
	}
}

// Report результат одного запуска
type Report struct {
	RanAt           time.Time `json:"ranAt"`
	PendingExpired  []int64   `json:"pendingExpired"`
	UnpaidCancelled []int64   `json:"unpaidCancelled"`
	DraftsDeleted   int64     `json:"draftsDeleted"`
	Refunded        []int64   `json:"refunded"`
	RefundsFailed   []int64   `json:"refundsFailed"`
	FailedSweeps    []string  `json:"failedSweeps"`
}
