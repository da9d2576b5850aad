package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/redislock"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/expire_bookings"
)

// LockKey ключ блокировки, общей для всех инстансов
const LockKey = "expiration"

// Scheduler запускает проходы по просроченным бронированиям с фиксированным интервалом
// Тик, пришедший во время незавершенного запуска, пропускается
type Scheduler struct {
	interval time.Duration
	sweeper  Sweeper
	locker   Locker
	metrics  Metrics
	clock    Clock
	logger   Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// New создает планировщик. locker и metrics могут быть nil
func New(interval time.Duration, sweeper Sweeper, locker Locker, metrics Metrics, logger Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		sweeper:  sweeper,
		locker:   locker,
		metrics:  metrics,
		clock:    RealClock{},
		logger:   logger,
	}
}

// WithClock подменяет источник времени
func (s *Scheduler) WithClock(clock Clock) *Scheduler {
	s.clock = clock
	return s
}

// Start запускает цикл тиков и блокируется до отмены ctx
// После отмены дожидается завершения текущего запуска
func (s *Scheduler) Start(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler: started with interval %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("Scheduler: stopped")
			return
		case <-ticker.C():
			s.tick(ctx)
		}
	}
}

// RunNow выполняет запуск синхронно, соблюдая ту же блокировку, что и тики
func (s *Scheduler) RunNow(ctx context.Context) (*expire_bookings.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	return s.run(ctx)
}

// Running сообщает, выполняется ли запуск прямо сейчас
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.skip("previous run still in progress")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		if _, err := s.run(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error("Scheduler: run failed: %v", err)
		}
	}()
}

func (s *Scheduler) run(ctx context.Context) (*expire_bookings.Report, error) {
	started := s.clock.Now()

	var (
		report   *expire_bookings.Report
		sweepErr error
	)
	job := func(ctx context.Context) error {
		report, sweepErr = s.sweeper.Execute(ctx)
		return nil
	}

	if s.locker != nil {
		if err := s.locker.WithLock(ctx, LockKey, job); err != nil {
			if errors.Is(err, redislock.ErrLockHeld) {
				s.skip("another instance holds the lock")
				return nil, ErrAlreadyRunning
			}
			// Redis недоступен: проходы идемпотентны, поэтому выполняем без блокировки
			s.logger.Warn("Scheduler: lock unavailable, running without it: %v", err)
			_ = job(ctx)
		}
	} else {
		_ = job(ctx)
	}

	s.logger.Info("Scheduler: run finished in %s", s.clock.Now().Sub(started))
	if sweepErr != nil {
		return report, fmt.Errorf("%w: %v", ErrSweep, sweepErr)
	}
	return report, nil
}

func (s *Scheduler) skip(reason string) {
	s.logger.Warn("Scheduler: tick skipped, %s", reason)
	if s.metrics != nil {
		s.metrics.IncSkippedTick()
	}
}
