package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec

	SweepRuns          *prometheus.CounterVec
	SweepAffected      *prometheus.CounterVec
	SweepDuration      *prometheus.HistogramVec
	SkippedTicks       prometheus.Counter
	BookingTransitions *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry регистрирует метрики в переданном реестре
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	ns := namespace(serviceName)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total", Help: "Total HTTP requests handled"},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "db_query_duration_seconds",
				Help:      "Database query latency distribution",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: ns, Name: "db_query_errors_total", Help: "Total failed database queries"},
			[]string{"operation"},
		),
		DBOpenConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: ns, Name: "db_open_connections", Help: "Open database connections"},
			[]string{"service"},
		),
		DBInUse: factory.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: ns, Name: "db_in_use_connections", Help: "Database connections in use"},
			[]string{"service"},
		),
		DBIdle: factory.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: ns, Name: "db_idle_connections", Help: "Idle database connections"},
			[]string{"service"},
		),
		SweepRuns: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: ns, Name: "expiration_sweep_runs_total", Help: "Expiration sweep runs by result"},
			[]string{"sweep", "result"},
		),
		SweepAffected: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: ns, Name: "expiration_sweep_affected_total", Help: "Bookings affected by expiration sweeps"},
			[]string{"sweep"},
		),
		SweepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "expiration_sweep_duration_seconds",
				Help:      "Expiration sweep latency distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"sweep"},
		),
		SkippedTicks: factory.NewCounter(
			prometheus.CounterOpts{Namespace: ns, Name: "scheduler_skipped_ticks_total", Help: "Scheduler ticks skipped because the previous run was still in progress"},
		),
		BookingTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{Namespace: ns, Name: "booking_transitions_total", Help: "Booking status transitions"},
			[]string{"from", "to"},
		),
	}
}

// ObserveHTTP фиксирует обработанный HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDBPool публикует состояние пула соединений
func (m *Metrics) SetDBPool(service string, open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(service).Set(float64(open))
	m.DBInUse.WithLabelValues(service).Set(float64(inUse))
	m.DBIdle.WithLabelValues(service).Set(float64(idle))
}

// ObserveSweep фиксирует результат одного прохода планировщика
func (m *Metrics) ObserveSweep(sweep string, affected int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SweepRuns.WithLabelValues(sweep, result).Inc()
	m.SweepAffected.WithLabelValues(sweep).Add(float64(affected))
	m.SweepDuration.WithLabelValues(sweep).Observe(duration.Seconds())
}

// IncSkippedTick фиксирует пропущенный тик планировщика
func (m *Metrics) IncSkippedTick() {
	if m == nil {
		return
	}
	m.SkippedTicks.Inc()
}

// IncTransition фиксирует переход статуса бронирования
func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(from, to).Inc()
}

func namespace(serviceName string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_", " ", "_")
	return strings.ToLower(replacer.Replace(serviceName))
}
